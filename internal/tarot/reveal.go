package tarot

import (
	"sync"
	"time"
)

// Revealer staggers the reveal of drawn cards. Pending reveals for a key
// are cancelled when a new spread is scheduled for it, when Cancel is
// called, or when the Revealer stops.
type Revealer struct {
	interval time.Duration

	mu      sync.Mutex
	seq     uint64
	gen     map[string]uint64
	pending map[string][]*time.Timer
	stopped bool
}

func NewRevealer(interval time.Duration) *Revealer {
	return &Revealer{
		interval: interval,
		gen:      make(map[string]uint64),
		pending:  make(map[string][]*time.Timer),
	}
}

// Schedule reveals spread[i] after (i+1)*interval by calling fn. Any
// previous schedule for key is cancelled first.
func (r *Revealer) Schedule(key string, spread Spread, fn func(DrawnCard)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	r.cancelLocked(key)
	r.seq++
	gen := r.seq
	r.gen[key] = gen
	remaining := len(spread)

	timers := make([]*time.Timer, 0, len(spread))
	for i, dc := range spread {
		timers = append(timers, time.AfterFunc(time.Duration(i+1)*r.interval, func() {
			r.mu.Lock()
			if r.stopped || r.gen[key] != gen {
				r.mu.Unlock()
				return
			}
			remaining--
			if remaining == 0 {
				delete(r.pending, key)
				delete(r.gen, key)
			}
			r.mu.Unlock()
			fn(dc)
		}))
	}
	r.pending[key] = timers
}

// Cancel stops every pending reveal for key and reports how many timers
// were stopped before firing.
func (r *Revealer) Cancel(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelLocked(key)
}

func (r *Revealer) cancelLocked(key string) int {
	delete(r.gen, key)
	n := 0
	for _, t := range r.pending[key] {
		if t.Stop() {
			n++
		}
	}
	delete(r.pending, key)
	return n
}

// Pending reports whether key has reveals that have not fired yet.
func (r *Revealer) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[key]
	return ok
}

// Stop cancels everything. Later calls to Schedule are ignored.
func (r *Revealer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for key := range r.pending {
		r.cancelLocked(key)
	}
}
