package server

import (
	"encoding/json"
	"sync"

	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/reading"
)

const (
	EventCardRevealed       = "card_revealed"
	EventReadingInterpreted = "reading_interpreted"
	EventReadingUnlocked    = "reading_unlocked"
)

// Event is the payload published to a user's subscribers.
type Event struct {
	Type      string            `json:"type"`
	ReadingID string            `json:"readingId"`
	Card      *reading.CardView `json:"card,omitempty"`
	State     payment.State     `json:"state,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by user ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given user.
func (b *Broker) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan []byte]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch and reports whether it was the user's last
// subscriber.
func (b *Broker) Unsubscribe(userID string, ch chan []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[userID], ch)
	if len(b.subs[userID]) == 0 {
		delete(b.subs, userID)
		return true
	}
	return false
}

func (b *Broker) Publish(userID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[userID] {
		select {
		case ch <- data:
		default:
			// Slow subscriber.
		}
	}
	b.mu.RUnlock()
}
