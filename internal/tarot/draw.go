package tarot

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"sync"
)

var ErrInsufficientCatalog = errors.New("catalog has fewer than three cards")

// Position is the slot a drawn card occupies in the spread.
type Position string

const (
	Past    Position = "past"
	Present Position = "present"
	Future  Position = "future"
)

// Positions lists the spread slots in reading order.
var Positions = [3]Position{Past, Present, Future}

// DrawnCard is a card placed in a spread slot.
type DrawnCard struct {
	Card     Card     `json:"card"`
	Position Position `json:"position"`
}

// Spread is the result of one draw, indexed past, present, future.
type Spread [3]DrawnCard

// IDs returns the drawn card ids in position order.
func (s Spread) IDs() [3]string {
	return [3]string{s[0].Card.ID, s[1].Card.ID, s[2].Card.ID}
}

// Drawer shuffles with its own PRNG. Safe for concurrent use.
type Drawer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrawer returns a Drawer seeded from crypto/rand.
func NewDrawer() *Drawer {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("tarot: reading random seed: " + err.Error())
	}
	return NewSeededDrawer(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

// NewSeededDrawer returns a deterministic Drawer, mostly for tests.
func NewSeededDrawer(seed1, seed2 uint64) *Drawer {
	return &Drawer{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// DrawThree shuffles a copy of cards and assigns the first three to past,
// present and future. The input slice is never modified.
func (d *Drawer) DrawThree(cards []Card) (Spread, error) {
	if len(cards) < 3 {
		return Spread{}, ErrInsufficientCatalog
	}
	deck := make([]Card, len(cards))
	copy(deck, cards)

	d.mu.Lock()
	d.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	d.mu.Unlock()

	var s Spread
	for i, pos := range Positions {
		s[i] = DrawnCard{Card: deck[i], Position: pos}
	}
	return s, nil
}

var defaultDrawer = NewDrawer()

// DrawThree draws from cards with a process-wide Drawer.
func DrawThree(cards []Card) (Spread, error) {
	return defaultDrawer.DrawThree(cards)
}
