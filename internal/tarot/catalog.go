// Package tarot holds the major arcana catalog, the three card draw and the
// staggered reveal of drawn cards.
package tarot

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/tarotfutura/futura/internal/i18n"
)

// Size is the number of cards in the major arcana.
const Size = 22

var ErrUnknownCard = errors.New("unknown card")

//go:embed catalog.toml
var catalogTOML string

// Card is one major arcana card. The ID doubles as the artwork file name.
type Card struct {
	ID      string    `toml:"id"`
	Number  int       `toml:"number"`
	Name    i18n.Text `toml:"name"`
	Meaning i18n.Text `toml:"meaning"`
	Reading i18n.Text `toml:"reading"`
}

// DisplayName returns the card name in lang.
func (c Card) DisplayName(lang i18n.Lang) string { return c.Name.In(lang) }

type catalogFile struct {
	Cards []Card `toml:"card"`
}

var (
	loadOnce sync.Once
	catalog  []Card
	byID     map[string]Card
	loadErr  error
)

// ParseCatalog decodes and validates a TOML card catalog.
func ParseCatalog(data string) ([]Card, error) {
	var f catalogFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Cards))
	for i, c := range f.Cards {
		switch {
		case c.ID == "":
			return nil, fmt.Errorf("card %d: missing id", i)
		case seen[c.ID]:
			return nil, fmt.Errorf("card %q: duplicate id", c.ID)
		case c.Number != i:
			return nil, fmt.Errorf("card %q: number %d out of order", c.ID, c.Number)
		case c.Name.Empty(), c.Meaning.Empty(), c.Reading.Empty():
			return nil, fmt.Errorf("card %q: missing localized text", c.ID)
		}
		seen[c.ID] = true
	}
	return f.Cards, nil
}

func load() {
	catalog, loadErr = ParseCatalog(catalogTOML)
	if loadErr != nil {
		return
	}
	if len(catalog) != Size {
		loadErr = fmt.Errorf("catalog has %d cards, want %d", len(catalog), Size)
		return
	}
	byID = make(map[string]Card, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}
}

// Catalog returns a copy of the embedded catalog in canonical order. It
// panics if the embedded data is malformed, which is a build defect.
func Catalog() []Card {
	loadOnce.Do(load)
	if loadErr != nil {
		panic(fmt.Sprintf("tarot: embedded catalog: %v", loadErr))
	}
	out := make([]Card, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a card by id.
func Lookup(id string) (Card, error) {
	loadOnce.Do(load)
	c, ok := byID[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return c, nil
}
