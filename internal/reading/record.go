package reading

import (
	"fmt"
	"time"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/tarot"
)

// Record is a persisted reading session: the seeker's input, the drawn
// cards, the oracle text once interpreted, and the unlock flag.
type Record struct {
	ID        string
	UserID    string
	UserName  string
	Focus     Focus
	Question  string
	Language  i18n.Lang
	Cards     [3]string
	RawText   string
	Unlocked  bool
	CreatedAt time.Time
}

func (r Record) Interpreted() bool { return r.RawText != "" }

// Spread resolves the stored card ids against the catalog.
func (r Record) Spread() (tarot.Spread, error) {
	var s tarot.Spread
	for i, id := range r.Cards {
		c, err := tarot.Lookup(id)
		if err != nil {
			return tarot.Spread{}, fmt.Errorf("reading %s: %w", r.ID, err)
		}
		s[i] = tarot.DrawnCard{Card: c, Position: tarot.Positions[i]}
	}
	return s, nil
}

// Request rebuilds the oracle request for this reading.
func (r Record) Request() (Request, error) {
	s, err := r.Spread()
	if err != nil {
		return Request{}, err
	}
	return Request{
		UserName: r.UserName,
		Focus:    r.Focus,
		Question: r.Question,
		Language: r.Language,
		Spread:   s,
	}, nil
}

// CardView is a drawn card rendered for one language.
type CardView struct {
	ID       string         `json:"id"`
	Position tarot.Position `json:"position"`
	Name     string         `json:"name"`
	Meaning  string         `json:"meaning"`
}

func NewCardView(dc tarot.DrawnCard, lang i18n.Lang) CardView {
	return CardView{
		ID:       dc.Card.ID,
		Position: dc.Position,
		Name:     dc.Card.DisplayName(lang),
		Meaning:  dc.Card.Meaning.In(lang),
	}
}

// View is what the owner of a reading gets to see. The future section and
// the raw oracle text stay hidden until the reading is unlocked.
type View struct {
	ID          string           `json:"id"`
	UserName    string           `json:"userName"`
	Focus       Focus            `json:"focus"`
	Question    string           `json:"question"`
	Language    i18n.Lang        `json:"language"`
	Cards       []CardView       `json:"cards"`
	Interpreted bool             `json:"interpreted"`
	Unlocked    bool             `json:"unlocked"`
	Outcome     Outcome          `json:"outcome,omitempty"`
	Missing     []tarot.Position `json:"missing,omitempty"`
	Preamble    string           `json:"preamble,omitempty"`
	Sections    Sections         `json:"sections"`
	RawText     string           `json:"rawText,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (r Record) View() (View, error) {
	s, err := r.Spread()
	if err != nil {
		return View{}, err
	}
	v := View{
		ID:          r.ID,
		UserName:    r.UserName,
		Focus:       r.Focus,
		Question:    r.Question,
		Language:    r.Language,
		Interpreted: r.Interpreted(),
		Unlocked:    r.Unlocked,
		CreatedAt:   r.CreatedAt,
	}
	for _, dc := range s {
		v.Cards = append(v.Cards, NewCardView(dc, r.Language))
	}

	if r.Interpreted() {
		p := ParseSections(r.RawText)
		v.Outcome, v.Missing, v.Sections, v.Preamble = p.Outcome, p.Missing, p.Sections, p.Preamble
		switch {
		case r.Unlocked:
			v.RawText = r.RawText
		case p.Outcome != OutcomeLabeled && p.Sections.Future == "":
			// The future text was not labeled, so it sits somewhere in
			// the tail section.
			v.Sections.set(p.Tail, "")
			v.Sections.Future = ""
		default:
			v.Sections.Future = ""
		}
	}
	return v, nil
}
