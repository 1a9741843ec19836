// Package personality scores the ten question archetype quiz.
package personality

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/tarotfutura/futura/internal/i18n"
)

const (
	// QuestionCount is the length of the embedded quiz.
	QuestionCount = 10
	// OptionsPerQuestion is fixed for every question.
	OptionsPerQuestion = 4
)

var (
	ErrUnknownOption     = errors.New("unknown option")
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrUnknownCard       = errors.New("unknown personality card")
)

var (
	//go:embed cards.toml
	cardsTOML string
	//go:embed questions.toml
	questionsTOML string
)

// Card is a personality archetype.
type Card struct {
	ID          string    `toml:"id"`
	Name        i18n.Text `toml:"name"`
	Numerology  int       `toml:"numerology"`
	Color       i18n.Text `toml:"color"`
	Summary     i18n.Text `toml:"summary"`
	Traits      i18n.List `toml:"traits"`
	Description i18n.Text `toml:"description"`
}

// Profile is a Card rendered in one language.
type Profile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Numerology  int      `json:"numerology"`
	Color       string   `json:"color"`
	Summary     string   `json:"summary"`
	Traits      []string `json:"traits"`
	Description string   `json:"description"`
}

func (c Card) Localize(lang i18n.Lang) Profile {
	return Profile{
		ID:          c.ID,
		Name:        c.Name.In(lang),
		Numerology:  c.Numerology,
		Color:       c.Color.In(lang),
		Summary:     c.Summary.In(lang),
		Traits:      c.Traits.In(lang),
		Description: c.Description.In(lang),
	}
}

// Option is one answer choice and the points it awards.
type Option struct {
	Label  i18n.Text      `toml:"label"`
	Scores map[string]int `toml:"scores"`
}

type Question struct {
	ID      int       `toml:"id"`
	Prompt  i18n.Text `toml:"prompt"`
	Options []Option  `toml:"option"`
}

// Engine holds an immutable catalog and question set.
type Engine struct {
	cards     []Card
	index     map[string]int
	questions []Question
}

// New validates cards and questions and returns an Engine. Card order is
// the canonical order used to break ties.
func New(cards []Card, questions []Question) (*Engine, error) {
	if len(cards) == 0 {
		return nil, errors.New("no personality cards")
	}
	if len(questions) == 0 {
		return nil, errors.New("no questions")
	}

	index := make(map[string]int, len(cards))
	for i, c := range cards {
		if c.ID == "" {
			return nil, fmt.Errorf("card %d: missing id", i)
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id", c.ID)
		}
		index[c.ID] = i
	}

	for _, q := range questions {
		if len(q.Options) != OptionsPerQuestion {
			return nil, fmt.Errorf("question %d: %d options, want %d", q.ID, len(q.Options), OptionsPerQuestion)
		}
		for oi, o := range q.Options {
			for id, pts := range o.Scores {
				if _, ok := index[id]; !ok {
					return nil, fmt.Errorf("question %d option %d: %w %q", q.ID, oi, ErrUnknownCard, id)
				}
				if pts <= 0 {
					return nil, fmt.Errorf("question %d option %d: non-positive score for %q", q.ID, oi, id)
				}
			}
		}
	}

	return &Engine{cards: cards, index: index, questions: questions}, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Load decodes the embedded catalog and quiz.
func Load() (*Engine, error) {
	defaultOnce.Do(func() {
		var cf struct {
			Cards []Card `toml:"card"`
		}
		if _, err := toml.Decode(cardsTOML, &cf); err != nil {
			defaultErr = fmt.Errorf("decoding cards: %w", err)
			return
		}
		var qf struct {
			Questions []Question `toml:"question"`
		}
		if _, err := toml.Decode(questionsTOML, &qf); err != nil {
			defaultErr = fmt.Errorf("decoding questions: %w", err)
			return
		}
		if len(qf.Questions) != QuestionCount {
			defaultErr = fmt.Errorf("quiz has %d questions, want %d", len(qf.Questions), QuestionCount)
			return
		}
		defaultEngine, defaultErr = New(cf.Cards, qf.Questions)
	})
	return defaultEngine, defaultErr
}

// Cards returns the catalog in canonical order.
func (e *Engine) Cards() []Card {
	out := make([]Card, len(e.cards))
	copy(out, e.cards)
	return out
}

func (e *Engine) Questions() []Question {
	out := make([]Question, len(e.questions))
	copy(out, e.questions)
	return out
}

func (e *Engine) Card(id string) (Card, error) {
	i, ok := e.index[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return e.cards[i], nil
}
