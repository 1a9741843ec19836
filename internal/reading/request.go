// Package reading turns a three card draw into a written reading: it
// validates the seeker's input, prompts the oracle and splits the answer
// into past, present and future.
package reading

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/tarot"
)

var ErrInvalidInput = errors.New("invalid input")

// Focus is the life area a reading is about.
type Focus string

const (
	FocusLove   Focus = "love"
	FocusCareer Focus = "career"
	FocusMoney  Focus = "money"
)

func (f Focus) Valid() bool {
	switch f {
	case FocusLove, FocusCareer, FocusMoney:
		return true
	}
	return false
}

// Label is the focus as a reader would say it.
func (f Focus) Label(lang i18n.Lang) string {
	labels := map[Focus]i18n.Text{
		FocusLove:   {ES: "el amor", EN: "love"},
		FocusCareer: {ES: "la carrera profesional", EN: "career"},
		FocusMoney:  {ES: "el dinero", EN: "money"},
	}
	return labels[f].In(lang)
}

const (
	MaxNameLen     = 50
	MinQuestionLen = 10
	MaxQuestionLen = 500
)

// Request is what the seeker provides for a reading.
type Request struct {
	UserName string
	Focus    Focus
	Question string
	Language i18n.Lang
	Spread   tarot.Spread
}

// Normalize trims and validates r and strips angle brackets from the
// question. Every failure wraps ErrInvalidInput.
func (r Request) Normalize() (Request, error) {
	r.UserName = strings.TrimSpace(r.UserName)
	r.Question = strings.TrimSpace(r.Question)
	if r.Language == "" {
		r.Language = i18n.Default()
	}

	if err := validateName(r.UserName); err != nil {
		return Request{}, err
	}
	if n := utf8.RuneCountInString(r.Question); n < MinQuestionLen || n > MaxQuestionLen {
		return Request{}, fmt.Errorf("%w: question must be between %d and %d characters", ErrInvalidInput, MinQuestionLen, MaxQuestionLen)
	}
	if !r.Focus.Valid() {
		return Request{}, fmt.Errorf("%w: focus must be love, career or money", ErrInvalidInput)
	}

	r.Question = SanitizeQuestion(r.Question)
	return r, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidInput, MaxNameLen)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return fmt.Errorf("%w: name may contain only letters and spaces", ErrInvalidInput)
		}
	}
	return nil
}

// SanitizeQuestion removes angle brackets and caps the length.
func SanitizeQuestion(q string) string {
	q = strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, q)
	if utf8.RuneCountInString(q) > MaxQuestionLen {
		q = string([]rune(q)[:MaxQuestionLen])
	}
	return q
}
