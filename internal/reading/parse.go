package reading

import (
	"regexp"
	"strings"

	"github.com/tarotfutura/futura/internal/tarot"
)

// Outcome tells how the sections of a reading were recovered.
type Outcome string

const (
	// OutcomeLabeled means all three headers were found.
	OutcomeLabeled Outcome = "labeled"
	// OutcomePartial means at least one header was found but not all.
	// Missing sections are left empty.
	OutcomePartial Outcome = "partial"
	// OutcomeFallback means no header was found and the text was split
	// by line count.
	OutcomeFallback Outcome = "fallback"
	// OutcomeEmpty means the input had no text at all.
	OutcomeEmpty Outcome = "empty"
)

// Sections is a reading split by spread position.
type Sections struct {
	Past    string `json:"past"`
	Present string `json:"present"`
	Future  string `json:"future"`
}

// Get returns the section for pos.
func (s Sections) Get(pos tarot.Position) string {
	switch pos {
	case tarot.Past:
		return s.Past
	case tarot.Present:
		return s.Present
	case tarot.Future:
		return s.Future
	}
	return ""
}

func (s *Sections) set(pos tarot.Position, text string) {
	switch pos {
	case tarot.Past:
		s.Past = text
	case tarot.Present:
		s.Present = text
	case tarot.Future:
		s.Future = text
	}
}

func (s *Sections) add(pos tarot.Position, text string) {
	switch cur := s.Get(pos); {
	case text == "":
	case cur == "":
		s.set(pos, text)
	default:
		s.set(pos, cur+"\n"+text)
	}
}

// Parsed is the result of ParseSections.
type Parsed struct {
	Sections Sections         `json:"sections"`
	Outcome  Outcome          `json:"outcome"`
	Missing  []tarot.Position `json:"missing,omitempty"`
	// Preamble is any text before the first header.
	Preamble string `json:"preamble,omitempty"`
	// Tail is the section that runs to the end of the text. Content the
	// parser could not label ends up there.
	Tail tarot.Position `json:"-"`
}

// headerRe matches a section header in Spanish or English, with optional
// markdown decoration and an optional article. A header starts the text or
// follows whitespace, sentence punctuation or an opening bracket, so
// single-line answers like "PASADO: a. PRESENTE: b" are still split.
// Group 1 is the header itself, group 2 the position word. Longer words
// come first in each alternation so "presente" is not cut short by
// "present".
var headerRe = regexp.MustCompile(`(?i)(?:^|[\s.!?;,()\[\]"'«»])([ \t]*(?:[#>*_-]+[ \t]*)*(?:(?:el|the)[ \t]+)?(pasado|past|presente|present|futuro|future)\b[ \t]*(?:\*\*|__|\*|_)?[ \t]*[:：])`)

func headerPosition(word string) tarot.Position {
	switch strings.ToLower(word) {
	case "pasado", "past":
		return tarot.Past
	case "presente", "present":
		return tarot.Present
	default:
		return tarot.Future
	}
}

// ParseSections splits raw reading text into past, present and future.
// It never fails: malformed input degrades to a fallback split. A header
// that repeats appends its text to the first section of that position.
func ParseSections(raw string) Parsed {
	if strings.TrimSpace(raw) == "" {
		return Parsed{Outcome: OutcomeEmpty}
	}

	matches := headerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		s := fallbackSplit(raw)
		return Parsed{Sections: s, Outcome: OutcomeFallback, Tail: fallbackTail(s)}
	}

	var (
		out   Parsed
		found = make(map[tarot.Position]bool, 3)
	)
	out.Preamble = strings.TrimSpace(raw[:matches[0][2]])
	for i, m := range matches {
		pos := headerPosition(raw[m[4]:m[5]])
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][2]
		}
		text := cleanSection(raw[m[1]:end])
		if found[pos] {
			out.Sections.add(pos, text)
		} else {
			found[pos] = true
			out.Sections.set(pos, text)
		}
		out.Tail = pos
	}

	for _, pos := range tarot.Positions {
		if !found[pos] {
			out.Missing = append(out.Missing, pos)
		}
	}
	if len(out.Missing) == 0 {
		out.Outcome = OutcomeLabeled
	} else {
		out.Outcome = OutcomePartial
	}
	return out
}

// cleanSection drops the closing markdown a header like **PASADO:** leaves
// behind and trims whitespace.
func cleanSection(s string) string {
	s = strings.TrimLeft(s, "*_ \t")
	return strings.TrimSpace(s)
}

func fallbackSplit(raw string) Sections {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	size := (len(lines) + 2) / 3
	chunk := func(i int) string {
		lo, hi := i*size, (i+1)*size
		if lo >= len(lines) {
			return ""
		}
		if hi > len(lines) {
			hi = len(lines)
		}
		return strings.Join(lines[lo:hi], "\n")
	}
	return Sections{Past: chunk(0), Present: chunk(1), Future: chunk(2)}
}

func fallbackTail(s Sections) tarot.Position {
	switch {
	case s.Future != "":
		return tarot.Future
	case s.Present != "":
		return tarot.Present
	default:
		return tarot.Past
	}
}
