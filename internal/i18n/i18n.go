// Package i18n holds the two content languages of the app and the helpers
// to pick one from user input.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported content language.
type Lang string

const (
	ES Lang = "es"
	EN Lang = "en"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

var (
	supported = []language.Tag{language.Spanish, language.English}
	matcher   = language.NewMatcher(supported)
)

// Default is the language used when nothing else matches.
func Default() Lang { return ES }

// Tag returns the BCP 47 tag for l.
func (l Lang) Tag() language.Tag {
	if l == EN {
		return language.English
	}
	return language.Spanish
}

// Parse matches a tag or Accept-Language style list against the supported
// languages. Unknown or malformed input resolves to the default.
func Parse(raw string) Lang {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	if supported[idx] == language.English {
		return EN
	}
	return ES
}

// FromRequest resolves the language from the lang query parameter, falling
// back to the Accept-Language header.
func FromRequest(r *http.Request) Lang {
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		return Parse(v)
	}
	return Parse(r.Header.Get("Accept-Language"))
}

// Text is a string authored in both languages.
type Text struct {
	ES string `toml:"es" json:"es"`
	EN string `toml:"en" json:"en"`
}

// In returns the text for l, falling back to Spanish when the English
// version is missing.
func (t Text) In(l Lang) string {
	if l == EN && t.EN != "" {
		return t.EN
	}
	return t.ES
}

// Empty reports whether either language is missing.
func (t Text) Empty() bool {
	return strings.TrimSpace(t.ES) == "" || strings.TrimSpace(t.EN) == ""
}

// List is a string list authored in both languages.
type List struct {
	ES []string `toml:"es" json:"es"`
	EN []string `toml:"en" json:"en"`
}

func (l List) In(lang Lang) []string {
	if lang == EN && len(l.EN) > 0 {
		return l.EN
	}
	return l.ES
}
