// Package horoscope serves one generated horoscope per sign and day.
package horoscope

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tarotfutura/futura/internal/i18n"
)

var ErrUnknownSign = errors.New("unknown zodiac sign")

type monthDay struct {
	Month time.Month
	Day   int
}

func (m monthDay) before(o monthDay) bool {
	return m.Month < o.Month || (m.Month == o.Month && m.Day < o.Day)
}

// Sign is a zodiac sign. The range is inclusive on both ends.
type Sign struct {
	ID      string
	Symbol  string
	Name    i18n.Text
	Element i18n.Text
	From    monthDay
	To      monthDay
}

var (
	fire  = i18n.Text{ES: "Fuego", EN: "Fire"}
	earth = i18n.Text{ES: "Tierra", EN: "Earth"}
	air   = i18n.Text{ES: "Aire", EN: "Air"}
	water = i18n.Text{ES: "Agua", EN: "Water"}
)

var signs = []Sign{
	{"aries", "♈", i18n.Text{ES: "Aries", EN: "Aries"}, fire, monthDay{time.March, 21}, monthDay{time.April, 19}},
	{"tauro", "♉", i18n.Text{ES: "Tauro", EN: "Taurus"}, earth, monthDay{time.April, 20}, monthDay{time.May, 20}},
	{"geminis", "♊", i18n.Text{ES: "Géminis", EN: "Gemini"}, air, monthDay{time.May, 21}, monthDay{time.June, 20}},
	{"cancer", "♋", i18n.Text{ES: "Cáncer", EN: "Cancer"}, water, monthDay{time.June, 21}, monthDay{time.July, 22}},
	{"leo", "♌", i18n.Text{ES: "Leo", EN: "Leo"}, fire, monthDay{time.July, 23}, monthDay{time.August, 22}},
	{"virgo", "♍", i18n.Text{ES: "Virgo", EN: "Virgo"}, earth, monthDay{time.August, 23}, monthDay{time.September, 22}},
	{"libra", "♎", i18n.Text{ES: "Libra", EN: "Libra"}, air, monthDay{time.September, 23}, monthDay{time.October, 22}},
	{"escorpio", "♏", i18n.Text{ES: "Escorpio", EN: "Scorpio"}, water, monthDay{time.October, 23}, monthDay{time.November, 21}},
	{"sagitario", "♐", i18n.Text{ES: "Sagitario", EN: "Sagittarius"}, fire, monthDay{time.November, 22}, monthDay{time.December, 21}},
	{"capricornio", "♑", i18n.Text{ES: "Capricornio", EN: "Capricorn"}, earth, monthDay{time.December, 22}, monthDay{time.January, 19}},
	{"acuario", "♒", i18n.Text{ES: "Acuario", EN: "Aquarius"}, air, monthDay{time.January, 20}, monthDay{time.February, 18}},
	{"piscis", "♓", i18n.Text{ES: "Piscis", EN: "Pisces"}, water, monthDay{time.February, 19}, monthDay{time.March, 20}},
}

// Signs returns the twelve signs starting at Aries.
func Signs() []Sign {
	out := make([]Sign, len(signs))
	copy(out, signs)
	return out
}

// Lookup finds a sign by id, ignoring case.
func Lookup(id string) (Sign, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range signs {
		if s.ID == id {
			return s, nil
		}
	}
	return Sign{}, fmt.Errorf("%w: %q", ErrUnknownSign, id)
}

// ForDate returns the sign of someone born on t.
func ForDate(t time.Time) Sign {
	md := monthDay{t.Month(), t.Day()}
	for _, s := range signs {
		if s.From.before(s.To) {
			if !md.before(s.From) && !s.To.before(md) {
				return s
			}
			continue
		}
		// Wraps the new year.
		if !md.before(s.From) || !s.To.before(md) {
			return s
		}
	}
	return signs[0]
}

var monthAbbr = map[i18n.Lang][12]string{
	i18n.ES: {"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"},
	i18n.EN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// DateRange renders the range the way it is printed on the sign card,
// e.g. "21 Mar - 19 Abr".
func (s Sign) DateRange(lang i18n.Lang) string {
	m, ok := monthAbbr[lang]
	if !ok {
		m = monthAbbr[i18n.ES]
	}
	return fmt.Sprintf("%d %s - %d %s", s.From.Day, m[s.From.Month-1], s.To.Day, m[s.To.Month-1])
}

// SignView is a sign rendered for one language.
type SignView struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Element   string `json:"element"`
	DateRange string `json:"dateRange"`
}

func (s Sign) Localize(lang i18n.Lang) SignView {
	return SignView{
		ID:        s.ID,
		Symbol:    s.Symbol,
		Name:      s.Name.In(lang),
		Element:   s.Element.In(lang),
		DateRange: s.DateRange(lang),
	}
}
