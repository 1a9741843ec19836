package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/personality"
	"github.com/tarotfutura/futura/internal/tarot"
)

// CardResponse is one Major Arcana card in the requested language.
type CardResponse struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
	Reading string `json:"reading"`
}

func handleCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.FromRequest(r)
		cards := tarot.Catalog()
		out := make([]CardResponse, 0, len(cards))
		for _, c := range cards {
			out = append(out, CardResponse{
				ID:      c.ID,
				Number:  c.Number,
				Name:    c.DisplayName(lang),
				Meaning: c.Meaning.In(lang),
				Reading: c.Reading.In(lang),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// QuestionResponse is a quiz question with its four answer labels.
type QuestionResponse struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// PersonalityResultRequest is the request body for POST /api/personality/result.
type PersonalityResultRequest struct {
	Answers []int `json:"answers"`
}

func handlePersonalityQuestions(engine *personality.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.FromRequest(r)
		qs := engine.Questions()
		out := make([]QuestionResponse, 0, len(qs))
		for _, q := range qs {
			qr := QuestionResponse{ID: q.ID, Prompt: q.Prompt.In(lang)}
			for _, o := range q.Options {
				qr.Options = append(qr.Options, o.Label.In(lang))
			}
			out = append(out, qr)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handlePersonalityResult(engine *personality.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PersonalityResultRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id, err := engine.Score(req.Answers)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		card, err := engine.Card(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, card.Localize(i18n.FromRequest(r)))
	}
}

func handleSigns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.FromRequest(r)
		signs := horoscope.Signs()
		out := make([]horoscope.SignView, 0, len(signs))
		for _, s := range signs {
			out = append(out, s.Localize(lang))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleHoroscope(logger *slog.Logger, svc *horoscope.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.Daily(r.Context(), chi.URLParam(r, "sign"), i18n.FromRequest(r))
		if errors.Is(err, horoscope.ErrUnknownSign) {
			writeError(w, http.StatusNotFound, "unknown sign")
			return
		}
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}
