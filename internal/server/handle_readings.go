package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

// CreateReadingRequest is the request body for POST /api/readings.
type CreateReadingRequest struct {
	UserName string `json:"userName"`
	Focus    string `json:"focus"`
	Question string `json:"question"`
	Language string `json:"language,omitempty"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func handleCreateReading(logger *slog.Logger, store Store, drawer *tarot.Drawer, revealer *tarot.Revealer, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateReadingRequest
		if err := readJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lang := i18n.FromRequest(r)
		if body.Language != "" {
			lang = i18n.Parse(body.Language)
		}
		req, err := reading.Request{
			UserName: body.UserName,
			Focus:    reading.Focus(body.Focus),
			Question: body.Question,
			Language: lang,
		}.Normalize()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		spread, err := drawer.DrawThree(tarot.Catalog())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		userID := userFrom(r)
		rec := reading.Record{
			ID:        uuid.NewString(),
			UserID:    userID,
			UserName:  req.UserName,
			Focus:     req.Focus,
			Question:  req.Question,
			Language:  req.Language,
			Cards:     spread.IDs(),
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateReading(r.Context(), rec); err != nil {
			logger.Error("creating reading", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Reveals are keyed by user: a new shuffle drops whatever is still
		// pending from the previous one.
		if revealer != nil {
			revealer.Schedule(userID, spread, func(dc tarot.DrawnCard) {
				cv := reading.NewCardView(dc, rec.Language)
				broker.Publish(userID, Event{Type: EventCardRevealed, ReadingID: rec.ID, Card: &cv})
			})
		}

		view, err := rec.View()
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func handleListReadings(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxListLimit)
		}

		recs, err := store.ListReadings(r.Context(), userFrom(r), limit)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		out := make([]reading.View, 0, len(recs))
		for _, rec := range recs {
			v, err := rec.View()
			if err != nil {
				logger.Warn("skipping unreadable reading", "reading_id", rec.ID, "error", err)
				continue
			}
			out = append(out, v)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

var errForeignReading = errors.New("reading belongs to another user")

// ownedReading loads the reading named in the URL and checks it belongs to
// the caller.
func ownedReading(r *http.Request, store Store) (reading.Record, error) {
	rec, err := store.Reading(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return reading.Record{}, err
	}
	if rec.UserID != userFrom(r) {
		return reading.Record{}, errForeignReading
	}
	return rec, nil
}

func writeReadingError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, errForeignReading) {
		logger.Warn("access to foreign reading",
			"reading_id", chi.URLParam(r, "id"),
			"user_id", userFrom(r),
			"method", r.Method,
			"security", true,
		)
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeDomainError(w, logger, err)
}

func handleGetReading(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := ownedReading(r, store)
		if err != nil {
			writeReadingError(w, r, logger, err)
			return
		}
		view, err := rec.View()
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
