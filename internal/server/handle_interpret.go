package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tarotfutura/futura/internal/reading"
)

// handleInterpret asks the oracle once per reading. Later calls return the
// stored text, including calls racing the first one.
func handleInterpret(logger *slog.Logger, store Store, interp *reading.Interpreter, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := ownedReading(r, store)
		if err != nil {
			writeReadingError(w, r, logger, err)
			return
		}

		if !rec.Interpreted() {
			req, err := rec.Request()
			if err != nil {
				writeDomainError(w, logger, err)
				return
			}
			stored, err := interp.InterpretOnce(r.Context(), rec.ID, req, interpretationStore(store, broker, rec))
			if err != nil {
				writeDomainError(w, logger, err)
				return
			}
			rec.RawText = stored
		}

		view, err := rec.View()
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// interpretationStore re-reads the reading inside the shared oracle call and
// announces the text the first time it is stored.
func interpretationStore(store Store, broker *Broker, rec reading.Record) reading.TextStoreFuncs {
	return reading.TextStoreFuncs{
		Load: func(ctx context.Context) (string, error) {
			cur, err := store.Reading(ctx, rec.ID)
			if err != nil {
				return "", err
			}
			return cur.RawText, nil
		},
		Save: func(ctx context.Context, text string) (string, error) {
			stored, err := store.SaveInterpretation(ctx, rec.ID, text)
			if err != nil {
				return "", err
			}
			if stored == text {
				broker.Publish(rec.UserID, Event{Type: EventReadingInterpreted, ReadingID: rec.ID})
			}
			return stored, nil
		},
	}
}
