package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarotfutura/futura/internal/payment"
)

// UnlockRequest is the request body for POST /api/readings/{id}/unlock.
type UnlockRequest struct {
	TransactionID string `json:"transactionId"`
}

func handleUnlock(logger *slog.Logger, unlocker *payment.Unlocker, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body UnlockRequest
		if err := readJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		userID := userFrom(r)
		res, err := unlocker.Unlock(r.Context(), payment.UnlockRequest{
			UserID:        userID,
			ReadingID:     chi.URLParam(r, "id"),
			TransactionID: body.TransactionID,
		})
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		if !res.AlreadyProcessed {
			broker.Publish(userID, Event{Type: EventReadingUnlocked, ReadingID: res.ReadingID, State: res.State})
		}
		writeJSON(w, http.StatusOK, res)
	}
}
