package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tarotfutura/futura/internal/payment"
)

// handleAdminPayments lists recorded transactions, newest first.
func handleAdminPayments(logger *slog.Logger, admin AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := maxListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, 500)
		}

		payments, err := admin.ListPayments(r.Context(), limit)
		if err != nil {
			logger.Error("listing payments", "admin", adminFrom(r).Email, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if payments == nil {
			payments = []payment.Payment{}
		}
		writeJSON(w, http.StatusOK, payments)
	}
}
