package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tarotfutura/futura/internal/auth"
	"github.com/tarotfutura/futura/internal/tarot"
)

// handleEvents streams a user's events. EventSource cannot set headers, so
// the JWT travels in the token query parameter. When the user's last stream
// closes, their pending card reveals are dropped.
func handleEvents(logger *slog.Logger, tokens *auth.Verifier, broker *Broker, revealer *tarot.Revealer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}

		userID, err := tokens.UserID(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch := broker.Subscribe(userID)
		defer func() {
			if !broker.Unsubscribe(userID, ch) || revealer == nil {
				return
			}
			if n := revealer.Cancel(userID); n > 0 {
				logger.Debug("dropped card reveals", "user_id", userID, "count", n)
			}
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: reading\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
