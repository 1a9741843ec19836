package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/personality"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

// statusFor maps a domain error to the HTTP status and the message shown to
// the client. Unknown errors become a 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, reading.ErrInvalidInput),
		errors.Is(err, payment.ErrInvalidInput),
		errors.Is(err, personality.ErrIncompleteAnswers),
		errors.Is(err, personality.ErrUnknownOption):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound),
		errors.Is(err, payment.ErrReadingNotFound),
		errors.Is(err, horoscope.ErrUnknownSign),
		errors.Is(err, tarot.ErrUnknownCard):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, payment.ErrOwnershipMismatch):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, payment.ErrPaymentNotCompleted),
		errors.Is(err, payment.ErrAmountMismatch):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, oracle.ErrRateLimited):
		return http.StatusTooManyRequests, "the oracle is busy, try again shortly"
	case errors.Is(err, oracle.ErrQuotaExhausted):
		return http.StatusServiceUnavailable, "the oracle is out of credit"
	case errors.Is(err, oracle.ErrUnavailable),
		errors.Is(err, payment.ErrProcessorUnavailable):
		return http.StatusBadGateway, "upstream service unavailable"
	case errors.Is(err, oracle.ErrTimeout),
		errors.Is(err, payment.ErrProcessorTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream service timed out"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, msg)
}
