package server

import (
	"context"
	"errors"

	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/reading"
)

var ErrNotFound = errors.New("not found")

// Store is everything the HTTP layer persists.
type Store interface {
	CreateReading(ctx context.Context, r reading.Record) error
	Reading(ctx context.Context, id string) (reading.Record, error)
	ListReadings(ctx context.Context, userID string, limit int) ([]reading.Record, error)
	// SaveInterpretation stores raw only if the reading has no text yet and
	// returns whatever text the reading ends up with.
	SaveInterpretation(ctx context.Context, id, raw string) (string, error)

	payment.Ledger
	horoscope.Cache
	AdminStore
}

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdmin(ctx context.Context, email, passwordHash string) (adminID string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (sessionID string, err error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	ListPayments(ctx context.Context, limit int) ([]payment.Payment, error)
}
