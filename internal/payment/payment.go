// Package payment verifies one-off purchases with the payment processor and
// unlocks the premium part of a reading.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput         = errors.New("invalid unlock request")
	ErrReadingNotFound      = errors.New("reading not found")
	ErrOwnershipMismatch    = errors.New("reading belongs to another user")
	ErrPaymentNotCompleted  = errors.New("payment not completed")
	ErrAmountMismatch       = errors.New("payment amount does not match price")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrProcessorTimeout     = errors.New("payment processor timed out")
	// ErrAlreadyProcessed is returned by a Ledger when the transaction id is
	// already recorded.
	ErrAlreadyProcessed = errors.New("transaction already processed")
)

// Status is the processor-reported state of a transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Verification is what the processor says about a transaction.
type Verification struct {
	TransactionID string
	Status        Status
	Amount        decimal.Decimal
	Currency      string
}

// Verifier looks a transaction up at the payment processor. Implementations
// report unreachable processors as ErrProcessorUnavailable.
type Verifier interface {
	Verify(ctx context.Context, transactionID string) (Verification, error)
}

// Price is what a premium unlock costs.
type Price struct {
	Amount   decimal.Decimal
	Currency string
}

func (p Price) Matches(v Verification) bool {
	return v.Amount.Equal(p.Amount) && (p.Currency == "" || v.Currency == p.Currency)
}

// Payment is one recorded transaction.
type Payment struct {
	ID            string          `json:"id"`
	ReadingID     string          `json:"readingId"`
	UserID        string          `json:"userId"`
	TransactionID string          `json:"transactionId"`
	Provider      string          `json:"provider"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}
