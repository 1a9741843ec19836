// Package oracle talks to the language model that writes readings.
package oracle

import (
	"context"
	"errors"
)

var (
	ErrRateLimited    = errors.New("oracle rate limited")
	ErrQuotaExhausted = errors.New("oracle quota exhausted")
	ErrUnavailable    = errors.New("oracle unavailable")
	ErrTimeout        = errors.New("oracle timed out")
)

// Prompt is a system instruction plus the user turn.
type Prompt struct {
	System string
	User   string
}

// Client completes a prompt. Implementations return one of the package
// errors, possibly wrapped, and never retry.
type Client interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, p Prompt) (string, error)

func (f ClientFunc) Complete(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

// fromContext maps a context failure to ErrTimeout, or returns nil.
func fromContext(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return nil
}
