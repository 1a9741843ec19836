package payment

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// State is the premium state of a reading. It only moves from locked to
// unlocked.
type State string

const (
	Locked   State = "locked"
	Unlocked State = "unlocked"
)

// Ledger is the durable side of unlocking.
type Ledger interface {
	// ReadingOwner returns the owner and unlock flag of a reading, or
	// ErrReadingNotFound.
	ReadingOwner(ctx context.Context, readingID string) (userID string, unlocked bool, err error)
	// PaymentExists reports whether transactionID is already recorded.
	PaymentExists(ctx context.Context, transactionID string) (bool, error)
	// CommitUnlock records p and sets the reading's unlock flag atomically.
	// A duplicate transaction id yields ErrAlreadyProcessed.
	CommitUnlock(ctx context.Context, p Payment) error
}

type UnlockRequest struct {
	UserID        string
	ReadingID     string
	TransactionID string
}

type UnlockResult struct {
	ReadingID        string `json:"readingId"`
	State            State  `json:"state"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

// Unlocker runs the unlock flow. Only one verification per reading is in
// flight at a time: identical requests share it and requests carrying a
// different transaction wait their turn.
type Unlocker struct {
	ledger   Ledger
	verifier Verifier
	price    Price
	provider string
	timeout  time.Duration
	logger   *slog.Logger
	flight   singleflight.Group
	stripes  [64]sync.Mutex
	now      func() time.Time
}

type UnlockerConfig struct {
	Price    Price
	Provider string
	Timeout  time.Duration
}

func NewUnlocker(ledger Ledger, verifier Verifier, cfg UnlockerConfig, logger *slog.Logger) *Unlocker {
	if cfg.Provider == "" {
		cfg.Provider = "paypal"
	}
	return &Unlocker{
		ledger:   ledger,
		verifier: verifier,
		price:    cfg.Price,
		provider: cfg.Provider,
		timeout:  cfg.Timeout,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *Unlocker) Unlock(ctx context.Context, req UnlockRequest) (UnlockResult, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if req.UserID == "" || req.ReadingID == "" || req.TransactionID == "" {
		return UnlockResult{}, ErrInvalidInput
	}

	ch := u.flight.DoChan(req.ReadingID+"\x00"+req.TransactionID, func() (any, error) {
		return u.unlock(context.WithoutCancel(ctx), req)
	})
	select {
	case <-ctx.Done():
		return UnlockResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return UnlockResult{}, res.Err
		}
		return res.Val.(UnlockResult), nil
	}
}

func (u *Unlocker) stripe(readingID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(readingID))
	return &u.stripes[h.Sum32()%uint32(len(u.stripes))]
}

func (u *Unlocker) unlock(ctx context.Context, req UnlockRequest) (UnlockResult, error) {
	mu := u.stripe(req.ReadingID)
	mu.Lock()
	defer mu.Unlock()

	log := u.logger.With("reading_id", req.ReadingID, "user_id", req.UserID, "transaction_id", req.TransactionID)

	owner, unlocked, err := u.ledger.ReadingOwner(ctx, req.ReadingID)
	if err != nil {
		return UnlockResult{}, err
	}
	if owner != req.UserID {
		log.Warn("unlock attempt on foreign reading", "security", true)
		return UnlockResult{}, ErrOwnershipMismatch
	}

	state := Locked
	if unlocked {
		state = Unlocked
	}

	exists, err := u.ledger.PaymentExists(ctx, req.TransactionID)
	if err != nil {
		return UnlockResult{}, fmt.Errorf("checking ledger: %w", err)
	}
	if exists {
		log.Info("transaction already processed")
		return UnlockResult{ReadingID: req.ReadingID, State: state, AlreadyProcessed: true}, nil
	}

	vctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	v, err := u.verifier.Verify(vctx, req.TransactionID)
	if err != nil {
		if errors.Is(vctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrProcessorTimeout) {
			err = fmt.Errorf("%w: %v", ErrProcessorTimeout, err)
		}
		log.Error("payment verification failed", "error", err)
		return UnlockResult{}, err
	}

	if v.Status != StatusCompleted {
		log.Info("payment not completed", "status", v.Status)
		return UnlockResult{}, fmt.Errorf("%w: status %s", ErrPaymentNotCompleted, v.Status)
	}
	if !u.price.Matches(v) {
		log.Warn("payment amount mismatch", "amount", v.Amount.String(), "currency", v.Currency)
		return UnlockResult{}, fmt.Errorf("%w: got %s %s", ErrAmountMismatch, v.Amount.String(), v.Currency)
	}

	err = u.ledger.CommitUnlock(ctx, Payment{
		ID:            uuid.NewString(),
		ReadingID:     req.ReadingID,
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		Provider:      u.provider,
		Amount:        v.Amount,
		Currency:      v.Currency,
		Status:        v.Status,
		CreatedAt:     u.now().UTC(),
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		return UnlockResult{ReadingID: req.ReadingID, State: state, AlreadyProcessed: true}, nil
	}
	if err != nil {
		return UnlockResult{}, fmt.Errorf("committing unlock: %w", err)
	}

	log.Info("reading unlocked")
	return UnlockResult{ReadingID: req.ReadingID, State: Unlocked}, nil
}
