package reading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tarotfutura/futura/internal/oracle"
)

// Interpreter asks the oracle for a reading. Concurrent calls for the same
// key share one oracle request.
type Interpreter struct {
	client  oracle.Client
	timeout time.Duration
	logger  *slog.Logger
	flight  singleflight.Group
}

func NewInterpreter(client oracle.Client, timeout time.Duration, logger *slog.Logger) *Interpreter {
	return &Interpreter{client: client, timeout: timeout, logger: logger}
}

// Interpret normalizes req, prompts the oracle and returns the raw text.
// The shared oracle call is not tied to any single caller's cancellation;
// each caller stops waiting when its own ctx ends.
func (i *Interpreter) Interpret(ctx context.Context, key string, req Request) (string, error) {
	return i.InterpretOnce(ctx, key, req, TextStoreFuncs{})
}

// TextStoreFuncs lets InterpretOnce check for and persist a stored
// interpretation. Nil funcs are skipped.
type TextStoreFuncs struct {
	// Load returns the stored text, or "" when there is none.
	Load func(ctx context.Context) (string, error)
	// Save stores text unless some text is already stored, and returns
	// whichever text is kept.
	Save func(ctx context.Context, text string) (string, error)
}

// InterpretOnce is Interpret with the stored text checked and saved inside
// the shared call. A caller that arrives after another caller's oracle call
// has finished gets the saved text back instead of a second oracle call.
func (i *Interpreter) InterpretOnce(ctx context.Context, key string, req Request, store TextStoreFuncs) (string, error) {
	req, err := req.Normalize()
	if err != nil {
		return "", err
	}
	prompt := BuildPrompt(req)

	ch := i.flight.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.timeout)
		defer cancel()

		if store.Load != nil {
			stored, err := store.Load(callCtx)
			if err != nil {
				return "", err
			}
			if stored != "" {
				return stored, nil
			}
		}

		text, err := i.complete(callCtx, key, prompt)
		if err != nil {
			return "", err
		}
		if store.Save != nil {
			return store.Save(callCtx, text)
		}
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (i *Interpreter) complete(ctx context.Context, key string, prompt oracle.Prompt) (string, error) {
	start := time.Now()
	text, err := i.client.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, oracle.ErrTimeout) {
			err = fmt.Errorf("%w: %v", oracle.ErrTimeout, err)
		}
		i.logger.Error("oracle call failed", "key", key, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return "", err
	}
	i.logger.Info("oracle call completed", "key", key, "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}
