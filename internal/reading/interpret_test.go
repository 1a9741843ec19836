package reading_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarotfutura/futura/internal/i18n"
	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func requestWithSpread(t *testing.T, lang i18n.Lang) reading.Request {
	t.Helper()
	s, err := tarot.NewSeededDrawer(1, 1).DrawThree(tarot.Catalog())
	require.NoError(t, err)
	r := validRequest()
	r.Language = lang
	r.Spread = s
	return r
}

func TestBuildPrompt(t *testing.T) {
	r, err := requestWithSpread(t, i18n.ES).Normalize()
	require.NoError(t, err)

	p := reading.BuildPrompt(r)
	for _, h := range reading.Headers[i18n.ES] {
		assert.Contains(t, p.System, h+":")
		assert.Contains(t, p.User, h+":")
	}
	assert.Contains(t, p.User, "María José")
	assert.Contains(t, p.User, "el amor")
	for _, dc := range r.Spread {
		assert.Contains(t, p.User, dc.Card.DisplayName(i18n.ES))
	}

	r.Language = i18n.EN
	p = reading.BuildPrompt(r)
	for _, h := range reading.Headers[i18n.EN] {
		assert.Contains(t, p.User, h+":")
	}
	assert.Contains(t, p.User, r.Spread[0].Card.DisplayName(i18n.EN))
}

func TestInterpret(t *testing.T) {
	var got oracle.Prompt
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		got = p
		return "PASADO: a\nPRESENTE: b\nFUTURO: c", nil
	})
	in := reading.NewInterpreter(client, time.Second, discard())

	r := requestWithSpread(t, i18n.ES)
	r.Question = "¿Qué pasará <b>con mi trabajo</b>?"
	text, err := in.Interpret(context.Background(), "r1", r)
	require.NoError(t, err)
	assert.Equal(t, reading.OutcomeLabeled, reading.ParseSections(text).Outcome)
	assert.NotContains(t, got.User, "<b>")
}

func TestInterpretRejectsInvalidInput(t *testing.T) {
	var calls atomic.Int32
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		calls.Add(1)
		return "x", nil
	})
	in := reading.NewInterpreter(client, time.Second, discard())

	r := requestWithSpread(t, i18n.ES)
	r.Question = "short"
	_, err := in.Interpret(context.Background(), "r1", r)
	assert.ErrorIs(t, err, reading.ErrInvalidInput)
	assert.Zero(t, calls.Load())
}

func TestInterpretPassesOracleErrors(t *testing.T) {
	for _, want := range []error{oracle.ErrRateLimited, oracle.ErrQuotaExhausted, oracle.ErrUnavailable} {
		client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
			return "", want
		})
		in := reading.NewInterpreter(client, time.Second, discard())
		_, err := in.Interpret(context.Background(), "r1", requestWithSpread(t, i18n.EN))
		assert.ErrorIs(t, err, want)
	}
}

func TestInterpretTimeout(t *testing.T) {
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	in := reading.NewInterpreter(client, 20*time.Millisecond, discard())
	_, err := in.Interpret(context.Background(), "r1", requestWithSpread(t, i18n.ES))
	assert.ErrorIs(t, err, oracle.ErrTimeout)
}

func TestInterpretSingleFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		calls.Add(1)
		<-release
		return "PASADO: a\nPRESENTE: b\nFUTURO: c", nil
	})
	in := reading.NewInterpreter(client, 5*time.Second, discard())
	r := requestWithSpread(t, i18n.ES)

	const n = 5
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := in.Interpret(context.Background(), "same", r)
			assert.NoError(t, err)
			results[i] = text
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, text := range results {
		assert.True(t, strings.HasPrefix(text, "PASADO"))
	}
}

func TestInterpretCallerCancelDoesNotAbortSharedCall(t *testing.T) {
	release := make(chan struct{})
	var sawCancel atomic.Bool
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		select {
		case <-release:
			return "PASADO: a\nPRESENTE: b\nFUTURO: c", nil
		case <-ctx.Done():
			sawCancel.Store(true)
			return "", ctx.Err()
		}
	})
	in := reading.NewInterpreter(client, 5*time.Second, discard())
	r := requestWithSpread(t, i18n.ES)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := in.Interpret(ctx, "k", r)
		first <- err
	}()
	time.Sleep(20 * time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := in.Interpret(context.Background(), "k", r)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.True(t, errors.Is(<-first, context.Canceled))

	close(release)
	assert.NoError(t, <-second)
	assert.False(t, sawCancel.Load())
}

// memoryText is a one-slot store with keep-first semantics.
type memoryText struct {
	mu   sync.Mutex
	text string
}

func (m *memoryText) funcs() reading.TextStoreFuncs {
	return reading.TextStoreFuncs{
		Load: func(context.Context) (string, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.text, nil
		},
		Save: func(_ context.Context, text string) (string, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.text == "" {
				m.text = text
			}
			return m.text, nil
		},
	}
}

func TestInterpretOnceUsesStoredText(t *testing.T) {
	var calls atomic.Int32
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		n := calls.Add(1)
		return "PASADO: a\nPRESENTE: b\nFUTURO: call " + string(rune('0'+n)), nil
	})
	in := reading.NewInterpreter(client, time.Second, discard())
	r := requestWithSpread(t, i18n.ES)
	store := &memoryText{}

	first, err := in.InterpretOnce(context.Background(), "r1", r, store.funcs())
	require.NoError(t, err)
	second, err := in.InterpretOnce(context.Background(), "r1", r, store.funcs())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
	assert.Contains(t, second, "call 1")
}

func TestInterpretOnceBackToBackCallers(t *testing.T) {
	var calls atomic.Int32
	client := oracle.ClientFunc(func(ctx context.Context, p oracle.Prompt) (string, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return "PASADO: a\nPRESENTE: b\nFUTURO: c", nil
	})
	in := reading.NewInterpreter(client, time.Second, discard())
	r := requestWithSpread(t, i18n.ES)
	store := &memoryText{}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Duration(calls.Load()) * time.Millisecond)
			_, err := in.InterpretOnce(context.Background(), "r1", r, store.funcs())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
