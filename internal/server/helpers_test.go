package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tarotfutura/futura/internal/auth"
	"github.com/tarotfutura/futura/internal/database"
	"github.com/tarotfutura/futura/internal/handler/health"
	"github.com/tarotfutura/futura/internal/horoscope"
	"github.com/tarotfutura/futura/internal/migrations"
	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/personality"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

var testSecret = []byte("test-secret")

const labeledReading = "PASADO: Una etapa cerrada.\nPRESENTE: Un cruce de caminos.\nFUTURO: Una puerta abierta."

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logBuffer collects log output from handlers that may run concurrently.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

// fakeVerifier answers from a fixed table of transactions.
type fakeVerifier struct {
	mu    sync.Mutex
	txns  map[string]payment.Verification
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, txn string) (payment.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	v, ok := f.txns[txn]
	if !ok {
		return payment.Verification{TransactionID: txn, Status: payment.StatusFailed}, nil
	}
	return v, nil
}

type testEnv struct {
	router   *chi.Mux
	store    *SQLiteStore
	verifier *fakeVerifier
	oracle   *atomic.Int32
	revealer *tarot.Revealer
	broker   *Broker
	logs     *logBuffer
}

// newTestEnv wires a router over an in-memory database. opts run on the
// dependencies before the router is built.
func newTestEnv(t *testing.T, opts ...func(*Deps)) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	logs := &logBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	calls := &atomic.Int32{}
	client := oracle.ClientFunc(func(context.Context, oracle.Prompt) (string, error) {
		calls.Add(1)
		return labeledReading, nil
	})

	verifier := &fakeVerifier{txns: map[string]payment.Verification{
		"TX-OK":      {TransactionID: "TX-OK", Status: payment.StatusCompleted, Amount: decimal.RequireFromString("2.99"), Currency: "USD"},
		"TX-OK-2":    {TransactionID: "TX-OK-2", Status: payment.StatusCompleted, Amount: decimal.RequireFromString("2.99"), Currency: "USD"},
		"TX-CHEAP":   {TransactionID: "TX-CHEAP", Status: payment.StatusCompleted, Amount: decimal.RequireFromString("0.99"), Currency: "USD"},
		"TX-PENDING": {TransactionID: "TX-PENDING", Status: payment.StatusPending, Amount: decimal.RequireFromString("2.99"), Currency: "USD"},
	}}

	engine, err := personality.Load()
	if err != nil {
		t.Fatalf("loading personality data: %v", err)
	}

	revealer := tarot.NewRevealer(20 * time.Millisecond)
	t.Cleanup(revealer.Stop)

	deps := Deps{
		Store:       store,
		Tokens:      auth.NewVerifier(testSecret, "authenticated"),
		Interpreter: reading.NewInterpreter(client, time.Second, logger),
		Unlocker: payment.NewUnlocker(store, verifier, payment.UnlockerConfig{
			Price:   payment.Price{Amount: decimal.RequireFromString("2.99"), Currency: "USD"},
			Timeout: time.Second,
		}, logger),
		Horoscopes:  horoscope.NewService(store, client, time.Second, logger),
		Personality: engine,
		Drawer:      tarot.NewSeededDrawer(1, 2),
		Revealer:    revealer,
		Broker:      NewBroker(),
		Checks:      map[string]health.Checker{"database": database.Checker{DB: db}},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		router:   newRouter(logger, deps),
		store:    store,
		verifier: verifier,
		oracle:   calls,
		revealer: deps.Revealer,
		broker:   deps.Broker,
		logs:     logs,
	}
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.Issue(testSecret, userID, "authenticated", time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return tok
}

// do sends a request through the router. token may be empty.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

var validReading = CreateReadingRequest{
	UserName: "Ana",
	Focus:    "love",
	Question: "¿Qué me espera este año?",
}

func createReading(t *testing.T, e *testEnv, token string) reading.View {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/readings", token, validReading)
	expectStatus(t, w, http.StatusCreated)
	return decode[reading.View](t, w)
}
