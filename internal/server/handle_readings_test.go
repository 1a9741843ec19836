package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tarotfutura/futura/internal/oracle"
	"github.com/tarotfutura/futura/internal/payment"
	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

func TestCreateReading(t *testing.T) {
	e := newTestEnv(t)
	view := createReading(t, e, tokenFor(t, "user-1"))

	if view.ID == "" {
		t.Fatal("expected reading id")
	}
	if len(view.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(view.Cards))
	}
	seen := map[string]bool{}
	for i, c := range view.Cards {
		if c.Position != tarot.Positions[i] {
			t.Errorf("card %d position = %q, want %q", i, c.Position, tarot.Positions[i])
		}
		if seen[c.ID] {
			t.Errorf("card %s drawn twice", c.ID)
		}
		seen[c.ID] = true
	}
	if view.Interpreted || view.Unlocked {
		t.Errorf("new reading should be neither interpreted nor unlocked: %+v", view)
	}
}

func TestCreateReadingRejects(t *testing.T) {
	e := newTestEnv(t)
	token := tokenFor(t, "user-1")

	tests := []struct {
		name string
		body CreateReadingRequest
	}{
		{"missing name", CreateReadingRequest{Focus: "love", Question: "¿Qué me espera este año?"}},
		{"digits in name", CreateReadingRequest{UserName: "Ana2", Focus: "love", Question: "¿Qué me espera este año?"}},
		{"short question", CreateReadingRequest{UserName: "Ana", Focus: "love", Question: "¿Y?"}},
		{"long question", CreateReadingRequest{UserName: "Ana", Focus: "love", Question: strings.Repeat("a", 501)}},
		{"unknown focus", CreateReadingRequest{UserName: "Ana", Focus: "health", Question: "¿Qué me espera este año?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/api/readings", token, tt.body)
			expectStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestReadingsRequireToken(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/readings", "", validReading)
	expectStatus(t, w, http.StatusUnauthorized)

	w = e.do(t, http.MethodGet, "/api/readings", "not-a-jwt", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestGetReadingOwnership(t *testing.T) {
	e := newTestEnv(t)
	view := createReading(t, e, tokenFor(t, "owner"))

	w := e.do(t, http.MethodGet, "/api/readings/"+view.ID, tokenFor(t, "owner"), nil)
	expectStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodGet, "/api/readings/"+view.ID, tokenFor(t, "intruder"), nil)
	expectStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodGet, "/api/readings/does-not-exist", tokenFor(t, "owner"), nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestListReadings(t *testing.T) {
	e := newTestEnv(t)
	a, b := tokenFor(t, "a"), tokenFor(t, "b")
	createReading(t, e, a)
	createReading(t, e, a)
	createReading(t, e, b)

	w := e.do(t, http.MethodGet, "/api/readings", a, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]reading.View](t, w); len(got) != 2 {
		t.Errorf("user a: expected 2 readings, got %d", len(got))
	}

	w = e.do(t, http.MethodGet, "/api/readings?limit=1", a, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]reading.View](t, w); len(got) != 1 {
		t.Errorf("limit=1: expected 1 reading, got %d", len(got))
	}

	w = e.do(t, http.MethodGet, "/api/readings?limit=zero", a, nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestInterpretAndUnlock(t *testing.T) {
	e := newTestEnv(t)
	token := tokenFor(t, "seeker")
	view := createReading(t, e, token)
	base := "/api/readings/" + view.ID

	w := e.do(t, http.MethodPost, base+"/interpret", token, nil)
	expectStatus(t, w, http.StatusOK)
	got := decode[reading.View](t, w)
	if got.Outcome != reading.OutcomeLabeled {
		t.Errorf("outcome = %q, want labeled", got.Outcome)
	}
	if got.Sections.Past == "" || got.Sections.Present == "" {
		t.Errorf("past and present should be visible: %+v", got.Sections)
	}
	if got.Sections.Future != "" || got.RawText != "" {
		t.Errorf("future must stay hidden before unlock: %+v", got)
	}

	// Stored text is reused.
	w = e.do(t, http.MethodPost, base+"/interpret", token, nil)
	expectStatus(t, w, http.StatusOK)
	if n := e.oracle.Load(); n != 1 {
		t.Errorf("oracle called %d times, want 1", n)
	}

	w = e.do(t, http.MethodPost, base+"/unlock", token, UnlockRequest{TransactionID: "TX-OK"})
	expectStatus(t, w, http.StatusOK)
	res := decode[payment.UnlockResult](t, w)
	if res.State != payment.Unlocked || res.AlreadyProcessed {
		t.Errorf("unexpected unlock result: %+v", res)
	}

	w = e.do(t, http.MethodGet, base, token, nil)
	expectStatus(t, w, http.StatusOK)
	got = decode[reading.View](t, w)
	if !got.Unlocked || got.Sections.Future != "Una puerta abierta." || got.RawText != labeledReading {
		t.Errorf("unlocked reading should expose everything: %+v", got)
	}

	// Replaying the transaction is a no-op.
	calls := e.verifier.calls
	w = e.do(t, http.MethodPost, base+"/unlock", token, UnlockRequest{TransactionID: "TX-OK"})
	expectStatus(t, w, http.StatusOK)
	res = decode[payment.UnlockResult](t, w)
	if !res.AlreadyProcessed || res.State != payment.Unlocked {
		t.Errorf("replay should be already processed: %+v", res)
	}
	if e.verifier.calls != calls {
		t.Error("replay should not reach the processor")
	}
}

func TestUnlockFailures(t *testing.T) {
	e := newTestEnv(t)
	token := tokenFor(t, "seeker")
	view := createReading(t, e, token)
	base := "/api/readings/" + view.ID

	tests := []struct {
		name  string
		path  string
		token string
		txn   string
		want  int
	}{
		{"missing transaction", base + "/unlock", token, "", http.StatusBadRequest},
		{"pending payment", base + "/unlock", token, "TX-PENDING", http.StatusPaymentRequired},
		{"failed payment", base + "/unlock", token, "TX-UNKNOWN", http.StatusPaymentRequired},
		{"wrong amount", base + "/unlock", token, "TX-CHEAP", http.StatusPaymentRequired},
		{"foreign reading", base + "/unlock", tokenFor(t, "intruder"), "TX-OK-2", http.StatusForbidden},
		{"unknown reading", "/api/readings/nope/unlock", token, "TX-OK-2", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, tt.path, tt.token, UnlockRequest{TransactionID: tt.txn})
			expectStatus(t, w, tt.want)
		})
	}

	w := e.do(t, http.MethodGet, base, token, nil)
	if got := decode[reading.View](t, w); got.Unlocked {
		t.Error("failed unlocks must leave the reading locked")
	}
}

func TestInterpretForeignReading(t *testing.T) {
	e := newTestEnv(t)
	view := createReading(t, e, tokenFor(t, "owner"))

	w := e.do(t, http.MethodPost, "/api/readings/"+view.ID+"/interpret", tokenFor(t, "intruder"), nil)
	expectStatus(t, w, http.StatusForbidden)
	if n := e.oracle.Load(); n != 0 {
		t.Errorf("oracle called %d times for a foreign reading", n)
	}
}

func TestForeignReadingAccessIsLogged(t *testing.T) {
	e := newTestEnv(t)
	view := createReading(t, e, tokenFor(t, "owner"))
	intruder := tokenFor(t, "intruder")

	expectStatus(t, e.do(t, http.MethodGet, "/api/readings/"+view.ID, intruder, nil), http.StatusForbidden)
	expectStatus(t, e.do(t, http.MethodPost, "/api/readings/"+view.ID+"/interpret", intruder, nil), http.StatusForbidden)

	var warnings []string
	for _, line := range strings.Split(e.logs.String(), "\n") {
		if strings.Contains(line, "access to foreign reading") {
			warnings = append(warnings, line)
		}
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 security warnings, got %d:\n%s", len(warnings), e.logs.String())
	}
	for _, line := range warnings {
		for _, want := range []string{"level=WARN", "security=true", "user_id=intruder", "reading_id=" + view.ID} {
			if !strings.Contains(line, want) {
				t.Errorf("warning %q missing %q", line, want)
			}
		}
	}
}

func TestConcurrentInterpretCallsOracleOnce(t *testing.T) {
	release := make(chan struct{})
	calls := &atomic.Int32{}
	e := newTestEnv(t, func(d *Deps) {
		client := oracle.ClientFunc(func(context.Context, oracle.Prompt) (string, error) {
			calls.Add(1)
			<-release
			return labeledReading, nil
		})
		d.Interpreter = reading.NewInterpreter(client, 5*time.Second, quietLogger())
	})
	token := tokenFor(t, "eager")
	view := createReading(t, e, token)
	path := "/api/readings/" + view.ID + "/interpret"

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	texts := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := e.do(t, http.MethodPost, path, token, nil)
			codes[i] = w.Code
			var v reading.View
			if err := json.NewDecoder(w.Body).Decode(&v); err == nil {
				texts[i] = v.Sections.Past
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// Callers arriving after the first save must read it back.
	for range 4 {
		expectStatus(t, e.do(t, http.MethodPost, path, token, nil), http.StatusOK)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("oracle called %d times, want 1", got)
	}
	for i := range n {
		if codes[i] != http.StatusOK || texts[i] == "" {
			t.Errorf("request %d: status %d, past %q", i, codes[i], texts[i])
		}
	}
}
