package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tarotfutura/futura/internal/payment"
)

func seedAdmin(t *testing.T, e *testEnv) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if _, err := e.store.CreateAdmin(context.Background(), "oracle@futura.test", string(hash)); err != nil {
		t.Fatalf("creating admin: %v", err)
	}
}

func login(t *testing.T, e *testEnv, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/admin/login", "", AdminLoginRequest{Email: email, Password: password})
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestAdminLogin(t *testing.T) {
	e := newTestEnv(t)
	seedAdmin(t, e)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"good credentials", "oracle@futura.test", "changeme", http.StatusOK},
		{"email is case insensitive", "  Oracle@Futura.test ", "changeme", http.StatusOK},
		{"wrong password", "oracle@futura.test", "nope", http.StatusUnauthorized},
		{"unknown email", "ghost@futura.test", "changeme", http.StatusUnauthorized},
		{"missing password", "oracle@futura.test", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := login(t, e, tt.email, tt.password)
			expectStatus(t, w, tt.want)
			if tt.want != http.StatusOK {
				return
			}
			found := false
			for _, c := range w.Result().Cookies() {
				if c.Name == adminCookieName && c.Value != "" && c.HttpOnly {
					found = true
				}
			}
			if !found {
				t.Error("expected admin_session cookie")
			}
		})
	}
}

func TestAdminSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	seedAdmin(t, e)

	w := login(t, e, "oracle@futura.test", "changeme")
	expectStatus(t, w, http.StatusOK)
	cookies := w.Result().Cookies()

	me := func() *httptest.ResponseRecorder {
		req := withCookies(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil), cookies)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	rec := me()
	expectStatus(t, rec, http.StatusOK)
	if got := decode[AdminMeResponse](t, rec); got.Email != "oracle@futura.test" {
		t.Errorf("email = %q", got.Email)
	}

	req := withCookies(httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil), cookies)
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusNoContent)
	expectExpiredAdminCookie(t, rec)

	// The old cookie no longer names a session.
	expectStatus(t, me(), http.StatusUnauthorized)
	if !strings.Contains(e.logs.String(), "admin logged out") {
		t.Error("expected logout to be logged")
	}
}

func TestAdminLogoutWithoutSession(t *testing.T) {
	e := newTestEnv(t)

	for _, cookies := range [][]*http.Cookie{
		nil,
		{{Name: adminCookieName, Value: "no-such-session"}},
	} {
		req := withCookies(httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil), cookies)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		expectStatus(t, rec, http.StatusNoContent)
		expectExpiredAdminCookie(t, rec)
	}
}

func expectExpiredAdminCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			if c.MaxAge >= 0 || c.Value != "" {
				t.Errorf("cookie not expired: %+v", c)
			}
			return
		}
	}
	t.Error("expected an expiring admin_session cookie")
}

func TestAdminPayments(t *testing.T) {
	e := newTestEnv(t)
	seedAdmin(t, e)

	w := e.do(t, http.MethodGet, "/api/admin/payments", "", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	token := tokenFor(t, "seeker")
	view := createReading(t, e, token)
	w = e.do(t, http.MethodPost, "/api/readings/"+view.ID+"/unlock", token, UnlockRequest{TransactionID: "TX-OK"})
	expectStatus(t, w, http.StatusOK)

	w = login(t, e, "oracle@futura.test", "changeme")
	expectStatus(t, w, http.StatusOK)

	req := withCookies(httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil), w.Result().Cookies())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	payments := decode[[]payment.Payment](t, rec)
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	p := payments[0]
	if p.ReadingID != view.ID || p.TransactionID != "TX-OK" || p.UserID != "seeker" {
		t.Errorf("unexpected payment: %+v", p)
	}
	if p.Amount.String() != "2.99" || p.Status != payment.StatusCompleted {
		t.Errorf("unexpected amount or status: %s %s", p.Amount, p.Status)
	}
}
