package server

import (
	"errors"
	"net/http"
	"time"
)

type adminSession struct {
	AdminID string
	Email   string
}

var errNoAdminSession = errors.New("no valid admin session")

const (
	adminCookieName = "admin_session"
	adminSessionTTL = 7 * 24 * time.Hour
)

// setAdminCookie hands the browser a session cookie. An empty sessionID
// expires the cookie instead.
func setAdminCookie(w http.ResponseWriter, sessionID string) {
	maxAge := int(adminSessionTTL / time.Second)
	if sessionID == "" {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// adminCookie returns the session ID the request carries, if any.
func adminCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(adminCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
