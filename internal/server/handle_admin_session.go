package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminMeResponse is the response for GET /api/admin/me.
type AdminMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func handleAdminLogin(logger *slog.Logger, admin AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		adminID, passwordHash, err := admin.AdminByEmail(r.Context(), req.Email)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			logger.Error("admin lookup", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			logger.Warn("admin login rejected", "email", req.Email)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := admin.CreateAdminSession(r.Context(), adminID)
		if err != nil {
			logger.Error("creating admin session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		setAdminCookie(w, sessionID)
		logger.Info("admin logged in", "admin_id", adminID)

		writeJSON(w, http.StatusOK, AdminMeResponse{
			ID:    adminID,
			Email: req.Email,
		})
	}
}

func handleAdminMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := adminFrom(r)
		writeJSON(w, http.StatusOK, AdminMeResponse{
			ID:    sess.AdminID,
			Email: sess.Email,
		})
	}
}

// handleAdminLogout ends the session named by the cookie. It always expires
// the cookie, even when the session is unknown or already gone.
func handleAdminLogout(logger *slog.Logger, admin AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := adminCookie(r); ok {
			sess, err := admin.AdminFromSession(r.Context(), sessionID)
			switch {
			case errors.Is(err, errNoAdminSession):
			case err != nil:
				logger.Error("admin session lookup", "error", err)
			default:
				logger.Info("admin logged out", "admin_id", sess.AdminID)
			}
			if err := admin.DeleteAdminSession(r.Context(), sessionID); err != nil {
				logger.Error("deleting admin session", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		setAdminCookie(w, "")
		w.WriteHeader(http.StatusNoContent)
	}
}
