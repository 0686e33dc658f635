package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/revocation"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Service *auth.Service
	// Denylist receives logged-out token ids; nil disables logout.
	Denylist revocation.Denylist
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if err := validateStruct(input); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := h.Service.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, r, apierr.Unauthorized(apierr.CodeInvalidCredentials, "invalid credentials"))
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "login successful",
		"token":     sess.Token,
		"user":      sess.User,
		"expiresIn": formatTTL(sess.ExpiresIn),
	})
}

// formatTTL renders whole hours as "24h" and anything else with Duration.String.
func formatTTL(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", d/time.Hour)
	}
	return d.String()
}

// ==========================
// Verify
// ==========================
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": id})
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
		return
	}
	if h.Denylist != nil && id.TokenID != "" {
		if err := h.Denylist.Revoke(r.Context(), id.TokenID, id.ExpiresAt); err != nil {
			writeError(w, r, err)
			return
		}
	}
	slog.Info("logout", "username", id.Username)
	w.WriteHeader(http.StatusNoContent)
}
