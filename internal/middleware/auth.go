package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/blog-api/internal/apierr"
	"github.com/crucial707/blog-api/internal/auth"
	"github.com/crucial707/blog-api/internal/metrics"
	"github.com/crucial707/blog-api/internal/revocation"
	"github.com/crucial707/blog-api/internal/token"
)

// TokenDecoder is the part of the token codec the middleware needs.
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func bearerToken(value string) (string, bool) {
	scheme, tok, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func reject(w http.ResponseWriter, r *http.Request, err *apierr.Error) {
	metrics.IncAuthRejection(err.Code)
	apierr.Write(w, r, err)
}

// Authenticate decodes the bearer token and attaches the caller's identity to
// the request context. denylist may be nil when revocation is disabled.
func Authenticate(codec TokenDecoder, denylist revocation.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w, r, apierr.Unauthorized(apierr.CodeTokenMissing, "authentication token required"))
				return
			}

			claims, err := codec.Decode(raw)
			switch {
			case err == nil:
			case errors.Is(err, token.ErrTokenExpired):
				reject(w, r, apierr.Unauthorized(apierr.CodeTokenExpired, "token expired"))
				return
			default:
				reject(w, r, apierr.Unauthorized(apierr.CodeTokenInvalid, "invalid token"))
				return
			}

			if denylist != nil && claims.ID != "" {
				revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					slog.Error("denylist lookup failed", "error", err)
					apierr.Write(w, r, apierr.Internal())
					return
				}
				if revoked {
					reject(w, r, apierr.Unauthorized(apierr.CodeTokenRevoked, "token revoked"))
					return
				}
			}

			ctx := auth.WithIdentity(r.Context(), auth.IdentityFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize returns a guard that admits only identities whose role is in roles.
// It must run after Authenticate; a request without identity is rejected with AUTH_REQUIRED.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				reject(w, r, apierr.Unauthorized(apierr.CodeAuthRequired, "authentication required"))
				return
			}
			if !allowed[id.Role] {
				reject(w, r, apierr.Forbidden(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
