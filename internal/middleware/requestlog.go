package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/blog-api/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RequestLog logs each request with request_id, method, path, status, duration, size and client ip.
// Use after RequestID middleware so the ID is available.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		// Authenticate runs deeper in the chain; the identity is read back from
		// the request it hands down, which this middleware never sees. The
		// holder lets inner middleware report the username.
		holder := &userHolder{}
		next.ServeHTTP(wrap, r.WithContext(withUserHolder(r.Context(), holder)))

		attrs := []any{
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrap.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", wrap.size,
			"ip", clientIP(r),
		}
		if holder.username != "" {
			attrs = append(attrs, "user", holder.username)
		}
		level := slog.LevelInfo
		if wrap.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request", attrs...)
	})
}

// IdentityLogger records the authenticated username for RequestLog. Mount it after Authenticate.
func IdentityLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := auth.FromContext(r.Context()); ok {
			if h := userHolderFrom(r.Context()); h != nil {
				h.username = id.Username
			}
		}
		next.ServeHTTP(w, r)
	})
}
