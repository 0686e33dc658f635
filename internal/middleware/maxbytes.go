package middleware

import (
	"net/http"

	"github.com/crucial707/blog-api/internal/apierr"
)

// DefaultMaxBodyBytes is the default maximum request body size (10 MiB).
const DefaultMaxBodyBytes = 10 << 20

// MaxBytes caps the request body. Reads past the cap fail with *http.MaxBytesError,
// which the JSON decoder in handlers turns into 413.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				apierr.Write(w, r, apierr.PayloadTooLarge())
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
