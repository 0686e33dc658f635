package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/crucial707/blog-api/internal/apierr"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer recovers from panics, logs the stack with request ID, and returns
// a 500 JSON envelope so the process never crashes. When exposeStack is true
// (non-production) the stack is included in the body under "stack".
func Recoverer(exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := debug.Stack()
				slog.Error("panic recovered",
					"request_id", chimw.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(stack))

				body := map[string]string{"error": apierr.MessageInternal, "code": apierr.CodeInternal}
				if exposeStack {
					body["stack"] = string(stack)
				}
				apierr.JSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
