package transport

import (
	"log/slog"
	"net/http"

	"github.com/taskgate/taskgate/pkg/api"
)

// Recovery returns middleware that catches panics in the handler chain and
// converts them to server error responses. The server continues to accept
// new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"path", r.URL.Path,
						"panic", rec,
					)
					WriteAPIError(w, api.NewServerError("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
