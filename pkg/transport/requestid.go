package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns middleware that assigns a unique request ID to each
// request. If the request carries an X-Request-ID header, that value is
// used; otherwise a new ID is generated. The ID is stored in the context
// and echoed on the response so clients can correlate failures.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", id)
			ctx := ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
