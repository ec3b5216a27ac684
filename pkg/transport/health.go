package transport

import (
	"context"
	"net/http"
	"time"
)

// ReadyCheck is a named readiness probe against one backing dependency.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// readyCheckTimeout bounds each probe so a stuck store cannot hang the
// readiness endpoint.
const readyCheckTimeout = 5 * time.Second

// RegisterHealth mounts the liveness and readiness endpoints. healthz
// always answers ok; readyz runs every check and reports the first
// failure with a 503 so orchestrators stop routing to this instance.
func RegisterHealth(mux *http.ServeMux, checks []ReadyCheck) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
			err := c.Check(ctx)
			cancel()
			if err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"failed": c.Name,
				})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}
