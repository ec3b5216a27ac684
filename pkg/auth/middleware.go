package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/observability"
	"github.com/taskgate/taskgate/pkg/ratelimit"
)

// MiddlewareConfig holds the middleware's routing and network settings.
type MiddlewareConfig struct {
	// BypassEndpoints skip authentication but still consume the IP-keyed
	// rate limit budget, so unauthenticated probing stays bounded.
	BypassEndpoints []string

	// TrustProxy enables reading the client IP from the first
	// X-Forwarded-For hop. Leave it off unless a trusted proxy
	// terminates all inbound traffic.
	TrustProxy bool
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// Middleware creates the gateway's HTTP middleware from a TokenValidator
// and a RateLimiter. Per request the stages run strictly in order:
// authenticate, rate limit, dispatch. A failed stage short-circuits; a
// rejected request never reaches the stages behind it.
//
// All authentication failures produce an identical 401 body. The distinct
// cause (missing header, unknown hash, expired, revoked) appears only in
// logs and metrics.
func Middleware(validator TokenValidator, limiter ratelimit.Limiter, policy ratelimit.Policy, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(cfg.BypassEndpoints))
	for _, ep := range cfg.BypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Bypass endpoints carry no identity: rate limit by client IP.
			if bypass[r.URL.Path] {
				if !enforceLimit(w, r, limiter, policy, "ip:"+clientIP(r, cfg.TrustProxy)) {
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Extract the bearer token. A missing or malformed header is
			// rejected before any store access.
			token, headerReason := bearerToken(r)
			if headerReason != "" {
				observability.AuthFailuresTotal.WithLabelValues(headerReason).Inc()
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"reason", headerReason,
				)
				writeError(w, api.NewUnauthorizedError(), http.StatusUnauthorized)
				return
			}

			principal, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					reason := failureReason(err)
					observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
					slog.Warn("authentication failed",
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
						"reason", reason,
					)
					writeError(w, api.NewUnauthorizedError(), http.StatusUnauthorized)
					return
				}

				// Session store unreachable: fail closed, never allow.
				observability.StoreErrorsTotal.WithLabelValues("session").Inc()
				slog.Error("session store unavailable",
					"path", r.URL.Path,
					"error", err,
				)
				writeError(w, api.NewUnavailableError("service temporarily unavailable"), http.StatusServiceUnavailable)
				return
			}

			if principal.ID == "" {
				slog.Error("validator returned principal with empty id")
				writeError(w, api.NewServerError("internal authentication error"), http.StatusInternalServerError)
				return
			}

			slog.Debug("authentication succeeded",
				"principal", principal.ID,
				"path", r.URL.Path,
			)

			// Rate limiting runs after authentication so that the counter
			// key is the principal, not the IP, for authenticated traffic.
			if !enforceLimit(w, r, limiter, policy, "principal:"+principal.ID) {
				return
			}

			ctx := SetPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The second
// return value is a non-empty failure reason when no usable token is present.
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing_header"
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "malformed_header"
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", "empty_token"
	}
	return token, ""
}

// enforceLimit checks the request against its class budget. Returns false
// when the response has already been written (denied or store failure).
func enforceLimit(w http.ResponseWriter, r *http.Request, limiter ratelimit.Limiter, policy ratelimit.Policy, key string) bool {
	if limiter == nil {
		return true
	}

	class := ratelimit.ClassForMethod(r.Method)
	dec, err := limiter.Allow(r.Context(), string(class)+":"+key, policy.ForClass(class))
	if err != nil {
		// Counter store unreachable: fail closed.
		observability.StoreErrorsTotal.WithLabelValues("ratelimit").Inc()
		slog.Error("rate limit store unavailable",
			"key", key,
			"error", err,
		)
		writeError(w, api.NewUnavailableError("service temporarily unavailable"), http.StatusServiceUnavailable)
		return false
	}

	if !dec.Allowed {
		observability.RateLimitRejectedTotal.WithLabelValues(string(class)).Inc()
		slog.Warn("rate limit exceeded",
			"key", key,
			"class", string(class),
		)
		w.Header().Set("Retry-After", strconv.Itoa(int(dec.RetryAfter/time.Second)))
		writeError(w, api.NewTooManyRequestsError("rate limit exceeded"), http.StatusTooManyRequests)
		return false
	}

	return true
}

// clientIP derives the rate limit key for unauthenticated requests.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// failureReasoner is implemented by validation errors that carry an
// internal reason label (session.InvalidError).
type failureReasoner interface {
	FailureReason() string
}

// failureReason extracts the metric label from a validation error.
func failureReason(err error) string {
	var fr failureReasoner
	if errors.As(err, &fr) {
		return fr.FailureReason()
	}
	return "invalid_token"
}

// writeError writes a JSON error envelope with the given status.
func writeError(w http.ResponseWriter, apiErr *api.APIError, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}
