// Command server runs the taskgate gateway: it validates bearer tokens
// against the auth service's session table, enforces per-principal rate
// limits, and serves the owner-scoped task API.
//
// Configuration is layered: config.yaml (or TASKGATE_CONFIG), TASKGATE_*
// environment variables, and _file secret references. See pkg/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taskgate/taskgate/pkg/auth"
	"github.com/taskgate/taskgate/pkg/config"
	"github.com/taskgate/taskgate/pkg/ratelimit"
	rlmemory "github.com/taskgate/taskgate/pkg/ratelimit/memory"
	rlredis "github.com/taskgate/taskgate/pkg/ratelimit/redis"
	"github.com/taskgate/taskgate/pkg/session"
	sessionmemory "github.com/taskgate/taskgate/pkg/session/memory"
	sessionpg "github.com/taskgate/taskgate/pkg/session/postgres"
	"github.com/taskgate/taskgate/pkg/storage"
	storagememory "github.com/taskgate/taskgate/pkg/storage/memory"
	storagepg "github.com/taskgate/taskgate/pkg/storage/postgres"
	"github.com/taskgate/taskgate/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	setupLogger(cfg.Log)

	hasher, err := auth.NewTokenHasher(cfg.Auth.TokenSecret)
	if err != nil {
		return fmt.Errorf("creating token hasher: %w", err)
	}

	ctx := context.Background()
	var checks []transport.ReadyCheck

	// Session store (read-only view of the auth service's table).
	var sessStore session.Store
	switch cfg.Auth.Session.Store {
	case "postgres":
		pg, err := sessionpg.New(ctx, sessionpg.Config{
			DSN:      cfg.Auth.Session.Postgres.DSN,
			MaxConns: cfg.Auth.Session.Postgres.MaxConns,
		})
		if err != nil {
			return fmt.Errorf("creating session store: %w", err)
		}
		defer pg.Close()
		sessStore = pg
		checks = append(checks, transport.ReadyCheck{Name: "session_store", Check: pg.Ping})
		slog.Info("session store ready", "type", "postgres")
	default:
		slog.Warn("using in-memory session store; no tokens issued by the auth service will validate")
		sessStore = sessionmemory.New()
	}

	validator := session.NewValidator(sessStore, hasher)

	// Rate limit counter store.
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Store {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()

		rl := rlredis.New(client)
		limiter = rl
		checks = append(checks, transport.ReadyCheck{Name: "ratelimit_store", Check: rl.Ping})
		slog.Info("rate limit store ready", "type", "redis")
	default:
		slog.Warn("using in-process rate limit counters; limits only hold for a single instance")
		limiter = rlmemory.New()
	}

	policy := ratelimit.Policy{
		Read: ratelimit.Limit{
			Requests: cfg.RateLimit.Read.Requests,
			Window:   time.Duration(cfg.RateLimit.Read.WindowSeconds) * time.Second,
		},
		Write: ratelimit.Limit{
			Requests: cfg.RateLimit.Write.Requests,
			Window:   time.Duration(cfg.RateLimit.Write.WindowSeconds) * time.Second,
		},
	}

	// Task store.
	var taskStore storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := storagepg.New(ctx, storagepg.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating task store: %w", err)
		}
		taskStore = pg
		checks = append(checks, transport.ReadyCheck{Name: "task_store", Check: pg.HealthCheck})
		slog.Info("task store ready", "type", "postgres")
	default:
		taskStore = storagememory.New()
		slog.Info("task store ready", "type", "memory")
	}
	defer taskStore.Close()

	// Routes.
	mux := http.NewServeMux()
	taskHandler := transport.NewTaskHandler(taskStore, storage.MismatchPolicy(cfg.Ownership.MismatchStatus))
	taskHandler.Register(mux)
	transport.RegisterHealth(mux, checks)

	bypass := []string{"/healthz", "/readyz"}
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		bypass = append(bypass, cfg.Observability.Metrics.Path)
	}

	authMW := auth.Middleware(validator, limiter, policy, auth.MiddlewareConfig{
		BypassEndpoints: bypass,
		TrustProxy:      cfg.Server.TrustProxy,
	})

	srv := transport.NewServer(authMW(mux),
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithMaxBodySize(cfg.Server.MaxBodySize),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(slog.Default()),
	)

	slog.Info("taskgate starting",
		"port", cfg.Server.Port,
		"session_store", cfg.Auth.Session.Store,
		"ratelimit_store", cfg.RateLimit.Store,
		"task_store", cfg.Storage.Type,
		"mismatch_status", cfg.Ownership.MismatchStatus,
	)

	return srv.ListenAndServe()
}

// setupLogger installs the process-wide slog default from config.
func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
