package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/config"
	"github.com/JonMunkholm/solaradmin/internal/core"
	_ "github.com/JonMunkholm/solaradmin/internal/core/screens" // Register all screens
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/session"
	"github.com/JonMunkholm/solaradmin/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"database", cfg.HasDatabase(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Sessions and the audit log live in Postgres when it is configured.
	var (
		store session.Store = session.NewMemoryStore()
		audit *core.AuditService
	)
	if cfg.HasDatabase() {
		pool, err := connect(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := session.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to migrate session store", "error", err)
			os.Exit(1)
		}
		store = pg

		audit = core.NewAuditService(pool)
		if err := audit.Migrate(ctx); err != nil {
			slog.Error("failed to migrate audit log", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("no database configured: sessions are kept in memory and audit logging is off")
	}

	client := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: "solaradmin",
	}, session.Token)

	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	// Log registered screens
	slog.Info("screens registered",
		"count", core.ScreenCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("screen group", "group", group, "screens", len(core.ByGroup(group)))
	}

	server := web.NewServer(web.Deps{
		Config:   cfg,
		Client:   client,
		Sessions: session.NewManager(store, session.CookieConfig{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}),
		Audit:    audit,
		Limiter:  limiter,
	})

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	maintenance := &core.Maintenance{
		Sessions: store,
		Audit:    audit,
		Config: core.MaintenanceConfig{
			AuditRetention: cfg.Maintenance.AuditRetention(),
			Interval:       cfg.Maintenance.Interval,
		},
	}
	go maintenance.Start(jobCtx)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// connect opens the Postgres pool with the configured limits and verifies it.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
