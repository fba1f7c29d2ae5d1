// Package logging configures log/slog for the dashboard.
//
// Request loggers pick up chi's request ID and, once the session middleware
// has run, the id of the signed-in admin, so every line of a request can be
// correlated with the person who caused it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type adminIDKey struct{}

// Setup configures the global slog logger.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithAdminID records the signed-in admin for request logging.
func ContextWithAdminID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, adminIDKey{}, id)
}

// AdminIDFromContext returns the admin recorded by ContextWithAdminID.
func AdminIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(adminIDKey{}).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the default logger enriched with request_id and
// admin_id when the context carries them.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("coupon deleted", "coupon_id", id)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if adminID := AdminIDFromContext(ctx); adminID != "" {
		logger = logger.With("admin_id", adminID)
	}

	return logger
}
