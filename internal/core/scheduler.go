package core

// scheduler.go runs periodic maintenance in the background:
//  1. Purge dashboard sessions past their expiry
//  2. Purge audit entries older than the retention period
//
// It is long-running and stops with its context. A failing step is logged
// and retried on the next tick; it never stops the server.

import (
	"context"
	"log/slog"
	"time"
)

// SessionPurger deletes expired sessions. Satisfied by every session.Store.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// MaintenanceConfig holds configuration for the maintenance scheduler.
type MaintenanceConfig struct {
	AuditRetention time.Duration // Age after which audit entries are purged (default: 90 days)
	Interval       time.Duration // How often to run (default: 1h)
}

// MaintenanceResult reports one run.
type MaintenanceResult struct {
	SessionsPurged int64
	AuditPurged    int64
}

// Maintenance purges expired sessions and old audit rows. Audit may be nil
// when no database is configured.
type Maintenance struct {
	Sessions SessionPurger
	Audit    *AuditService
	Config   MaintenanceConfig

	now func() time.Time
}

func (m *Maintenance) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// Start runs a maintenance pass immediately, then every Interval, until ctx
// is cancelled.
func (m *Maintenance) Start(ctx context.Context) {
	interval := m.Config.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	slog.Info("maintenance scheduler started",
		"interval", interval.String(),
		"audit_retention", m.retention().String(),
	)

	m.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("maintenance scheduler stopped")
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

func (m *Maintenance) retention() time.Duration {
	if m.Config.AuditRetention <= 0 {
		return 90 * 24 * time.Hour
	}
	return m.Config.AuditRetention
}

// RunOnce performs one maintenance pass.
func (m *Maintenance) RunOnce(ctx context.Context) MaintenanceResult {
	start := m.clock()
	var res MaintenanceResult

	if m.Sessions != nil {
		n, err := m.Sessions.PurgeExpired(ctx, start)
		if err != nil {
			slog.Error("session purge failed", "error", err)
		} else {
			res.SessionsPurged = n
		}
	}

	if m.Audit != nil {
		n, err := m.Audit.PurgeOlderThan(ctx, start.Add(-m.retention()))
		if err != nil {
			slog.Error("audit purge failed", "error", err)
		} else {
			res.AuditPurged = n
		}
	}

	slog.Info("maintenance completed",
		"sessions_purged", res.SessionsPurged,
		"audit_purged", res.AuditPurged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}
