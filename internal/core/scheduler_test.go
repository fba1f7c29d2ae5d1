package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

type fakePurger struct {
	n   int64
	err error
	at  time.Time
}

func (f *fakePurger) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return f.n, f.err
}

func TestMaintenance_RunOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM audit_log").
		WithArgs(now.Add(-30 * 24 * time.Hour)).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	sessions := &fakePurger{n: 3}
	m := &Maintenance{
		Sessions: sessions,
		Audit:    NewAuditService(mock),
		Config:   MaintenanceConfig{AuditRetention: 30 * 24 * time.Hour},
		now:      func() time.Time { return now },
	}

	got := m.RunOnce(context.Background())
	if got != (MaintenanceResult{SessionsPurged: 3, AuditPurged: 7}) {
		t.Errorf("RunOnce() = %+v", got)
	}
	if !sessions.at.Equal(now) {
		t.Errorf("sessions purged as of %v, want %v", sessions.at, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMaintenance_FailuresDoNotStopOtherSteps(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec("DELETE FROM audit_log").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	m := &Maintenance{
		Sessions: &fakePurger{err: errors.New("connection reset")},
		Audit:    NewAuditService(mock),
	}

	got := m.RunOnce(context.Background())
	if got.SessionsPurged != 0 || got.AuditPurged != 2 {
		t.Errorf("RunOnce() = %+v", got)
	}
}

func TestMaintenance_WithoutDatabase(t *testing.T) {
	m := &Maintenance{Sessions: &fakePurger{n: 1}}
	if got := m.RunOnce(context.Background()); got.SessionsPurged != 1 || got.AuditPurged != 0 {
		t.Errorf("RunOnce() = %+v", got)
	}
}

func TestMaintenance_StartStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m := &Maintenance{Sessions: &fakePurger{}, Config: MaintenanceConfig{Interval: time.Millisecond}}
	go func() {
		m.Start(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
