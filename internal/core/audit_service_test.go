package core

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditRowColumns = []string{"id", "action", "severity", "entity", "record_id", "admin_id",
	"admin_email", "ip_address", "user_agent", "summary", "created_at"}

func newAuditMock(t *testing.T) (pgxmock.PgxPoolIface, *AuditService) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewAuditService(mock)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return mock, svc
}

func TestAuditService_Log(t *testing.T) {
	mock, svc := newAuditMock(t)

	ctx := WithRequestMeta(context.Background(), RequestMeta{IP: "203.0.113.9:51234", UserAgent: "Firefox"})
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(pgxmock.AnyArg(), "delete", "high", "coupons", "c-1", "u-1", "ada@example.com",
			"203.0.113.9", "Firefox", "Deleted coupon SUMMER10", svc.now()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	entry, err := svc.Log(ctx, AuditLogParams{
		Action:     ActionDelete,
		Entity:     "coupons",
		RecordID:   "c-1",
		AdminID:    "u-1",
		AdminEmail: "ada@example.com",
		Summary:    "Deleted coupon SUMMER10",
	})
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, entry.Severity)
	assert.Equal(t, "203.0.113.9", entry.IPAddress)
	assert.Len(t, entry.ID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_LogStoresEmptyAsNull(t *testing.T) {
	mock, svc := newAuditMock(t)

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(pgxmock.AnyArg(), "login", "low", "session", nil, "u-1", nil, nil, nil, nil, svc.now()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := svc.Log(context.Background(), AuditLogParams{Action: ActionLogin, Entity: "session", AdminID: "u-1", IPAddress: "not-an-ip"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_GetAuditLog(t *testing.T) {
	mock, svc := newAuditMock(t)
	at := svc.now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_log WHERE entity = $1 AND action = $2")).
		WithArgs("products", "update").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(47)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_log WHERE entity = $1 AND action = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("products", "update", 10, 20).
		WillReturnRows(mock.NewRows(auditRowColumns).
			AddRow("7c9e6679-7425-40de-944b-e07fc1f90ae7", "update", "medium", "products", "p-1", "u-1",
				"ada@example.com", "10.0.0.1", "curl", "Updated Mono 450W", at))

	res, err := svc.GetAuditLog(context.Background(), AuditLogOptions{
		Entity: "products",
		Action: ActionUpdate,
		Limit:  10,
		Offset: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(47), res.TotalCount)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 5, res.TotalPages)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, ActionUpdate, res.Entries[0].Action)
	assert.Equal(t, "Updated Mono 450W", res.Entries[0].Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_GetAuditLogDefaults(t *testing.T) {
	mock, svc := newAuditMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_log")).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(DefaultAuditPageSize, 0).
		WillReturnRows(mock.NewRows(auditRowColumns))

	res, err := svc.GetAuditLog(context.Background(), AuditLogOptions{Offset: -5})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.NotNil(t, res.Entries)
	assert.Equal(t, 1, res.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_GetByID(t *testing.T) {
	mock, svc := newAuditMock(t)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectQuery("FROM audit_log WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_ExportCSV(t *testing.T) {
	mock, svc := newAuditMock(t)
	at := svc.now()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(MaxAuditExportRows, 0).
		WillReturnRows(mock.NewRows(auditRowColumns).
			AddRow("7c9e6679-7425-40de-944b-e07fc1f90ae7", "create", "medium", "brands", "b-1", "u-1",
				"ada@example.com", "", "", "Created brand \"Sun, Inc\"", at))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), AuditLogOptions{}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time,action,severity,entity,record_id,admin_email,ip_address,summary", lines[0])
	assert.Equal(t, `2026-03-01T12:00:00Z,create,medium,brands,b-1,ada@example.com,,"Created brand ""Sun, Inc"""`, lines[1])
}

func TestAuditService_MigrateAndPurge(t *testing.T) {
	mock, svc := newAuditMock(t)
	cutoff := svc.now().AddDate(0, 0, -90)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_log").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("DELETE FROM audit_log WHERE created_at").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	require.NoError(t, svc.Migrate(context.Background()))
	n, err := svc.PurgeOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.0.0.1", "10.0.0.1"},
		{"10.0.0.1:8080", "10.0.0.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"::ffff:192.0.2.1", "192.0.2.1"},
		{"garbage", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeIP(tt.in); got != tt.want {
			t.Errorf("normalizeIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
