package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when an audit entry does not exist.
var ErrNotFound = errors.New("not found")

// DefaultAuditPageSize is used when a query does not set Limit.
const DefaultAuditPageSize = 25

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	entity      TEXT NOT NULL,
	record_id   TEXT,
	admin_id    TEXT,
	admin_email TEXT,
	ip_address  INET,
	user_agent  TEXT,
	summary     TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at DESC);
CREATE INDEX IF NOT EXISTS audit_log_entity_idx ON audit_log (entity, created_at DESC);
`

const auditColumns = `id::text, action, severity, entity,
	COALESCE(record_id, ''), COALESCE(admin_id, ''), COALESCE(admin_email, ''),
	COALESCE(host(ip_address), ''), COALESCE(user_agent, ''), COALESCE(summary, ''),
	created_at`

// AuditService records dashboard mutations in Postgres.
type AuditService struct {
	db  DBTX
	now func() time.Time
}

// NewAuditService creates a new audit service.
func NewAuditService(db DBTX) *AuditService {
	return &AuditService{db: db, now: time.Now}
}

// Migrate creates the audit_log table if it does not exist.
func (a *AuditService) Migrate(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("migrate audit_log: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Logging Methods
// ----------------------------------------------------------------------------

// Log creates a new audit log entry.
func (a *AuditService) Log(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	meta := RequestMetaFrom(ctx)
	if params.IPAddress == "" {
		params.IPAddress = meta.IP
	}
	if params.UserAgent == "" {
		params.UserAgent = meta.UserAgent
	}

	entry := &AuditEntry{
		ID:         uuid.NewString(),
		Action:     params.Action,
		Severity:   auditSeverity(params.Action),
		Entity:     params.Entity,
		RecordID:   params.RecordID,
		AdminID:    params.AdminID,
		AdminEmail: params.AdminEmail,
		IPAddress:  normalizeIP(params.IPAddress),
		UserAgent:  params.UserAgent,
		Summary:    params.Summary,
		CreatedAt:  a.now().UTC(),
	}

	_, err := a.db.Exec(ctx,
		`INSERT INTO audit_log (id, action, severity, entity, record_id, admin_id,
			admin_email, ip_address, user_agent, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, string(entry.Action), string(entry.Severity), entry.Entity,
		nullable(entry.RecordID), nullable(entry.AdminID), nullable(entry.AdminEmail),
		nullable(entry.IPAddress), nullable(entry.UserAgent), nullable(entry.Summary),
		entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	return entry, nil
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ----------------------------------------------------------------------------
// Query Methods
// ----------------------------------------------------------------------------

// AuditLogOptions contains options for querying audit logs.
type AuditLogOptions struct {
	Entity    string
	Action    AuditAction
	Admin     string // admin email prefix
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// AuditLogResult is one page of audit entries.
type AuditLogResult struct {
	Entries    []AuditEntry
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

func (opts AuditLogOptions) where() *WhereBuilder {
	wb := NewWhereBuilder()
	wb.Add("entity", opts.Entity)
	wb.Add("action", string(opts.Action))
	wb.AddPrefix("admin_email", opts.Admin)
	wb.AddTimestampRange("created_at", opts.StartTime, opts.EndTime)
	return wb
}

// GetAuditLog returns one page of entries, newest first.
func (a *AuditService) GetAuditLog(ctx context.Context, opts AuditLogOptions) (*AuditLogResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultAuditPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	total, err := a.Count(ctx, opts)
	if err != nil {
		return nil, err
	}

	wb := opts.where()
	whereClause, args := wb.Build()
	query := "SELECT " + auditColumns + " FROM audit_log" + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	args = append(args, opts.Limit, opts.Offset)

	entries, err := a.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &AuditLogResult{
		Entries:    entries,
		TotalCount: total,
		Page:       opts.Offset/opts.Limit + 1,
		PageSize:   opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Count returns the number of entries matching opts.
func (a *AuditService) Count(ctx context.Context, opts AuditLogOptions) (int64, error) {
	whereClause, args := opts.where().Build()

	var total int64
	if err := a.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log"+whereClause, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count audit log: %w", err)
	}
	return total, nil
}

// GetByID retrieves a single audit log entry.
func (a *AuditService) GetByID(ctx context.Context, id string) (*AuditEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := a.db.QueryRow(ctx, "SELECT "+auditColumns+" FROM audit_log WHERE id = $1", id)
	entry, err := scanAuditRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit entry: %w", err)
	}
	return entry, nil
}

func (a *AuditService) query(ctx context.Context, sql string, args ...any) ([]AuditEntry, error) {
	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// scanAuditRow scans one row selected with auditColumns.
func scanAuditRow(row pgx.Row) (*AuditEntry, error) {
	var (
		e                AuditEntry
		action, severity string
	)
	err := row.Scan(&e.ID, &action, &severity, &e.Entity, &e.RecordID, &e.AdminID,
		&e.AdminEmail, &e.IPAddress, &e.UserAgent, &e.Summary, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Action = AuditAction(action)
	e.Severity = AuditSeverity(severity)
	return &e, nil
}

// ----------------------------------------------------------------------------
// Export Methods
// ----------------------------------------------------------------------------

// MaxAuditExportRows caps a CSV export.
const MaxAuditExportRows = 10000

// ExportCSV writes every entry matching opts as CSV, newest first.
func (a *AuditService) ExportCSV(ctx context.Context, opts AuditLogOptions, w io.Writer) error {
	opts.Limit = MaxAuditExportRows
	opts.Offset = 0

	result, err := a.GetAuditLog(ctx, opts)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"time", "action", "severity", "entity", "record_id", "admin_email", "ip_address", "summary"})
	for _, e := range result.Entries {
		_ = cw.Write([]string{
			e.CreatedAt.Format(time.RFC3339),
			string(e.Action),
			string(e.Severity),
			e.Entity,
			e.RecordID,
			e.AdminEmail,
			e.IPAddress,
			e.Summary,
		})
	}
	cw.Flush()
	return cw.Error()
}

// ----------------------------------------------------------------------------
// Retention
// ----------------------------------------------------------------------------

// PurgeOlderThan deletes entries created before cutoff and returns how many
// were removed.
func (a *AuditService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := a.db.Exec(ctx, "DELETE FROM audit_log WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}
