package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/table"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// handleAuditLog renders the audit log page with filtering and pagination.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	params := templates.AuditParams{Enabled: s.audit != nil}
	if s.audit != nil {
		tbl, filter, err := s.auditTable(r.Context(), r.URL.Query())
		if err != nil {
			logging.FromContext(r.Context()).Warn("audit log query failed", "error", err)
		}
		params.Table = tbl.Component()
		params.Filter = filter
		params.Entities = auditEntities()
		for _, a := range core.AuditActions {
			params.Actions = append(params.Actions, string(a))
		}
	}
	s.render(w, r, http.StatusOK, templates.Layout(s.page(r, "Audit log", "/audit-log"), templates.AuditPage(params)))
}

// handleAuditTable renders the table partial for filter, sort and page changes.
func (s *Server) handleAuditTable(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.notFound(w, r)
		return
	}
	tbl, _, err := s.auditTable(r.Context(), r.URL.Query())
	if err != nil {
		logging.FromContext(r.Context()).Warn("audit log query failed", "error", err)
	}
	s.render(w, r, http.StatusOK, tbl.Component())
}

// handleAuditEntry returns the detail view for a single audit entry.
func (s *Server) handleAuditEntry(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.notFound(w, r)
		return
	}
	entry, err := s.audit.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.dialog(w, r, "Audit log", "/audit-log", http.StatusOK, templates.DetailDialog(templates.DetailParams{
		Title: "Audit entry",
		Rows:  auditDetail(*entry),
	}))
}

// handleAuditExport downloads the filtered log as CSV.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.notFound(w, r)
		return
	}
	_, opts := parseAuditFilter(r.URL.Query())

	// Buffered so a query failure can still answer with an error status.
	var buf bytes.Buffer
	if err := s.audit.ExportCSV(r.Context(), opts, &buf); err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("audit_log_%s.csv", s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	buf.WriteTo(w)
}

// auditTable queries one page of the log. The table's links carry the
// filters so paging keeps them.
func (s *Server) auditTable(ctx context.Context, q url.Values) (*table.Table[core.AuditEntry], templates.AuditFilter, error) {
	filter, opts := parseAuditFilter(q)

	sizes := s.pageSizes()
	page := table.QueryInt(q, "page", 1)
	size := min(table.QueryInt(q, "limit", sizes[0]), sizes[len(sizes)-1])
	opts.Limit, opts.Offset = size, (page-1)*size

	base := "/audit-log/table"
	if fq := filter.Query().Encode(); fq != "" {
		base += "?" + fq
	}
	cfg := table.Config[core.AuditEntry]{
		ID:        "audit-table",
		Columns:   auditColumns(rowActions[core.AuditEntry]{}),
		RowID:     func(e core.AuditEntry) string { return e.ID },
		PageSizes: sizes,
		RowURL:    func(e core.AuditEntry) string { return "/audit-log/" + url.PathEscape(e.ID) },
		BaseURL:   base,
	}

	var (
		rows  []core.AuditEntry
		total int
	)
	res, err := s.audit.GetAuditLog(ctx, opts)
	if err != nil {
		cfg.Error = core.MapError(err).Message
	} else {
		rows, total = res.Entries, int(res.TotalCount)
	}
	cfg.Pagination = table.Server(page, size, total, nil)
	return table.New(cfg, rows, table.ParseState(q)), filter, err
}

// parseAuditFilter reads the filter form. Values that do not parse are
// dropped from both the query and the echoed form.
func parseAuditFilter(q url.Values) (templates.AuditFilter, core.AuditLogOptions) {
	f := templates.AuditFilter{
		Entity: strings.TrimSpace(q.Get("entity")),
		Action: q.Get("action"),
		Admin:  strings.TrimSpace(q.Get("admin")),
		From:   q.Get("from"),
		To:     q.Get("to"),
	}
	opts := core.AuditLogOptions{Entity: f.Entity, Admin: f.Admin}

	if a := core.AuditAction(f.Action); slices.Contains(core.AuditActions, a) {
		opts.Action = a
	} else {
		f.Action = ""
	}
	if t, err := time.ParseInLocation(time.DateOnly, f.From, time.Local); err == nil {
		opts.StartTime = t
	} else {
		f.From = ""
	}
	if t, err := time.ParseInLocation(time.DateOnly, f.To, time.Local); err == nil {
		opts.EndTime = t.Add(24*time.Hour - time.Nanosecond)
	} else {
		f.To = ""
	}
	return f, opts
}

// auditEntities lists the entity names entries are recorded under.
func auditEntities() []string {
	var out []string
	for _, scr := range core.All() {
		out = append(out, scr.Key)
	}
	return append(out, "session")
}
