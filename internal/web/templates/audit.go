package templates

import (
	"bytes"
	"context"
	"net/url"

	"github.com/a-h/templ"
)

// AuditFilter holds the audit log filter form values as submitted.
type AuditFilter struct {
	Entity string
	Action string
	Admin  string
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD
}

// Query encodes the non-empty filters.
func (f AuditFilter) Query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"entity": f.Entity,
		"action": f.Action,
		"admin":  f.Admin,
		"from":   f.From,
		"to":     f.To,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// AuditParams fills the audit log page.
type AuditParams struct {
	Filter   AuditFilter
	Entities []string
	Actions  []string
	Table    templ.Component
	Enabled  bool // false when no database is configured
}

// AuditPage renders the filter bar, the export link and the log table.
func AuditPage(p AuditParams) templ.Component {
	return fragment(func(ctx context.Context, b *bytes.Buffer) error {
		if !p.Enabled {
			b.WriteString(`<div class="alert">Audit logging is disabled because no database is configured.</div>`)
			return nil
		}

		b.WriteString(`<form class="filters" method="get" action="/audit-log" hx-get="/audit-log/table" hx-target="#audit-table" hx-swap="outerHTML" hx-trigger="change, submit">`)
		selectFilter(b, "Entity", "entity", p.Filter.Entity, p.Entities)
		selectFilter(b, "Action", "action", p.Filter.Action, p.Actions)
		printf(b, `<label>Admin<input type="search" name="admin" value="%s" placeholder="email starts with…"></label>`, p.Filter.Admin)
		printf(b, `<label>From<input type="date" name="from" value="%s"></label>`, p.Filter.From)
		printf(b, `<label>To<input type="date" name="to" value="%s"></label>`, p.Filter.To)
		b.WriteString(`<button type="submit" class="btn">Filter</button>`)

		export := "/audit-log/export.csv"
		if q := p.Filter.Query().Encode(); q != "" {
			export += "?" + q
		}
		printf(b, `<a class="btn" href="%s" download>Export CSV</a></form>`, export)

		b.WriteString(`<section class="table-host">`)
		if p.Table != nil {
			if err := p.Table.Render(ctx, b); err != nil {
				return err
			}
		}
		b.WriteString(`</section>`)
		return nil
	})
}

func selectFilter(b *bytes.Buffer, label, name, current string, options []string) {
	printf(b, `<label>%s<select name="%s"><option value="">All</option>`, label, name)
	for _, opt := range options {
		sel := ""
		if opt == current {
			sel = " selected"
		}
		printf(b, `<option value="%s"`, opt)
		b.WriteString(sel)
		printf(b, `>%s</option>`, optionLabel(opt))
	}
	b.WriteString(`</select></label>`)
}
