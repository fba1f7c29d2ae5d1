package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// DetailRow is one label/value line of a detail view.
type DetailRow struct {
	Label string
	Value string
	Link  bool // render Value as an external link
}

// DetailParams describes the read-only view of a record.
type DetailParams struct {
	Title     string
	Rows      []DetailRow
	EditURL   string // empty hides the Edit action
	DeleteURL string // empty hides the Delete action
	Singular  string
}

// DetailDialog renders a record in the dialog host.
func DetailDialog(p DetailParams) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		dialogOpen(b, p.Title)
		b.WriteString(`<dl class="detail">`)
		for _, r := range p.Rows {
			printf(b, `<dt>%s</dt><dd>`, r.Label)
			switch {
			case r.Value == "":
				b.WriteString(`<span class="muted">–</span>`)
			case r.Link:
				printf(b, `<a href="%s" target="_blank" rel="noopener">%s</a>`, safeURL(r.Value), r.Value)
			default:
				printf(b, `%s`, r.Value)
			}
			b.WriteString(`</dd>`)
		}
		b.WriteString(`</dl><div class="actions">`)
		if p.DeleteURL != "" {
			printf(b, `<button type="button" class="btn btn-danger" hx-post="%s" hx-target="#dialog" hx-swap="innerHTML" hx-confirm="Delete this %s? This cannot be undone.">Delete</button>`,
				p.DeleteURL, p.Singular)
		}
		if p.EditURL != "" {
			printf(b, `<button type="button" class="btn btn-primary" hx-get="%s" hx-target="#dialog" hx-swap="innerHTML">Edit</button>`, p.EditURL)
		}
		b.WriteString(`</div>`)
		dialogClose(b)
		return nil
	})
}
