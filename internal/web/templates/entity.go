package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// EntityPage wraps an entity's table on its list page.
func EntityPage(description string, table templ.Component) templ.Component {
	return fragment(func(ctx context.Context, b *bytes.Buffer) error {
		if description != "" {
			printf(b, `<p class="lead">%s</p>`, description)
		}
		b.WriteString(`<section class="table-host">`)
		if err := table.Render(ctx, b); err != nil {
			return err
		}
		b.WriteString(`</section>`)
		return nil
	})
}
