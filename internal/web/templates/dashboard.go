package templates

import (
	"bytes"
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// DashboardCard summarises one entity screen.
type DashboardCard struct {
	URL   string
	Label string
	Group string
	Total int
	Error string // set when the count could not be fetched
}

// Dashboard renders the entity cards grouped by sidebar group.
func Dashboard(cards []DashboardCard) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		group := "\x00"
		open := false
		for _, c := range cards {
			if c.Group != group {
				if open {
					b.WriteString(`</div></section>`)
				}
				printf(b, `<section class="card-group"><h2>%s</h2><div class="cards">`, c.Group)
				group, open = c.Group, true
			}
			printf(b, `<a class="card stat" href="%s"><span class="label">%s</span>`, c.URL, c.Label)
			if c.Error != "" {
				printf(b, `<span class="value muted" title="%s">–</span>`, c.Error)
			} else {
				printf(b, `<span class="value">%s</span>`, strconv.Itoa(c.Total))
			}
			b.WriteString(`</a>`)
		}
		if open {
			b.WriteString(`</div></section>`)
		}
		if len(cards) == 0 {
			b.WriteString(`<p class="muted">No screens are registered.</p>`)
		}
		return nil
	})
}
