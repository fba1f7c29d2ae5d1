package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// Tone colours a badge.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
	ToneBad     Tone = "bad"
)

// Text is an escaped table cell.
func Text(s string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		b.WriteString(esc(s))
		return nil
	})
}

// Muted is secondary text, e.g. an email under a name.
func Muted(s string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		printf(b, `<span class="muted">%s</span>`, s)
		return nil
	})
}

// Badge is a short status label.
func Badge(label string, tone Tone) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		printf(b, `<span class="badge badge-%s">%s</span>`, string(tone), label)
		return nil
	})
}

// Thumb is a small image preview, or nothing when src is empty.
func Thumb(src, alt string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		if src != "" {
			printf(b, `<img class="thumb" src="%s" alt="%s" loading="lazy">`, safeURL(src), alt)
		}
		return nil
	})
}

// ExternalLink opens href in a new tab.
func ExternalLink(href, label string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		if href == "" {
			return nil
		}
		if label == "" {
			label = href
		}
		printf(b, `<a href="%s" target="_blank" rel="noopener">%s</a>`, safeURL(href), label)
		return nil
	})
}

// RowActions is the actions menu of a row. Its controls are interactive, so
// clicking them never opens the row's detail view.
func RowActions(editURL, deleteURL, singular string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		b.WriteString(`<details class="row-menu"><summary role="button" aria-label="Actions">⋯</summary><div role="menu">`)
		if editURL != "" {
			printf(b, `<button type="button" role="menuitem" hx-get="%s" hx-target="#dialog" hx-swap="innerHTML">Edit</button>`, editURL)
		}
		if deleteURL != "" {
			printf(b, `<button type="button" role="menuitem" class="danger" hx-post="%s" hx-target="#dialog" hx-swap="innerHTML" hx-confirm="Delete this %s? This cannot be undone.">Delete</button>`,
				deleteURL, singular)
		}
		b.WriteString(`</div></details>`)
		return nil
	})
}
