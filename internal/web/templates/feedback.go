package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// ErrorAlert is the error placeholder swapped into the request's target.
// With retryURL it offers a "Try Again" action that re-issues the same GET.
func ErrorAlert(message, action, code, retryURL string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		b.WriteString(`<div class="alert alert-error" role="alert">`)
		printf(b, `<p class="message">%s</p>`, message)
		if action != "" {
			printf(b, `<p class="action">%s</p>`, action)
		}
		if code != "" {
			printf(b, `<p class="code">Code: %s</p>`, code)
		}
		if retryURL != "" {
			printf(b, `<button type="button" class="btn" hx-get="%s" hx-target="closest .alert" hx-swap="outerHTML">Try Again</button>`, retryURL)
		}
		b.WriteString(`</div>`)
		return nil
	})
}

// Toast is an out-of-band notification; it can ride along any HTMX response.
func Toast(message string, tone Tone) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		printf(b, `<div id="toast" class="toast-host" aria-live="polite" hx-swap-oob="true"><div class="toast toast-%s" role="status">%s</div></div>`,
			string(tone), message)
		return nil
	})
}
