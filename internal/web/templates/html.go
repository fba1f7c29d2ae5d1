// Package templates holds the HTML components of the dashboard.
//
// Components are plain templ.Component values built on a buffer, matching
// the table package, so handlers compose them exactly as they would
// generated templ code.
package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// fragment adapts a buffer-writing function into a templ.Component. Nothing
// reaches w unless the whole fragment rendered.
func fragment(fn func(ctx context.Context, b *bytes.Buffer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b bytes.Buffer
		if err := fn(ctx, &b); err != nil {
			return err
		}
		_, err := b.WriteTo(w)
		return err
	})
}

func esc(s string) string { return templ.EscapeString(s) }

// safeURL replaces URLs with an unsafe scheme, such as javascript:, with an
// inert placeholder.
func safeURL(s string) string { return string(templ.URL(s)) }

// printf writes format with every string argument escaped.
func printf(b *bytes.Buffer, format string, args ...any) {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = esc(s)
		}
	}
	fmt.Fprintf(b, format, args...)
}

// jsonAttr encodes v for use inside a single-quoted attribute.
func jsonAttr(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return esc(string(raw))
}
