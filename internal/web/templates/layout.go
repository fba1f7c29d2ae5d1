package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// NavLink is one sidebar entry.
type NavLink struct {
	URL    string
	Label  string
	Active bool
}

// NavGroup is a titled block of sidebar entries.
type NavGroup struct {
	Name  string
	Links []NavLink
}

// Page carries the chrome shared by every signed-in page.
type Page struct {
	Title     string
	AdminName string
	AdminRole string
	CSRFToken string
	Nav       []NavGroup
}

// Layout renders a full signed-in page around body.
func Layout(p Page, body templ.Component) templ.Component {
	return fragment(func(ctx context.Context, b *bytes.Buffer) error {
		head(b, p.Title, p.CSRFToken)

		b.WriteString(`<div class="app"><aside class="sidebar"><a class="brand" href="/">Solar Admin</a><nav>`)
		for _, g := range p.Nav {
			if g.Name != "" {
				printf(b, `<h4>%s</h4>`, g.Name)
			}
			b.WriteString(`<ul>`)
			for _, l := range g.Links {
				cls := ""
				if l.Active {
					cls = ` class="active" aria-current="page"`
				}
				printf(b, `<li><a href="%s"`, l.URL)
				b.WriteString(cls)
				printf(b, `>%s</a></li>`, l.Label)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</nav>`)

		b.WriteString(`<div class="account">`)
		if p.AdminName != "" {
			printf(b, `<span class="who">%s</span>`, p.AdminName)
		}
		if p.AdminRole != "" {
			printf(b, ` <span class="badge">%s</span>`, p.AdminRole)
		}
		b.WriteString(`<form method="post" action="/logout">`)
		csrfInput(b, p.CSRFToken)
		b.WriteString(`<button type="submit" class="btn-link">Sign out</button></form></div></aside>`)

		printf(b, `<main><h1>%s</h1>`, p.Title)
		if body != nil {
			if err := body.Render(ctx, b); err != nil {
				return err
			}
		}
		b.WriteString(`</main></div>`)
		b.WriteString(`<div id="dialog" class="dialog-host"></div><div id="toast" class="toast-host" aria-live="polite"></div>`)

		foot(b)
		return nil
	})
}

// Fallback is shown while the session cannot be verified. It never
// redirects; the admin retries once the session store is reachable.
func Fallback(retryURL string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		head(b, "Checking session", "")
		b.WriteString(`<main class="centered"><div class="card" role="status">`)
		b.WriteString(`<h1>Checking your session…</h1><p>We could not confirm whether you are signed in.</p>`)
		printf(b, `<a class="btn" href="%s">Try Again</a>`, retryURL)
		b.WriteString(`</div></main>`)
		foot(b)
		return nil
	})
}

// head opens the document. Every HTMX request carries the CSRF token as a header.
func head(b *bytes.Buffer, title, csrf string) {
	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	printf(b, `<title>%s · Solar Admin</title>`, title)
	b.WriteString(`<link rel="stylesheet" href="/static/app.css">`)
	b.WriteString(`<script src="https://unpkg.com/htmx.org@2.0.4" crossorigin="anonymous"></script>`)
	b.WriteString(`<script src="/static/app.js" defer></script></head>`)
	if csrf != "" {
		b.WriteString(`<body hx-headers='`)
		b.WriteString(jsonAttr(map[string]string{"X-CSRF-Token": csrf}))
		b.WriteString(`'>`)
		return
	}
	b.WriteString(`<body>`)
}

func foot(b *bytes.Buffer) {
	b.WriteString(`</body></html>`)
}

func csrfInput(b *bytes.Buffer, token string) {
	if token != "" {
		printf(b, `<input type="hidden" name="_csrf" value="%s">`, token)
	}
}
