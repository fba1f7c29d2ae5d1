package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// LoginParams fills the sign-in form.
type LoginParams struct {
	Email     string
	Error     string
	Errors    map[string]string
	CSRFToken string
	Next      string
}

// LoginPage renders the standalone sign-in page.
func LoginPage(p LoginParams) templ.Component {
	return fragment(func(ctx context.Context, b *bytes.Buffer) error {
		head(b, "Sign in", p.CSRFToken)
		b.WriteString(`<main class="centered"><div class="card login">`)
		b.WriteString(`<h1>Solar Admin</h1><p>Sign in with your administrator account.</p>`)
		if err := LoginForm(p).Render(ctx, b); err != nil {
			return err
		}
		b.WriteString(`</div></main>`)
		foot(b)
		return nil
	})
}

// LoginForm is the form alone, re-rendered in place after a failed attempt.
func LoginForm(p LoginParams) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		b.WriteString(`<form id="login-form" method="post" action="/login" hx-post="/login" hx-target="this" hx-swap="outerHTML">`)
		csrfInput(b, p.CSRFToken)
		if p.Next != "" {
			printf(b, `<input type="hidden" name="next" value="%s">`, p.Next)
		}
		if p.Error != "" {
			printf(b, `<div class="alert alert-error" role="alert">%s</div>`, p.Error)
		}
		printf(b, `<label>Email<input type="email" name="email" value="%s" autocomplete="username" required></label>`, p.Email)
		fieldError(b, p.Errors["email"])
		b.WriteString(`<label>Password<input type="password" name="password" autocomplete="current-password" required></label>`)
		fieldError(b, p.Errors["password"])
		b.WriteString(`<button type="submit" class="btn btn-primary">Sign in</button></form>`)
		return nil
	})
}

func fieldError(b *bytes.Buffer, msg string) {
	if msg != "" {
		printf(b, `<p class="field-error">%s</p>`, msg)
	}
}
