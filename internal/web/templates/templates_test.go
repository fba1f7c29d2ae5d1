package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert(`<script>x</script>`, "Try later", "API006", "/products/table?page=2&limit=20"))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Code: API006")
	assert.Contains(t, html, `hx-get="/products/table?page=2&amp;limit=20"`)

	html = render(t, ErrorAlert("Gone", "", "", ""))
	assert.NotContains(t, html, "Try Again")
	assert.NotContains(t, html, `class="action"`)
}

func TestToastIsOutOfBand(t *testing.T) {
	html := render(t, Toast("Brand added", ToneGood))
	assert.Contains(t, html, `id="toast"`)
	assert.Contains(t, html, `hx-swap-oob="true"`)
	assert.Contains(t, html, "toast-"+string(ToneGood))
}

func TestFormField(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		csrf    string
		want    []string
		notWant []string
	}{
		{
			name:  "text with error",
			field: Field{Name: "name", Label: "Name", Value: `Sun "Peak"`, Required: true, Error: "is required"},
			want:  []string{`id="field-name"`, `value="Sun &#34;Peak&#34;"`, " required", `<p class="field-error">is required</p>`},
		},
		{
			name:    "password never prefilled by template",
			field:   Field{Name: "password", Label: "Password", Kind: FieldPassword},
			want:    []string{`type="password"`, `autocomplete="new-password"`},
			notWant: []string{" required"},
		},
		{
			name:  "select marks current option",
			field: Field{Name: "status", Label: "Status", Kind: FieldSelect, Value: "shipped", Options: []string{"pending", "shipped"}, Required: true},
			want:  []string{`<option value="shipped" selected>`, `<option value="pending">`},
		},
		{
			name:  "checkbox group",
			field: Field{Name: "permissions", Label: "Permissions", Kind: FieldMulti, Options: []string{"orders", "products"}, Values: []string{"orders"}},
			want:  []string{`value="orders" checked`, `value="products">`},
		},
		{
			name:  "upload posts to its kind with the csrf header",
			field: Field{Name: "logo", Label: "Logo", Kind: FieldUpload, Upload: "brand-logo", Value: "https://cdn.example/a.png"},
			csrf:  "tok",
			want: []string{
				`hx-post="/uploads/brand-logo?field=logo"`,
				`hx-target="#field-logo"`,
				`X-CSRF-Token`,
				`href="https://cdn.example/a.png"`,
			},
		},
		{
			name:    "upload without token",
			field:   Field{Name: "image", Label: "Image", Kind: FieldUpload, Upload: "product-image"},
			notWant: []string{"hx-headers", "Current file"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, FormField(tt.field, tt.csrf))
			for _, s := range tt.want {
				assert.Contains(t, html, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, html, s)
			}
		})
	}
}

func TestLinks_UnsafeSchemesAreInert(t *testing.T) {
	const evil = "javascript:alert(document.cookie)"

	tests := []struct {
		name string
		c    templ.Component
	}{
		{"external link", ExternalLink(evil, "SunCo")},
		{"thumbnail", Thumb(evil, "logo")},
		{"detail link", DetailDialog(DetailParams{Title: "Brand", Rows: []DetailRow{{Label: "Website", Value: evil, Link: true}}})},
		{"upload preview", FormField(Field{Name: "logo", Label: "Logo", Kind: FieldUpload, Upload: "brand-logo", Value: evil}, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, tt.c)
			assert.NotContains(t, html, `href="javascript:`)
			assert.NotContains(t, html, `src="javascript:`)
			assert.Contains(t, html, "about:invalid#TemplFailedSanitizationURL")
		})
	}

	html := render(t, ExternalLink("https://sunco.example/?a=1&b=2", ""))
	assert.Contains(t, html, `href="https://sunco.example/?a=1&amp;b=2"`)
}

func TestFormDialog_FieldErrorsFromParams(t *testing.T) {
	html := render(t, FormDialog(FormParams{
		Title:   "New brand",
		Action:  "/brands",
		Fields:  []Field{{Name: "name", Label: "Name"}},
		Errors:  map[string]string{"name": "is required"},
		Message: "Brand already exists",
	}))

	assert.Contains(t, html, `hx-post="/brands"`)
	assert.Contains(t, html, "is required")
	assert.Contains(t, html, "Brand already exists")
	assert.Contains(t, html, ">Save</button>")
}

func TestLayout(t *testing.T) {
	html := render(t, Layout(Page{
		Title:     "Products",
		AdminName: "Ada",
		AdminRole: "admin",
		CSRFToken: "tok",
		Nav: []NavGroup{
			{Links: []NavLink{{URL: "/", Label: "Dashboard"}}},
			{Name: "Catalog", Links: []NavLink{{URL: "/products", Label: "Products", Active: true}}},
		},
	}, Text("body text")))

	assert.Contains(t, html, `<a href="/products" class="active" aria-current="page">Products</a>`)
	assert.Contains(t, html, `<h4>Catalog</h4>`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.Contains(t, html, "hx-headers=")
	assert.Contains(t, html, "body text")
	assert.Contains(t, html, `id="dialog"`)
}

func TestLoginForm(t *testing.T) {
	html := render(t, LoginForm(LoginParams{
		Email:  "ada@example.com",
		Error:  "Invalid email or password",
		Errors: map[string]string{"password": "is required"},
		Next:   "/coupons",
	}))

	assert.Contains(t, html, `value="ada@example.com"`)
	assert.Contains(t, html, `name="next" value="/coupons"`)
	assert.Contains(t, html, "Invalid email or password")
	assert.Contains(t, html, "is required")
	assert.NotContains(t, html, "_csrf")
}

func TestDashboard(t *testing.T) {
	html := render(t, Dashboard([]DashboardCard{
		{URL: "/products", Label: "Products", Group: "Catalog", Total: 42},
		{URL: "/brands", Label: "Brands", Group: "Catalog", Error: "Unable to reach the server"},
		{URL: "/orders", Label: "Orders", Group: "Sales", Total: 7},
	}))

	assert.Equal(t, 2, bytes.Count([]byte(html), []byte(`<section class="card-group">`)))
	assert.Contains(t, html, `<span class="value">42</span>`)
	assert.Contains(t, html, `title="Unable to reach the server"`)

	assert.Contains(t, render(t, Dashboard(nil)), "No screens are registered")
}
