package templates

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// FieldKind selects the input control of a form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEmail
	FieldPassword
	FieldNumber
	FieldDate
	FieldTextarea
	FieldSelect
	FieldCheckbox
	FieldMulti // checkbox group posting repeated values
	FieldURL
	FieldUpload // URL input plus a file picker posting to Upload
)

// Field is one control of an entity form.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Value    string
	Values   []string // FieldMulti selections
	Options  []string // FieldSelect and FieldMulti choices
	Required bool
	Step     string // FieldNumber step, e.g. "0.01"
	Help     string
	Upload   string // upload kind for FieldUpload, e.g. "product-image"
	Error    string
}

// FormParams describes a create or edit dialog.
type FormParams struct {
	Title     string
	Action    string
	Submit    string
	Fields    []Field
	Errors    map[string]string
	Message   string // form-level error, e.g. an API rejection
	CSRFToken string
}

// FormDialog renders an entity form inside the dialog host. The form posts
// back to Action and the response replaces the dialog contents.
func FormDialog(p FormParams) templ.Component {
	return fragment(func(ctx context.Context, b *bytes.Buffer) error {
		dialogOpen(b, p.Title)
		printf(b, `<form method="post" action="%s" hx-post="%s" hx-target="#dialog" hx-swap="innerHTML">`, p.Action, p.Action)
		csrfInput(b, p.CSRFToken)
		if p.Message != "" {
			printf(b, `<div class="alert alert-error" role="alert">%s</div>`, p.Message)
		}
		for _, f := range p.Fields {
			if f.Error == "" {
				f.Error = p.Errors[f.Name]
			}
			if err := FormField(f, p.CSRFToken).Render(ctx, b); err != nil {
				return err
			}
		}
		submit := p.Submit
		if submit == "" {
			submit = "Save"
		}
		printf(b, `<div class="actions"><button type="button" class="btn" data-close-dialog>Cancel</button><button type="submit" class="btn btn-primary">%s</button></div>`, submit)
		b.WriteString(`</form>`)
		dialogClose(b)
		return nil
	})
}

// FormField renders one labelled control with its error. Upload fields are
// also returned alone by the upload endpoint to swap in the stored link.
func FormField(f Field, csrf string) templ.Component {
	return fragment(func(_ context.Context, b *bytes.Buffer) error {
		printf(b, `<div class="field" id="field-%s">`, f.Name)
		req := ""
		if f.Required {
			req = " required"
		}

		switch f.Kind {
		case FieldCheckbox:
			checked := ""
			if f.Value == "true" {
				checked = " checked"
			}
			printf(b, `<label class="check"><input type="checkbox" name="%s" value="true"`, f.Name)
			b.WriteString(checked)
			printf(b, `> %s</label>`, f.Label)

		case FieldMulti:
			printf(b, `<fieldset><legend>%s</legend>`, f.Label)
			for _, opt := range f.Options {
				checked := ""
				if slices.Contains(f.Values, opt) {
					checked = " checked"
				}
				printf(b, `<label class="check"><input type="checkbox" name="%s" value="%s"`, f.Name, opt)
				b.WriteString(checked)
				printf(b, `> %s</label>`, optionLabel(opt))
			}
			b.WriteString(`</fieldset>`)

		case FieldSelect:
			printf(b, `<label>%s<select name="%s"`, f.Label, f.Name)
			b.WriteString(req)
			b.WriteString(`>`)
			if !f.Required {
				b.WriteString(`<option value=""></option>`)
			}
			for _, opt := range f.Options {
				sel := ""
				if opt == f.Value {
					sel = " selected"
				}
				printf(b, `<option value="%s"`, opt)
				b.WriteString(sel)
				printf(b, `>%s</option>`, optionLabel(opt))
			}
			b.WriteString(`</select></label>`)

		case FieldTextarea:
			printf(b, `<label>%s<textarea name="%s" rows="5"`, f.Label, f.Name)
			b.WriteString(req)
			printf(b, `>%s</textarea></label>`, f.Value)

		case FieldUpload:
			printf(b, `<label>%s<input type="url" name="%s" value="%s"`, f.Label, f.Name, f.Value)
			b.WriteString(req)
			b.WriteString(`></label>`)
			if f.Upload != "" {
				printf(b, `<input type="file" name="file" aria-label="Upload %s" hx-post="/uploads/%s?field=%s" hx-encoding="multipart/form-data" hx-target="#field-%s" hx-swap="outerHTML"`,
					f.Label, f.Upload, f.Name, f.Name)
				if csrf != "" {
					b.WriteString(` hx-headers='`)
					b.WriteString(jsonAttr(map[string]string{"X-CSRF-Token": csrf}))
					b.WriteString(`'`)
				}
				b.WriteString(`>`)
			}
			if f.Value != "" {
				printf(b, `<a class="preview" href="%s" target="_blank" rel="noopener">Current file</a>`, safeURL(f.Value))
			}

		default:
			printf(b, `<label>%s<input type="%s" name="%s" value="%s"`, f.Label, inputType(f.Kind), f.Name, f.Value)
			if f.Step != "" {
				printf(b, ` step="%s"`, f.Step)
			}
			if f.Kind == FieldPassword {
				b.WriteString(` autocomplete="new-password"`)
			}
			b.WriteString(req)
			b.WriteString(`></label>`)
		}

		if f.Help != "" {
			printf(b, `<p class="help">%s</p>`, f.Help)
		}
		fieldError(b, f.Error)
		b.WriteString(`</div>`)
		return nil
	})
}

func inputType(k FieldKind) string {
	switch k {
	case FieldEmail:
		return "email"
	case FieldPassword:
		return "password"
	case FieldNumber:
		return "number"
	case FieldDate:
		return "date"
	case FieldURL:
		return "url"
	default:
		return "text"
	}
}

// optionLabel turns "sub_admin" or "in-stock" into "Sub admin" / "In stock".
func optionLabel(v string) string {
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func dialogOpen(b *bytes.Buffer, title string) {
	printf(b, `<div class="dialog" role="dialog" aria-modal="true" aria-label="%s"><header><h2>%s</h2><button type="button" class="btn-icon" aria-label="Close" data-close-dialog>×</button></header><div class="dialog-body">`, title, title)
}

func dialogClose(b *bytes.Buffer) {
	b.WriteString(`</div></div>`)
}
