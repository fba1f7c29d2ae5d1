package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Component renders the table as an HTMX-driven HTML fragment. Every link
// re-requests BaseURL with the next State encoded in the query string; the
// container syncs requests so a later interaction aborts an earlier one.
func (t *Table[T]) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := t.render(ctx, &buf); err != nil {
			return err
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

func (t *Table[T]) render(ctx context.Context, b *bytes.Buffer) error {
	id := t.cfg.ID
	if id == "" {
		id = "data-table"
	}
	fmt.Fprintf(b, `<div id="%s" class="data-table" data-mode="%s" hx-target="this" hx-swap="outerHTML" hx-sync="this:replace"`,
		esc(id), t.strategy.Mode())
	if t.cfg.BaseURL != "" {
		// Mutations elsewhere on the page announce themselves with this event;
		// the table refetches its current state.
		fmt.Fprintf(b, ` hx-get="%s" hx-trigger="%s from:body"`, esc(t.link()), RefreshEvent)
	}
	b.WriteString(`>`)

	t.renderToolbar(b)

	switch t.Status() {
	case StatusLoading:
		b.WriteString(`<div class="table-loading" aria-busy="true">Loading…</div>`)
	case StatusError:
		fmt.Fprintf(b, `<div class="table-error" role="alert"><p>%s</p>`, esc(t.cfg.Error))
		if t.cfg.BaseURL != "" {
			fmt.Fprintf(b, `<button type="button" hx-get="%s">Try Again</button>`, esc(t.link()))
		}
		b.WriteString(`</div>`)
	default:
		if err := t.renderGrid(ctx, b); err != nil {
			return err
		}
		t.renderFooter(b)
	}

	b.WriteString(`</div>`)
	return nil
}

func (t *Table[T]) renderToolbar(b *bytes.Buffer) {
	b.WriteString(`<div class="table-toolbar">`)

	if t.Searchable() {
		f := t.fork()
		f.SetSearch("")
		q := f.state.Query()
		q.Del("q")
		fmt.Fprintf(b, `<input type="search" name="q" value="%s" placeholder="Search…" hx-get="%s" hx-trigger="input changed delay:300ms, search">`,
			esc(t.state.Search), esc(t.href(q)))
	}

	if cols := t.ToggleableColumns(); len(cols) > 0 {
		b.WriteString(`<details class="column-menu"><summary>Columns</summary><ul>`)
		for _, col := range cols {
			f := t.fork()
			f.ToggleColumn(col.Key)
			checked := ""
			if t.state.IsVisible(col.Key) {
				checked = " checked"
			}
			fmt.Fprintf(b, `<li><label><input type="checkbox"%s hx-get="%s"> %s</label></li>`,
				checked, esc(f.link()), esc(headerLabel(col)))
		}
		b.WriteString(`</ul></details>`)
	}

	if t.HasAdd() {
		if t.cfg.AddURL != "" {
			fmt.Fprintf(b, `<button type="button" class="btn-add" hx-get="%s" hx-target="#dialog" hx-swap="innerHTML">Add</button>`, esc(t.cfg.AddURL))
		} else {
			b.WriteString(`<button type="button" class="btn-add">Add</button>`)
		}
	}

	b.WriteString(`</div>`)
}

func (t *Table[T]) renderGrid(ctx context.Context, b *bytes.Buffer) error {
	cols := t.VisibleColumns()
	rows := t.Visible()

	b.WriteString(`<table><thead><tr>`)
	for _, col := range cols {
		if err := t.renderHeader(ctx, b, col, rows); err != nil {
			return err
		}
	}
	b.WriteString(`</tr></thead><tbody>`)

	if len(rows) == 0 {
		fmt.Fprintf(b, `<tr class="empty"><td colspan="%d">No results.</td></tr>`, max(len(cols), 1))
	}

	for _, row := range rows {
		rowID := t.rowID(row)
		b.WriteString(`<tr`)
		if rowID != "" {
			fmt.Fprintf(b, ` data-row-id="%s"`, esc(rowID))
		}
		if t.state.Selected[rowID] {
			b.WriteString(` data-state="selected"`)
		}
		if t.cfg.RowURL != nil {
			fmt.Fprintf(b, ` class="clickable" hx-get="%s" hx-target="#dialog" hx-swap="innerHTML" hx-trigger="%s"`,
				esc(t.cfg.RowURL(row)), esc(RowTrigger()))
		}
		b.WriteString(`>`)
		for _, col := range cols {
			b.WriteString(`<td>`)
			if err := t.renderCell(ctx, b, col, row, rowID); err != nil {
				return err
			}
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}

	b.WriteString(`</tbody></table>`)
	return nil
}

func (t *Table[T]) renderHeader(ctx context.Context, b *bytes.Buffer, col Column[T], rows []T) error {
	b.WriteString(`<th`)
	if col.Key != "" {
		fmt.Fprintf(b, ` data-column="%s"`, esc(col.Key))
	}
	b.WriteString(`>`)
	defer b.WriteString(`</th>`)

	if col.Kind == KindSelect {
		all := len(rows) > 0
		for _, row := range rows {
			if !t.state.Selected[t.rowID(row)] {
				all = false
				break
			}
		}
		checked := ""
		if all {
			checked = " checked"
		}
		fmt.Fprintf(b, `<input type="checkbox" aria-label="Select all" data-select-all%s>`, checked)
		return nil
	}

	if col.HeaderRender != nil && !col.Sortable {
		return col.HeaderRender.Render(ctx, b)
	}
	if !col.Sortable {
		b.WriteString(esc(col.Header))
		return nil
	}

	f := t.fork()
	f.ToggleSort(col.Key, false)
	fmt.Fprintf(b, `<a href="#" class="sort" hx-get="%s">`, esc(f.link()))
	if col.HeaderRender != nil {
		if err := col.HeaderRender.Render(ctx, b); err != nil {
			return err
		}
	} else {
		b.WriteString(esc(col.Header))
	}
	switch t.state.SortDir(col.Key) {
	case "asc":
		b.WriteString(` <span aria-label="sorted ascending">▲</span>`)
	case "desc":
		b.WriteString(` <span aria-label="sorted descending">▼</span>`)
	}
	if i := t.state.SortIndex(col.Key); i >= 0 && len(t.state.Sorts) > 1 {
		fmt.Fprintf(b, `<sup class="sort-priority">%d</sup>`, i+1)
	}
	b.WriteString(`</a>`)

	// A secondary control adds the column to the existing order instead of
	// replacing it.
	if t.sortedByOther(col.Key) {
		m := t.fork()
		m.ToggleSort(col.Key, true)
		fmt.Fprintf(b, ` <a href="#" class="sort-add" hx-get="%s" title="Then by %s" aria-label="Then by %s">+</a>`,
			esc(m.link()), esc(headerLabel(col)), esc(headerLabel(col)))
	}
	return nil
}

// sortedByOther reports whether any column other than key is sorted.
func (t *Table[T]) sortedByOther(key string) bool {
	for _, s := range t.state.Sorts {
		if s.Column != key {
			return true
		}
	}
	return false
}

func (t *Table[T]) renderCell(ctx context.Context, b *bytes.Buffer, col Column[T], row T, rowID string) error {
	switch {
	case col.Kind == KindSelect:
		checked := ""
		if t.state.Selected[rowID] {
			checked = " checked"
		}
		fmt.Fprintf(b, `<input type="checkbox" name="selected" value="%s" aria-label="Select row"%s>`, esc(rowID), checked)
		return nil
	case col.Cell != nil:
		return col.Cell(row).Render(ctx, b)
	case col.Value != nil:
		b.WriteString(esc(formatValue(col.Value(row))))
	}
	return nil
}

func (t *Table[T]) renderFooter(b *bytes.Buffer) {
	info := t.PageInfo()

	b.WriteString(`<div class="table-footer">`)

	if t.hasSelectColumn() {
		fmt.Fprintf(b, `<span class="selection" data-selection-count>%d of %d row(s) selected.</span>`,
			len(t.SelectedIDs()), len(t.Visible()))
	}
	fmt.Fprintf(b, `<span class="range">%s</span>`, esc(info.RangeLabel()))

	// The select appends its own limit parameter.
	f := t.fork()
	f.SetPageSize(info.PageSize)
	q := f.state.Query()
	q.Del("limit")
	fmt.Fprintf(b, `<label>Rows per page <select name="limit" hx-get="%s">`, esc(t.href(q)))
	for _, size := range t.cfg.PageSizes {
		selected := ""
		if size == info.PageSize {
			selected = " selected"
		}
		fmt.Fprintf(b, `<option value="%d"%s>%d</option>`, size, selected, size)
	}
	b.WriteString(`</select></label>`)

	fmt.Fprintf(b, `<span class="page">%s</span>`, esc(info.Label()))
	t.pageButton(b, "First", 1, info.HasPrev())
	t.pageButton(b, "Previous", info.Page-1, info.HasPrev())
	t.pageButton(b, "Next", info.Page+1, info.HasNext())
	t.pageButton(b, "Last", info.PageCount, info.HasNext())

	b.WriteString(`</div>`)
}

func (t *Table[T]) pageButton(b *bytes.Buffer, label string, page int, enabled bool) {
	if !enabled {
		fmt.Fprintf(b, `<button type="button" disabled>%s</button>`, label)
		return
	}
	f := t.fork()
	f.SetPage(page)
	fmt.Fprintf(b, `<button type="button" hx-get="%s">%s</button>`, esc(f.link()), label)
}

func (t *Table[T]) hasSelectColumn() bool {
	for _, col := range t.cfg.Columns {
		if col.Kind == KindSelect {
			return true
		}
	}
	return false
}

// fork copies t so an event can be applied to build the link it resolves to.
// Page changes the strategy would hand to the caller land in the copy's
// state instead.
func (t *Table[T]) fork() *Table[T] {
	f := &Table[T]{cfg: t.cfg, rows: t.rows, state: t.state.Clone()}
	f.strategy = t.strategy.withChange(func(page, size int) {
		f.state.PageIndex = page - 1
		f.state.PageSize = size
	})
	return f
}

// link builds the URL for a table showing the current state.
func (t *Table[T]) link() string {
	return t.href(t.state.Query())
}

// href appends q to BaseURL. Parameters already on BaseURL, such as page
// filters owned by the caller, are kept.
func (t *Table[T]) href(q url.Values) string {
	sep := "?"
	if strings.Contains(t.cfg.BaseURL, "?") {
		sep = "&"
	}
	return t.cfg.BaseURL + sep + q.Encode()
}

func headerLabel[T any](col Column[T]) string {
	if col.Header != "" {
		return col.Header
	}
	return col.Key
}

func esc(s string) string { return templ.EscapeString(s) }

// QueryInt reads a positive integer parameter, returning def when missing or invalid.
func QueryInt(q url.Values, name string, def int) int {
	i, err := strconv.Atoi(q.Get(name))
	if err != nil || i < 1 {
		return def
	}
	return i
}
