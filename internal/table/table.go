// Package table implements the paginated data table shared by every CRUD
// screen of the dashboard.
//
// A Table is built per request from a column schema, the rows the page
// handler fetched, and the State decoded from the query string. Sorting,
// text filtering, column visibility and row selection are owned here; who
// slices pages is decided by the Strategy passed in Config:
//
//   - Client: rows are the full dataset, the table slices locally.
//   - Server: rows are exactly one page, page changes are forwarded to the caller.
//
// The table never performs I/O and never fails on malformed input.
package table

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
)

// Kind distinguishes data columns from the chrome columns the table owns.
type Kind int

const (
	KindData Kind = iota
	KindSelect
	KindActions
)

// Column describes how one column is labelled and rendered per row.
type Column[T any] struct {
	Key          string
	Header       string
	HeaderRender templ.Component // overrides Header when set
	Cell         func(row T) templ.Component
	Value        func(row T) any // raw value for sorting and searching
	Sortable     bool
	Kind         Kind
}

// Status is the render state of a table, derived from props on every render.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusError         Status = "error"
	StatusReadyEmpty    Status = "ready-empty"
	StatusReadyWithRows Status = "ready-with-rows"
)

// Config carries the construction options of a Table.
type Config[T any] struct {
	// ID is the DOM id of the table container; HTMX swaps target it.
	ID      string
	Columns []Column[T]
	RowID   func(row T) string

	// SearchKey names the column the search box filters on. Empty disables search.
	SearchKey string

	// OnAdd and AddURL enable the Add affordance. When both are unset it is not rendered.
	OnAdd  func()
	AddURL string

	// Pagination defaults to Client().
	Pagination Strategy
	PageSizes  []int

	OnRowClick func(row T)
	RowURL     func(row T) string

	Loading bool
	Error   string

	// BaseURL is where state-changing links point, usually the table partial route.
	BaseURL string
}

// Table is one render pass of a paginated table.
type Table[T any] struct {
	cfg      Config[T]
	rows     []T
	state    State
	strategy Strategy
}

// New builds a table. The rows slice is never modified.
func New[T any](cfg Config[T], rows []T, state State) *Table[T] {
	if cfg.Pagination == nil {
		cfg.Pagination = Client()
	}
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = DefaultPageSizes
	}
	st := state.Clone()
	if st.PageSize < 1 {
		st.PageSize = cfg.PageSizes[0]
	}
	if st.PageIndex < 0 {
		st.PageIndex = 0
	}
	t := &Table[T]{
		cfg:      cfg,
		rows:     rows,
		state:    st,
		strategy: cfg.Pagination,
	}
	t.strategy.cursor(&t.state, len(t.filtered()))
	return t
}

// State returns a copy of the current table state.
func (t *Table[T]) State() State { return t.state.Clone() }

// Mode returns the pagination mode chosen at construction.
func (t *Table[T]) Mode() Mode { return t.strategy.Mode() }

// Status derives the render state from the loading/error props and the rows.
func (t *Table[T]) Status() Status {
	switch {
	case t.cfg.Loading:
		return StatusLoading
	case t.cfg.Error != "":
		return StatusError
	case len(t.Visible()) == 0:
		return StatusReadyEmpty
	default:
		return StatusReadyWithRows
	}
}

// HasAdd reports whether the Add affordance is rendered.
func (t *Table[T]) HasAdd() bool { return t.cfg.OnAdd != nil || t.cfg.AddURL != "" }

// Add fires the Add callback if one is configured.
func (t *Table[T]) Add() {
	if t.cfg.OnAdd != nil {
		t.cfg.OnAdd()
	}
}

// Searchable reports whether the search box is rendered.
func (t *Table[T]) Searchable() bool {
	_, ok := t.column(t.cfg.SearchKey)
	return ok
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// ToggleSort cycles a column through asc, desc and unsorted. Without multi the
// column becomes the only sort.
func (t *Table[T]) ToggleSort(key string, multi bool) {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return
	}
	t.state.Sorts = nextSorts(t.state.Sorts, key, multi)
}

func nextSorts(sorts []SortSpec, key string, multi bool) []SortSpec {
	idx := slices.IndexFunc(sorts, func(s SortSpec) bool { return s.Column == key })

	var next string
	switch {
	case idx < 0:
		next = "asc"
	case sorts[idx].Dir == "asc":
		next = "desc"
	}

	if !multi {
		if next == "" {
			return nil
		}
		return []SortSpec{{Column: key, Dir: next}}
	}

	out := slices.Clone(sorts)
	switch {
	case idx < 0:
		out = append(out, SortSpec{Column: key, Dir: next})
		if len(out) > MaxSortLevels {
			out = out[len(out)-MaxSortLevels:]
		}
	case next == "":
		out = slices.Delete(out, idx, idx+1)
	default:
		out[idx].Dir = next
	}
	return out
}

// SetSearch replaces the text filter. In client mode the cursor returns to page 1.
func (t *Table[T]) SetSearch(s string) {
	t.state.Search = strings.TrimSpace(s)
	if t.strategy.Mode() == ModeClient {
		t.state.PageIndex = 0
	}
}

// ToggleColumn flips the visibility of a data column.
func (t *Table[T]) ToggleColumn(key string) {
	col, ok := t.column(key)
	if !ok || col.Kind != KindData {
		return
	}
	t.state.Visibility = toggleVisibility(t.state.Visibility, key)
}

func toggleVisibility(vis map[string]bool, key string) map[string]bool {
	out := make(map[string]bool, len(vis)+1)
	for k, v := range vis {
		out[k] = v
	}
	if visible, ok := out[key]; ok && !visible {
		delete(out, key)
	} else {
		out[key] = false
	}
	return out
}

// ToggleRow flips the selection of one row.
func (t *Table[T]) ToggleRow(id string) {
	if t.state.Selected == nil {
		t.state.Selected = make(map[string]bool)
	}
	if t.state.Selected[id] {
		delete(t.state.Selected, id)
		return
	}
	t.state.Selected[id] = true
}

// ToggleAll selects every visible row, or clears the selection when all are selected.
func (t *Table[T]) ToggleAll() {
	visible := t.Visible()
	all := len(visible) > 0
	for _, row := range visible {
		if !t.state.Selected[t.rowID(row)] {
			all = false
			break
		}
	}
	if all {
		t.state.Selected = nil
		return
	}
	if t.state.Selected == nil {
		t.state.Selected = make(map[string]bool)
	}
	for _, row := range visible {
		t.state.Selected[t.rowID(row)] = true
	}
}

// SelectedIDs returns the checked row ids in row order.
func (t *Table[T]) SelectedIDs() []string {
	var ids []string
	for _, row := range t.rows {
		if id := t.rowID(row); t.state.Selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetPage requests a 1-based page.
func (t *Table[T]) SetPage(page int) {
	t.strategy.setPage(&t.state, page, len(t.processed()))
}

// SetPageSize changes the page size. Both strategies go back to page 1.
func (t *Table[T]) SetPageSize(size int) {
	t.strategy.setPageSize(&t.state, size)
}

// Click dispatches a click on a row body. path lists the elements from the
// click target up to, but excluding, the row. The row callback fires only
// when none of them is interactive.
func (t *Table[T]) Click(rowID string, path ...Element) bool {
	if t.cfg.OnRowClick == nil || slices.ContainsFunc(path, Element.Interactive) {
		return false
	}
	for _, row := range t.rows {
		if t.rowID(row) == rowID {
			t.cfg.OnRowClick(row)
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Derived data
// ---------------------------------------------------------------------------

// VisibleColumns returns the columns currently shown, in schema order.
func (t *Table[T]) VisibleColumns() []Column[T] {
	cols := make([]Column[T], 0, len(t.cfg.Columns))
	for _, col := range t.cfg.Columns {
		if col.Kind != KindData || t.state.IsVisible(col.Key) {
			cols = append(cols, col)
		}
	}
	return cols
}

// ToggleableColumns returns the columns listed in the visibility menu.
// Selection and action columns are never listed.
func (t *Table[T]) ToggleableColumns() []Column[T] {
	var cols []Column[T]
	for _, col := range t.cfg.Columns {
		if col.Kind == KindData {
			cols = append(cols, col)
		}
	}
	return cols
}

// Visible returns the rows rendered on the current page.
func (t *Table[T]) Visible() []T {
	rows := t.processed()
	lo, hi := t.strategy.bounds(len(rows), t.state)
	return rows[lo:hi]
}

// PageInfo summarises the current page.
func (t *Table[T]) PageInfo() PageInfo {
	return t.strategy.info(len(t.processed()), t.state)
}

// processed applies the text filter then the sorts. In server mode this only
// decorates the page the caller supplied.
func (t *Table[T]) processed() []T {
	rows := t.filtered()
	if len(t.state.Sorts) == 0 {
		return rows
	}

	type sortCol struct {
		col  Column[T]
		desc bool
	}
	var keys []sortCol
	for _, spec := range t.state.Sorts {
		if col, ok := t.column(spec.Column); ok && col.Sortable {
			keys = append(keys, sortCol{col: col, desc: spec.Dir == "desc"})
		}
	}
	if len(keys) == 0 {
		return rows
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range keys {
			c := compareValues(t.rawValue(k.col, a), t.rawValue(k.col, b))
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func (t *Table[T]) filtered() []T {
	needle := strings.ToLower(t.state.Search)
	col, ok := t.column(t.cfg.SearchKey)
	if needle == "" || !ok {
		return t.rows
	}
	var out []T
	for _, row := range t.rows {
		if strings.Contains(strings.ToLower(t.text(col, row)), needle) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	if key == "" {
		return Column[T]{}, false
	}
	for _, col := range t.cfg.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) rowID(row T) string {
	if t.cfg.RowID == nil {
		return ""
	}
	return t.cfg.RowID(row)
}

// rawValue prefers the column's Value func and falls back to the rendered text.
func (t *Table[T]) rawValue(col Column[T], row T) any {
	if col.Value != nil {
		return col.Value(row)
	}
	return t.text(col, row)
}

// text returns the searchable text of a cell.
func (t *Table[T]) text(col Column[T], row T) string {
	if col.Value != nil {
		return formatValue(col.Value(row))
	}
	if col.Cell == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := col.Cell(row).Render(context.Background(), &buf); err != nil {
		return ""
	}
	return stripTags(buf.String())
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format("2006-01-02")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// compareValues orders the value types cells commonly carry. nil sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(strings.ToLower(x), strings.ToLower(y))
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(formatValue(a), formatValue(b))
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(b.String()))
}
