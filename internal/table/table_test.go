package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID    string
	Name  string
	Brand string
	Price decimal.Decimal
}

func textCell(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func productColumns() []Column[product] {
	return []Column[product]{
		{Key: "select", Kind: KindSelect},
		{
			Key: "name", Header: "Name", Sortable: true,
			Cell:  func(p product) templ.Component { return textCell(p.Name) },
			Value: func(p product) any { return p.Name },
		},
		{
			Key: "brand", Header: "Brand", Sortable: true,
			Cell: func(p product) templ.Component { return textCell(p.Brand) },
		},
		{
			Key: "price", Header: "Price", Sortable: true,
			Value: func(p product) any { return p.Price },
		},
		{
			Key: "actions", Kind: KindActions,
			Cell: func(p product) templ.Component {
				return templ.Raw(`<button type="button" hx-get="/products/` + p.ID + `/edit">Edit</button>`)
			},
		},
	}
}

func productRows(n int) []product {
	rows := make([]product, n)
	for i := range rows {
		rows[i] = product{
			ID:    fmt.Sprintf("p%d", i+1),
			Name:  fmt.Sprintf("Panel %02d", i+1),
			Brand: []string{"SunPower", "Trina", "Jinko"}[i%3],
			Price: decimal.NewFromInt(int64(100 + i)),
		}
	}
	return rows
}

func baseConfig() Config[product] {
	return Config[product]{
		ID:        "products",
		Columns:   productColumns(),
		RowID:     func(p product) string { return p.ID },
		SearchKey: "name",
		BaseURL:   "/products/table",
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestClientMode_RowsPerPage(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 47} {
		for _, size := range []int{1, 5, 10, 20} {
			rows := productRows(total)
			pages := (total+size-1)/size + 1
			for idx := 0; idx <= pages; idx++ {
				tbl := New(baseConfig(), rows, State{PageIndex: idx, PageSize: size})
				last := max(0, (total+size-1)/size-1)
				want := max(0, min(size, total-min(idx, last)*size))
				assert.Len(t, tbl.Visible(), want, "total=%d size=%d index=%d", total, size, idx)
			}
		}
	}
}

func TestClientMode_FilterBeforeSlice(t *testing.T) {
	rows := productRows(30)
	tbl := New(baseConfig(), rows, State{Search: "PANEL 1", PageSize: 5})

	// Panel 10..19 match.
	assert.Equal(t, 10, tbl.PageInfo().Total)
	assert.Len(t, tbl.Visible(), 5)
	assert.Equal(t, "Panel 10", tbl.Visible()[0].Name)

	tbl.SetPage(2)
	assert.Equal(t, "Panel 15", tbl.Visible()[0].Name)

	tbl.SetPage(99)
	assert.Equal(t, 2, tbl.PageInfo().Page, "client page is clamped to the last page")
}

func TestClientMode_ClampsPastLastPage(t *testing.T) {
	st := ParseState(map[string][]string{"page": {"3"}, "limit": {"10"}})
	tbl := New(baseConfig(), productRows(15), st)

	info := tbl.PageInfo()
	assert.Equal(t, "Page 2 of 2", info.Label())
	assert.Equal(t, "Showing 11 to 15 of 15 results", info.RangeLabel())
	assert.Len(t, tbl.Visible(), 5)
	assert.Equal(t, StatusReadyWithRows, tbl.Status())

	tbl = New(baseConfig(), nil, st)
	assert.Equal(t, "Page 1 of 1", tbl.PageInfo().Label())
	assert.Equal(t, StatusReadyEmpty, tbl.Status())
}

func TestClientMode_SetSearchReturnsToFirstPage(t *testing.T) {
	tbl := New(baseConfig(), productRows(30), State{PageIndex: 2, PageSize: 5})
	require.Equal(t, 3, tbl.PageInfo().Page)

	tbl.SetSearch("  panel 2 ")
	assert.Equal(t, "panel 2", tbl.State().Search)
	assert.Equal(t, 0, tbl.State().PageIndex)
	assert.Equal(t, "Panel 20", tbl.Visible()[0].Name)
	assert.Equal(t, 10, tbl.PageInfo().Total)

	cfg := baseConfig()
	cfg.Pagination = Server(3, 10, 47, nil)
	srv := New(cfg, productRows(10), State{})
	srv.SetSearch("panel")
	assert.Equal(t, 2, srv.State().PageIndex, "server cursor is owned by the caller")
}

func TestClientMode_SearchUsesRenderedTextWithoutValue(t *testing.T) {
	cfg := baseConfig()
	cfg.SearchKey = "brand"
	tbl := New(cfg, productRows(9), State{Search: "trina"})
	require.Len(t, tbl.Visible(), 3)
	for _, p := range tbl.Visible() {
		assert.Equal(t, "Trina", p.Brand)
	}
}

func TestClientMode_PageSizeResetsToFirstPage(t *testing.T) {
	tbl := New(baseConfig(), productRows(47), State{PageIndex: 3, PageSize: 10})
	tbl.SetPageSize(20)
	assert.Equal(t, 0, tbl.State().PageIndex)
	assert.Equal(t, 20, tbl.State().PageSize)
}

func TestServerMode_NeverSlices(t *testing.T) {
	var calls [][2]int
	strategy := Server(3, 10, 47, func(page, size int) { calls = append(calls, [2]int{page, size}) })
	rows := productRows(10)

	tbl := New(Config[product]{Columns: productColumns(), RowID: baseConfig().RowID, Pagination: strategy}, rows, State{PageIndex: 0, PageSize: 2})

	assert.Len(t, tbl.Visible(), 10)
	assert.Equal(t, 2, tbl.State().PageIndex, "display cursor mirrors the caller")
	assert.Equal(t, 10, tbl.State().PageSize)
	assert.Empty(t, calls)
}

func TestServerMode_PageChangesAreForwarded(t *testing.T) {
	var calls [][2]int
	strategy := Server(3, 10, 47, func(page, size int) { calls = append(calls, [2]int{page, size}) })
	tbl := New(Config[product]{Columns: productColumns(), Pagination: strategy}, productRows(10), State{})

	tbl.SetPage(4)
	tbl.SetPage(3) // current page, no event
	tbl.SetPage(9) // out of range
	tbl.SetPage(0)
	assert.Equal(t, [][2]int{{4, 10}}, calls)
	assert.Equal(t, 2, tbl.State().PageIndex, "server cursor is read-only")
}

func TestServerMode_PageSizeAlwaysEmitsPageOne(t *testing.T) {
	for _, current := range []int{1, 2, 5} {
		var calls [][2]int
		strategy := Server(current, 10, 47, func(page, size int) { calls = append(calls, [2]int{page, size}) })
		tbl := New(Config[product]{Columns: productColumns(), Pagination: strategy}, productRows(10), State{})

		tbl.SetPageSize(25)
		require.Len(t, calls, 1)
		assert.Equal(t, [2]int{1, 25}, calls[0], "current=%d", current)
	}
}

func TestServerMode_RangeLabel(t *testing.T) {
	tbl := New(Config[product]{Columns: productColumns(), Pagination: Server(3, 10, 47, nil)}, productRows(10), State{})
	info := tbl.PageInfo()

	assert.Equal(t, "Showing 21 to 30 of 47 results", info.RangeLabel())
	assert.Equal(t, "Page 3 of 5", info.Label())

	html := render(t, tbl.Component())
	assert.Contains(t, html, "Showing 21 to 30 of 47 results")
	assert.Contains(t, html, "Page 3 of 5")
}

func TestServerMode_LastPartialPage(t *testing.T) {
	info := New(Config[product]{Columns: productColumns(), Pagination: Server(5, 10, 47, nil)}, productRows(7), State{}).PageInfo()
	assert.Equal(t, 41, info.From)
	assert.Equal(t, 47, info.To)
	assert.False(t, info.HasNext())
	assert.True(t, info.HasPrev())
}

func TestServerMode_SortIsCosmeticWithinPage(t *testing.T) {
	rows := productRows(5)
	tbl := New(Config[product]{Columns: productColumns(), Pagination: Server(1, 5, 50, nil)}, rows, State{
		Sorts: []SortSpec{{Column: "price", Dir: "desc"}},
	})
	got := tbl.Visible()
	require.Len(t, got, 5)
	assert.Equal(t, "p5", got[0].ID)
	assert.Equal(t, "p1", rows[0].ID, "caller rows are untouched")
}

func TestToggleSort_Cycle(t *testing.T) {
	tbl := New(baseConfig(), productRows(3), State{})

	tbl.ToggleSort("name", false)
	assert.Equal(t, []SortSpec{{Column: "name", Dir: "asc"}}, tbl.State().Sorts)
	tbl.ToggleSort("name", false)
	assert.Equal(t, []SortSpec{{Column: "name", Dir: "desc"}}, tbl.State().Sorts)
	tbl.ToggleSort("name", false)
	assert.Empty(t, tbl.State().Sorts)

	tbl.ToggleSort("actions", false)
	assert.Empty(t, tbl.State().Sorts, "non-sortable columns are ignored")
}

func TestToggleSort_MultiKeepsPriority(t *testing.T) {
	tbl := New(baseConfig(), productRows(6), State{})
	tbl.ToggleSort("brand", true)
	tbl.ToggleSort("price", true)
	tbl.ToggleSort("price", true)

	assert.Equal(t, []SortSpec{{Column: "brand", Dir: "asc"}, {Column: "price", Dir: "desc"}}, tbl.State().Sorts)

	got := tbl.Visible()
	assert.Equal(t, "Jinko", got[0].Brand)
	assert.True(t, got[0].Price.GreaterThan(got[1].Price))

	tbl.ToggleSort("price", true)
	assert.Equal(t, []SortSpec{{Column: "brand", Dir: "asc"}}, tbl.State().Sorts)
}

func TestClick_SkipsInteractiveElements(t *testing.T) {
	var clicked []string
	cfg := baseConfig()
	cfg.OnRowClick = func(p product) { clicked = append(clicked, p.ID) }
	tbl := New(cfg, productRows(3), State{})

	tests := []struct {
		name string
		path []Element
		want bool
	}{
		{"plain cell", []Element{{Tag: "td"}}, true},
		{"span in cell", []Element{{Tag: "span"}, {Tag: "td"}}, true},
		{"action button", []Element{{Tag: "BUTTON"}, {Tag: "td"}}, false},
		{"icon inside button", []Element{{Tag: "svg"}, {Tag: "button"}, {Tag: "td"}}, false},
		{"link", []Element{{Tag: "a"}}, false},
		{"checkbox", []Element{{Tag: "input"}}, false},
		{"select", []Element{{Tag: "select"}}, false},
		{"menu item role", []Element{{Tag: "div", Role: "menuitem"}}, false},
		{"presentational role", []Element{{Tag: "div", Role: "presentation"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clicked = nil
			got := tbl.Click("p2", tt.path...)
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Equal(t, []string{"p2"}, clicked)
			} else {
				assert.Empty(t, clicked)
			}
		})
	}
}

func TestRender_RowTriggerExcludesControls(t *testing.T) {
	cfg := baseConfig()
	cfg.RowURL = func(p product) string { return "/products/" + p.ID }
	html := render(t, New(cfg, productRows(1), State{}).Component())

	assert.Contains(t, html, `hx-get="/products/p1"`)
	assert.Contains(t, html, templ.EscapeString(RowTrigger()))
	assert.Contains(t, RowTrigger(), "button")
	assert.Contains(t, RowTrigger(), "[role=menuitem]")
}

func TestRender_EmptyStateSpansAllColumns(t *testing.T) {
	html := render(t, New(baseConfig(), nil, State{}).Component())

	assert.Equal(t, 1, strings.Count(html, "<tbody><tr"), "exactly one body row")
	assert.Contains(t, html, `<td colspan="5">No results.</td>`)
	assert.Equal(t, StatusReadyEmpty, New(baseConfig(), nil, State{}).Status())
}

func TestRender_EmptyAfterHidingColumns(t *testing.T) {
	st := State{Visibility: map[string]bool{"brand": false}}
	html := render(t, New(baseConfig(), nil, st).Component())
	assert.Contains(t, html, `<td colspan="4">No results.</td>`)
}

func TestRender_LoadingAndError(t *testing.T) {
	cfg := baseConfig()
	cfg.Loading = true
	tbl := New(cfg, productRows(3), State{})
	assert.Equal(t, StatusLoading, tbl.Status())
	html := render(t, tbl.Component())
	assert.Contains(t, html, "Loading")
	assert.NotContains(t, html, "<thead>")

	cfg = baseConfig()
	cfg.Error = "Unable to reach the server"
	tbl = New(cfg, productRows(3), State{})
	assert.Equal(t, StatusError, tbl.Status())
	html = render(t, tbl.Component())
	assert.Contains(t, html, "Unable to reach the server")
	assert.Contains(t, html, "Try Again")
	assert.NotContains(t, html, "<thead>")
	assert.Len(t, tbl.Visible(), 3, "error state leaves rows untouched")
}

func TestRender_HiddenColumnAbsent(t *testing.T) {
	rows := productRows(3)
	tbl := New(baseConfig(), rows, State{})
	tbl.ToggleColumn("brand")

	html := render(t, tbl.Component())
	assert.NotContains(t, html, `<th data-column="brand">`)
	for _, p := range rows {
		assert.NotContains(t, html, "<td>"+p.Brand+"</td>")
	}
	// Still offered in the visibility menu so it can be re-enabled.
	assert.Contains(t, html, "> Brand</label>")
}

func TestToggleColumn_RoundTripRestoresPosition(t *testing.T) {
	tbl := New(baseConfig(), productRows(2), State{})
	keys := func() []string {
		var out []string
		for _, c := range tbl.VisibleColumns() {
			out = append(out, c.Key)
		}
		return out
	}
	original := keys()

	tbl.ToggleColumn("name")
	tbl.ToggleColumn("price")
	assert.Equal(t, []string{"select", "brand", "actions"}, keys())

	tbl.ToggleColumn("name")
	assert.Equal(t, []string{"select", "name", "brand", "actions"}, keys())
	tbl.ToggleColumn("price")
	assert.Equal(t, original, keys())
}

func TestToggleColumn_ChromeColumnsNotToggleable(t *testing.T) {
	tbl := New(baseConfig(), productRows(2), State{})
	tbl.ToggleColumn("select")
	tbl.ToggleColumn("actions")
	assert.Len(t, tbl.VisibleColumns(), 5)

	for _, c := range tbl.ToggleableColumns() {
		assert.Equal(t, KindData, c.Kind)
	}
}

func TestAddAffordance(t *testing.T) {
	html := render(t, New(baseConfig(), nil, State{}).Component())
	assert.NotContains(t, html, "btn-add")

	cfg := baseConfig()
	cfg.AddURL = "/products/new"
	html = render(t, New(cfg, nil, State{}).Component())
	assert.Contains(t, html, `class="btn-add" hx-get="/products/new"`)

	added := false
	cfg = baseConfig()
	cfg.OnAdd = func() { added = true }
	tbl := New(cfg, nil, State{})
	assert.True(t, tbl.HasAdd())
	tbl.Add()
	assert.True(t, added)
}

func TestSearchBoxOnlyWithSearchKey(t *testing.T) {
	cfg := baseConfig()
	cfg.SearchKey = ""
	assert.NotContains(t, render(t, New(cfg, nil, State{}).Component()), `type="search"`)
	assert.Contains(t, render(t, New(baseConfig(), nil, State{}).Component()), `type="search"`)
}

func TestSelection(t *testing.T) {
	tbl := New(baseConfig(), productRows(12), State{PageSize: 5})
	tbl.ToggleAll()
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, tbl.SelectedIDs())

	tbl.ToggleRow("p3")
	assert.Equal(t, []string{"p1", "p2", "p4", "p5"}, tbl.SelectedIDs())

	html := render(t, tbl.Component())
	assert.Contains(t, html, `data-selection-count>4 of 5 row(s) selected.`)
	assert.Contains(t, html, `<tr data-row-id="p1" data-state="selected">`)
	assert.Contains(t, html, `name="selected" value="p3" aria-label="Select row">`)
	assert.Contains(t, html, `data-select-all>`)

	tbl.ToggleRow("p3")
	tbl.ToggleAll()
	assert.Empty(t, tbl.SelectedIDs())
}

func TestStateQueryRoundTrip(t *testing.T) {
	st := State{
		Sorts:      []SortSpec{{Column: "brand", Dir: "asc"}, {Column: "price", Dir: "desc"}},
		Visibility: map[string]bool{"name": false, "price": true},
		Search:     "panel",
		Selected:   map[string]bool{"p1": true},
		PageIndex:  2,
		PageSize:   20,
	}
	got := ParseState(st.Query())

	assert.Equal(t, st.Sorts, got.Sorts)
	assert.Equal(t, "panel", got.Search)
	assert.False(t, got.IsVisible("name"))
	assert.True(t, got.IsVisible("price"))
	assert.Equal(t, 2, got.PageIndex)
	assert.Equal(t, 20, got.PageSize)
	assert.Empty(t, got.Selected, "selection is not carried across reloads")
}

func TestParseState_Malformed(t *testing.T) {
	q := map[string][]string{
		"sort":  {"name,,name,price,brand,extra"},
		"dir":   {"desc,bogus"},
		"page":  {"-3"},
		"limit": {"abc"},
	}
	st := ParseState(q)
	assert.Equal(t, []SortSpec{{Column: "name", Dir: "desc"}, {Column: "price", Dir: "asc"}, {Column: "brand", Dir: "asc"}}, st.Sorts)
	assert.Equal(t, 0, st.PageIndex)
	assert.Equal(t, 0, st.PageSize)
}

func TestRender_PageLinksFollowStrategy(t *testing.T) {
	t.Run("client", func(t *testing.T) {
		html := render(t, New(baseConfig(), productRows(47), State{PageSize: 10}).Component())

		assert.Contains(t, html, `<button type="button" disabled>Previous</button>`)
		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=2">Next</button>`)
		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=5">Last</button>`)
		assert.Contains(t, html, `<select name="limit" hx-get="/products/table?page=1">`)
	})

	t.Run("server", func(t *testing.T) {
		var calls [][2]int
		cfg := baseConfig()
		cfg.Pagination = Server(3, 10, 47, func(page, size int) { calls = append(calls, [2]int{page, size}) })
		html := render(t, New(cfg, productRows(10), State{}).Component())

		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=1">First</button>`)
		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=2">Previous</button>`)
		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=4">Next</button>`)
		assert.Contains(t, html, `hx-get="/products/table?limit=10&amp;page=5">Last</button>`)
		assert.Contains(t, html, `<select name="limit" hx-get="/products/table?page=1">`)
		assert.Empty(t, calls, "rendering never fires the caller's callback")
	})
}

func TestRender_SearchLinkDropsQuery(t *testing.T) {
	html := render(t, New(baseConfig(), productRows(30), State{Search: "panel", PageIndex: 2, PageSize: 5}).Component())
	assert.Contains(t, html, `value="panel"`)
	assert.Contains(t, html, `hx-get="/products/table?limit=5&amp;page=1" hx-trigger="input changed delay:300ms, search"`)
}

func TestRender_MultiSortControl(t *testing.T) {
	html := render(t, New(baseConfig(), productRows(3), State{Sorts: []SortSpec{{Column: "name", Dir: "asc"}}}).Component())

	assert.Equal(t, 2, strings.Count(html, `class="sort-add"`), "brand and price, not the sorted column itself")
	assert.Contains(t, html, `hx-get="/products/table?dir=asc%2Casc&amp;limit=10&amp;page=1&amp;sort=name%2Cbrand" title="Then by Brand"`)
	assert.Contains(t, html, `hx-get="/products/table?dir=desc&amp;limit=10&amp;page=1&amp;sort=name"`)

	st := ParseState(map[string][]string{"sort": {"name,brand"}, "dir": {"asc,desc"}})
	html = render(t, New(baseConfig(), productRows(3), st).Component())
	assert.Contains(t, html, `<sup class="sort-priority">2</sup>`)
	assert.Contains(t, html, `hx-get="/products/table?dir=asc&amp;limit=10&amp;page=1&amp;sort=name" title="Then by Brand"`)
}

func TestLinksKeepBaseURLQuery(t *testing.T) {
	cfg := baseConfig()
	cfg.BaseURL = "/audit-log/table?entity=coupons"
	html := render(t, New(cfg, productRows(25), State{}).Component())

	assert.Contains(t, html, `hx-get="/audit-log/table?entity=coupons&amp;limit=10&amp;page=2">Next</button>`)
}

func TestRender_RefreshTrigger(t *testing.T) {
	html := render(t, New(baseConfig(), productRows(3), State{}).Component())
	assert.Contains(t, html, `hx-trigger="refresh-table from:body"`)

	cfg := baseConfig()
	cfg.BaseURL = ""
	html = render(t, New(cfg, productRows(3), State{}).Component())
	assert.NotContains(t, html, RefreshEvent)
}
