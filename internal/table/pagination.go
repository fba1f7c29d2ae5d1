package table

import "fmt"

// Mode names which side owns page slicing.
type Mode string

const (
	ModeClient Mode = "client"
	ModeServer Mode = "server"
)

// PageInfo is the pagination summary shown in the table footer.
type PageInfo struct {
	Page      int // 1-based
	PageSize  int
	PageCount int
	Total     int
	From      int // 1-based index of the first row on the page, 0 when empty
	To        int
}

// Label renders "Page X of Y".
func (p PageInfo) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Page, p.PageCount)
}

// RangeLabel renders "Showing A to B of N results".
func (p PageInfo) RangeLabel() string {
	if p.Total == 0 || p.From == 0 {
		return fmt.Sprintf("Showing 0 of %d results", p.Total)
	}
	return fmt.Sprintf("Showing %d to %d of %d results", p.From, p.To, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.PageCount }

// Strategy decides who computes the visible page. The two implementations are
// picked once at construction time; the table never branches on the mode.
type Strategy interface {
	Mode() Mode

	// bounds returns the [lo, hi) window over n processed rows.
	bounds(n int, st State) (lo, hi int)

	// info summarises the page for n processed rows.
	info(n int, st State) PageInfo

	// setPage and setPageSize handle a user pagination event.
	setPage(st *State, page, n int)
	setPageSize(st *State, size int)

	// cursor fixes the display cursor for n processed rows before rendering.
	cursor(st *State, n int)

	// withChange returns a copy that reports page changes to fn.
	withChange(fn PageChangeFunc) Strategy
}

// Client returns the strategy where the table receives the complete dataset
// and slices it locally. It never emits page-change events.
func Client() Strategy { return clientStrategy{} }

type clientStrategy struct{}

func (clientStrategy) Mode() Mode { return ModeClient }

func (clientStrategy) bounds(n int, st State) (int, int) {
	lo := st.PageIndex * st.PageSize
	if lo > n {
		lo = n
	}
	hi := lo + st.PageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

func (c clientStrategy) info(n int, st State) PageInfo {
	lo, hi := c.bounds(n, st)
	p := PageInfo{
		Page:      st.PageIndex + 1,
		PageSize:  st.PageSize,
		PageCount: pageCount(n, st.PageSize),
		Total:     n,
	}
	if hi > lo {
		p.From = lo + 1
		p.To = hi
	}
	return p
}

func (clientStrategy) setPage(st *State, page, n int) {
	last := pageCount(n, st.PageSize)
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	st.PageIndex = page - 1
}

func (clientStrategy) setPageSize(st *State, size int) {
	if size < 1 {
		return
	}
	st.PageSize = size
	st.PageIndex = 0
}

// cursor pulls a cursor past the last page back onto it, as happens after a
// delete or with a stale page in the query string.
func (clientStrategy) cursor(st *State, n int) {
	if last := pageCount(n, st.PageSize); st.PageIndex >= last {
		st.PageIndex = last - 1
	}
}

func (c clientStrategy) withChange(PageChangeFunc) Strategy { return c }

// PageChangeFunc receives the requested 1-based page and the page size.
type PageChangeFunc func(page, pageSize int)

// Server returns the strategy where the caller already fetched exactly one
// page. The table treats the cursor as read-only and forwards every change to
// onPageChange instead of applying it.
func Server(currentPage, pageSize, totalCount int, onPageChange PageChangeFunc) Strategy {
	if currentPage < 1 {
		currentPage = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if totalCount < 0 {
		totalCount = 0
	}
	return &serverStrategy{
		page:     currentPage,
		size:     pageSize,
		total:    totalCount,
		onChange: onPageChange,
	}
}

type serverStrategy struct {
	page     int
	size     int
	total    int
	onChange PageChangeFunc
}

func (*serverStrategy) Mode() Mode { return ModeServer }

// bounds never slices: the rows given are already the page.
func (*serverStrategy) bounds(n int, _ State) (int, int) { return 0, n }

func (s *serverStrategy) info(_ int, _ State) PageInfo {
	p := PageInfo{
		Page:      s.page,
		PageSize:  s.size,
		PageCount: pageCount(s.total, s.size),
		Total:     s.total,
	}
	from := (s.page-1)*s.size + 1
	if s.total > 0 && from <= s.total {
		p.From = from
		p.To = min(s.page*s.size, s.total)
	}
	return p
}

func (s *serverStrategy) setPage(_ *State, page, _ int) {
	if page < 1 || page == s.page {
		return
	}
	if last := pageCount(s.total, s.size); page > last {
		return
	}
	s.emit(page, s.size)
}

func (s *serverStrategy) setPageSize(_ *State, size int) {
	if size < 1 {
		return
	}
	s.emit(1, size)
}

func (s *serverStrategy) cursor(st *State, _ int) {
	st.PageIndex = s.page - 1
	st.PageSize = s.size
}

func (s *serverStrategy) withChange(fn PageChangeFunc) Strategy {
	cp := *s
	cp.onChange = fn
	return &cp
}

func (s *serverStrategy) emit(page, size int) {
	if s.onChange != nil {
		s.onChange(page, size)
	}
}

func pageCount(total, size int) int {
	if size < 1 {
		return 1
	}
	n := (total + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}
