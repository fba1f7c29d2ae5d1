package table

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPageSize is used when neither the state nor the config names one.
const DefaultPageSize = 10

// DefaultPageSizes are the rows-per-page choices when the config names none.
var DefaultPageSizes = []int{10, 20, 50, 100}

// MaxSortLevels caps multi-column sorting.
const MaxSortLevels = 3

// RefreshEvent is the HX-Trigger event that makes a rendered table refetch.
const RefreshEvent = "refresh-table"

// SortSpec represents a single sort column and direction.
type SortSpec struct {
	Column string // Column key
	Dir    string // "asc" or "desc"
}

// State is the per-instance display state of a table. It lives for one
// render pass on the server and travels between requests in the query string.
type State struct {
	// Sorts is ordered by priority; empty means original row order.
	Sorts []SortSpec

	// Visibility maps a column key to whether it is shown. Absent keys are visible.
	Visibility map[string]bool

	// Search is matched case-insensitively against the searchable column.
	Search string

	// Selected holds checked row ids. Never encoded into links, so a reload clears it.
	Selected map[string]bool

	// PageIndex is zero-based. In server mode it mirrors the caller's cursor.
	PageIndex int
	PageSize  int
}

// IsVisible reports whether the column with key is currently shown.
func (s State) IsVisible(key string) bool {
	if v, ok := s.Visibility[key]; ok {
		return v
	}
	return true
}

// SortDir returns the direction a column is sorted in, or "" when unsorted.
func (s State) SortDir(key string) string {
	if i := s.SortIndex(key); i >= 0 {
		return s.Sorts[i].Dir
	}
	return ""
}

// SortIndex returns the priority of a sorted column, or -1.
func (s State) SortIndex(key string) int {
	return slices.IndexFunc(s.Sorts, func(spec SortSpec) bool { return spec.Column == key })
}

// Clone returns a deep copy so link builders can mutate freely.
func (s State) Clone() State {
	out := s
	out.Sorts = append([]SortSpec(nil), s.Sorts...)
	if s.Visibility != nil {
		out.Visibility = make(map[string]bool, len(s.Visibility))
		for k, v := range s.Visibility {
			out.Visibility[k] = v
		}
	}
	if s.Selected != nil {
		out.Selected = make(map[string]bool, len(s.Selected))
		for k, v := range s.Selected {
			out.Selected[k] = v
		}
	}
	return out
}

// Query encodes the state as URL parameters.
// Format: ?sort=name,price&dir=asc,desc&q=panel&hide=brand&page=2&limit=20
// page is 1-based on the wire.
func (s State) Query() url.Values {
	v := url.Values{}
	if len(s.Sorts) > 0 {
		cols := make([]string, len(s.Sorts))
		dirs := make([]string, len(s.Sorts))
		for i, spec := range s.Sorts {
			cols[i] = spec.Column
			dirs[i] = spec.Dir
		}
		v.Set("sort", strings.Join(cols, ","))
		v.Set("dir", strings.Join(dirs, ","))
	}
	if s.Search != "" {
		v.Set("q", s.Search)
	}
	var hidden []string
	for key, visible := range s.Visibility {
		if !visible {
			hidden = append(hidden, key)
		}
	}
	if len(hidden) > 0 {
		slices.Sort(hidden)
		v.Set("hide", strings.Join(hidden, ","))
	}
	v.Set("page", strconv.Itoa(s.PageIndex+1))
	if s.PageSize > 0 {
		v.Set("limit", strconv.Itoa(s.PageSize))
	}
	return v
}

// ParseState decodes the parameters written by Query.
// Unknown or malformed values fall back to defaults; the table never fails on them.
func ParseState(q url.Values) State {
	st := State{}

	if sortStr := q.Get("sort"); sortStr != "" {
		cols := strings.Split(sortStr, ",")
		dirs := strings.Split(q.Get("dir"), ",")
		for i, col := range cols {
			col = strings.TrimSpace(col)
			if col == "" || st.SortDir(col) != "" {
				continue
			}
			dir := "asc"
			if i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc" {
				dir = "desc"
			}
			st.Sorts = append(st.Sorts, SortSpec{Column: col, Dir: dir})
			if len(st.Sorts) >= MaxSortLevels {
				break
			}
		}
	}

	st.Search = strings.TrimSpace(q.Get("q"))

	if hide := q.Get("hide"); hide != "" {
		st.Visibility = make(map[string]bool)
		for _, key := range strings.Split(hide, ",") {
			if key = strings.TrimSpace(key); key != "" {
				st.Visibility[key] = false
			}
		}
	}

	if page := positiveInt(q.Get("page")); page > 0 {
		st.PageIndex = page - 1
	}
	st.PageSize = positiveInt(q.Get("limit"))
	return st
}

func positiveInt(s string) int {
	if s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 {
		return 0
	}
	return i
}
