package core

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder assembles a parameterised WHERE clause for the audit queries.
// Column names are trusted; values always travel as arguments.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder. Placeholders start at $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "col = $n". Empty values are skipped so optional filters can
// be passed straight through.
func (wb *WhereBuilder) Add(col, value string) {
	if value == "" {
		return
	}
	wb.add(col+" = $%d", value)
}

// AddPrefix appends a case-insensitive prefix match.
func (wb *WhereBuilder) AddPrefix(col, prefix string) {
	if prefix == "" {
		return
	}
	wb.add(col+" ILIKE $%d", escapeLike(prefix)+"%")
}

// AddTimestampRange appends an inclusive range. Zero times are skipped.
func (wb *WhereBuilder) AddTimestampRange(col string, start, end time.Time) {
	if !start.IsZero() {
		wb.add(col+" >= $%d", start)
	}
	if !end.IsZero() {
		wb.add(col+" <= $%d", end)
	}
}

func (wb *WhereBuilder) add(format string, arg any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf(format, wb.argIndex))
	wb.args = append(wb.args, arg)
	wb.argIndex++
}

// Build returns the clause with a leading space, or "" with nil args when no
// condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex is the placeholder number the next argument would get.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
