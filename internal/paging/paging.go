// Package paging implements the keyset pagination shared by the list endpoints: a page is the
// rows after the cursor row in (sort column, id) order, fetched one row over the limit to learn
// whether another page exists.
package paging

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrBadCursor = errors.New("cursor must be an id returned by a previous page")

type Page struct {
	Limit  int
	Cursor string
	SortBy string
	Order  string
	Search string
}

type Info struct {
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// FromQuery reads limit, cursor, sortBy, order and search.
func FromQuery(q url.Values) Page {
	limit, _ := strconv.Atoi(q.Get("limit"))
	return Page{
		Limit:  limit,
		Cursor: q.Get("cursor"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Search: strings.TrimSpace(q.Get("search")),
	}
}

func (p Page) limit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Builder accumulates WHERE conditions with numbered placeholders.
type Builder struct {
	where []string
	args  []any
}

// Arg registers v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *Builder) Where(cond string) { b.where = append(b.where, cond) }

// Like returns an ILIKE pattern matching s anywhere, with wildcards in s escaped.
func Like(s string) string {
	return "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}

// Keyset finishes the query: base is a SELECT without WHERE, alias is the paged table's alias in
// base, table its name. sortable maps public sort names to columns and must contain "createdAt",
// which unknown names fall back to.
func (b *Builder) Keyset(base, alias, table string, p Page, sortable map[string]string) (string, []any, error) {
	col, ok := sortable[p.SortBy]
	if !ok {
		col = sortable["createdAt"]
	}
	desc := !strings.EqualFold(p.Order, "asc")
	cmp, dir := ">", "ASC"
	if desc {
		cmp, dir = "<", "DESC"
	}

	if p.Cursor != "" {
		if _, err := uuid.Parse(p.Cursor); err != nil {
			return "", nil, ErrBadCursor
		}
		c := b.Arg(p.Cursor)
		b.Where(fmt.Sprintf("(%[1]s.%[2]s, %[1]s.id) %[3]s (SELECT %[2]s, id FROM %[4]s WHERE id = %[5]s)",
			alias, col, cmp, table, c))
	}

	var sb strings.Builder
	sb.WriteString(base)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %[1]s.%[2]s %[3]s, %[1]s.id %[3]s LIMIT %[4]d", alias, col, dir, p.limit()+1)
	return sb.String(), b.args, nil
}

// Trim drops the look-ahead row and reports where the next page starts.
func Trim[T any](items []T, p Page, id func(T) string) ([]T, Info) {
	limit := p.limit()
	if len(items) <= limit {
		return items, Info{}
	}
	next := id(items[limit-1])
	return items[:limit], Info{NextCursor: &next, HasNextPage: true}
}
