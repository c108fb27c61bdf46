// internal/query/builder.go
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnMeta is the presentation metadata of one output column.
type ColumnMeta struct {
	Label      string `json:"label"`
	RightAlign bool   `json:"right_align"`
}

// Statement is the output of Build: the page query, its count query and
// the metadata of the selected columns in output order.
type Statement struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
	Columns   []ColumnMeta
	Export    bool
}

// builder collects the pieces of one statement. Select arguments precede
// where arguments because the placeholders appear in that order.
type builder struct {
	page      *Page
	selects   []string
	args      []any
	columns   []ColumnMeta
	joinKeys  []string
	where     []string
	whereArgs []any
	groupBy   []string
}

// need records join keys in first-use order, once each.
func (b *builder) need(keys ...string) {
	for _, k := range keys {
		if !contains(b.joinKeys, k) {
			b.joinKeys = append(b.joinKeys, k)
		}
	}
}

func (b *builder) selectExpr(expr, label string, right bool, args ...any) {
	b.selects = append(b.selects, expr+" AS "+quoteAlias(label))
	b.args = append(b.args, args...)
	b.columns = append(b.columns, ColumnMeta{Label: label, RightAlign: right})
}

// Build assembles the statement for req. It performs no I/O.
func Build(req Request) (Statement, error) {
	page := req.Page
	if page == nil {
		return Statement{}, fmt.Errorf("%w: no page", ErrMalformedRequest)
	}
	b := &builder{page: page}
	b.need(page.BaseJoins...)

	if req.Grouped() {
		// Grouped: group keys, grouped steps, then aggregates and the count
		for _, e := range page.Enums {
			if !contains(req.Groups, e.Param) {
				continue
			}
			col, _ := page.column(e.Column)
			b.selectExpr(col.expr(), col.label(), col.RightAlign)
			b.need(col.Joins...)
			b.need(e.Joins...)
			b.groupBy = append(b.groupBy, e.Check)
		}
		for _, s := range page.Steps {
			if !contains(req.StatusGroups, s.Key) {
				continue
			}
			b.selectExpr(statusExpr(page.Status, s), s.label(), false, statusThreshold(req.Now, req.stepLimit(s)))
			b.need(page.Status.Joins...)
			b.need(s.Joins...)
			b.groupBy = append(b.groupBy, quoteAlias(s.label()))
		}
		for _, a := range page.Aggregates {
			b.selectExpr(a.Expr, a.Alias, a.RightAlign)
			b.need(a.Joins...)
		}
		b.selectExpr("COUNT(*)", page.countAlias(), true)
	} else {
		// The id column leads every row
		b.selectExpr(page.ID.expr(), page.ID.label(), page.ID.RightAlign)
		b.need(page.ID.Joins...)
		for _, c := range page.Columns {
			if !contains(req.Columns, c.Key) || req.restricted(c.Key) {
				continue
			}
			b.selectExpr(c.expr(), c.label(), c.RightAlign)
			b.need(c.Joins...)
		}
		for _, s := range page.Steps {
			if !contains(req.Steps, s.Key) {
				continue
			}
			b.selectExpr(statusExpr(page.Status, s), s.label(), false, statusThreshold(req.Now, req.stepLimit(s)))
			b.need(page.Status.Joins...)
			b.need(s.Joins...)
		}
	}

	// Predicates were validated and bound by NewRequest
	for _, p := range req.Predicates {
		b.where = append(b.where, p.SQL)
		b.whereArgs = append(b.whereArgs, p.Args...)
		b.need(p.Joins...)
	}

	var orderBy string
	if req.Sort != nil {
		expr, joins, err := req.sortTarget()
		if err != nil {
			return Statement{}, err
		}
		b.need(joins...)
		orderBy = "ORDER BY " + expr
		if req.Sort.Desc {
			orderBy += " DESC"
		}
	} else if !req.Grouped() && page.DefaultOrder.Expr != "" {
		orderBy = "ORDER BY " + page.DefaultOrder.Expr
		if page.DefaultOrder.Desc {
			orderBy += " DESC"
		}
	}

	// Joins follow in the order they were first needed
	parts := []string{"SELECT " + strings.Join(b.selects, ", "), "FROM " + page.Table}
	for _, key := range b.joinKeys {
		clause, ok := page.join(key)
		if !ok {
			return Statement{}, fmt.Errorf("page %s: unknown join '%s'", page.Name, key)
		}
		parts = append(parts, clause)
	}
	if len(b.where) > 0 {
		parts = append(parts, "WHERE "+strings.Join(b.where, " AND "))
	}
	if len(b.groupBy) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(b.groupBy, ", "))
	}
	core := strings.Join(parts, " ")

	args := make([]any, 0, len(b.args)+len(b.whereArgs))
	args = append(args, b.args...)
	args = append(args, b.whereArgs...)

	// The count query wraps the statement without ORDER BY and LIMIT
	query := core
	if orderBy != "" {
		query += " " + orderBy
	}
	if !req.Paging.Export {
		query += " LIMIT " + strconv.Itoa(req.Paging.Offset) + ", " + strconv.Itoa(req.Paging.Limit)
	}

	return Statement{
		SQL:       query,
		Args:      args,
		CountSQL:  "SELECT COUNT(*) FROM (" + core + ") AS counted",
		CountArgs: append([]any{}, args...),
		Columns:   b.columns,
		Export:    req.Paging.Export,
	}, nil
}

// quoteAlias quotes a display label as an identifier (MySQL and SQLite both accept backticks).
func quoteAlias(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Debug returns the statement with its arguments inlined, for display only.
func (s Statement) Debug() string {
	return interpolate(s.SQL, s.Args)
}

func interpolate(sql string, args []any) string {
	var b strings.Builder
	i := 0
	for _, r := range sql {
		if r == '?' && i < len(args) {
			b.WriteString(literal(args[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int, int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	default:
		return fmt.Sprintf("'%v'", x)
	}
}
