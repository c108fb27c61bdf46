// internal/query/filter.go
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/astro-datacenter/rundb/internal/core"
)

// ErrMalformedRequest is returned when request parameters cannot form a valid query
// (half-given range pair, non-numeric bound, unknown sort column, ...).
var ErrMalformedRequest = errors.New("malformed request")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRequest, fmt.Sprintf(format, args...))
}

// Predicate is one resolved WHERE fragment with its bound values.
type Predicate struct {
	SQL   string
	Args  []any
	Joins []string
}

// Filter resolves request parameters into at most one predicate.
// A nil predicate means the filter contributes nothing.
type Filter interface {
	Predicate(p core.Params) (*Predicate, error)
	joins() []string
}

// Equality restricts Expr to the value of Param.
type Equality struct {
	Param   string
	Expr    string
	Numeric bool
	Joins   []string
}

func (f Equality) joins() []string { return f.Joins }

func (f Equality) Predicate(p core.Params) (*Predicate, error) {
	raw := p.Get(f.Param)
	if raw == "" {
		return nil, nil
	}
	var val any = raw
	if f.Numeric {
		n, err := parseNumber(raw)
		if err != nil {
			return nil, malformed("'%s' must be numeric", f.Param)
		}
		val = n
	}
	return &Predicate{SQL: f.Expr + " = ?", Args: []any{val}, Joins: f.Joins}, nil
}

// Range restricts a value to [min, max]. Both bounds must be given together.
// With High empty the predicate is "Low BETWEEN ? AND ?"; otherwise the lower
// bound applies to Low and the upper bound to High.
type Range struct {
	MinParam string
	MaxParam string
	Low      string
	High     string
	Dates    bool // bounds are dates (YYYY-MM-DD) instead of numbers
	Joins    []string
}

func (f Range) joins() []string { return f.Joins }

func (f Range) Predicate(p core.Params) (*Predicate, error) {
	rawMin, rawMax := p.Get(f.MinParam), p.Get(f.MaxParam)
	if rawMin == "" && rawMax == "" {
		return nil, nil
	}
	if rawMin == "" || rawMax == "" {
		return nil, malformed("'%s' and '%s' must be given together", f.MinParam, f.MaxParam)
	}
	lo, err := f.bound(f.MinParam, rawMin)
	if err != nil {
		return nil, err
	}
	hi, err := f.bound(f.MaxParam, rawMax)
	if err != nil {
		return nil, err
	}
	if f.High == "" || f.High == f.Low {
		return &Predicate{SQL: f.Low + " BETWEEN ? AND ?", Args: []any{lo, hi}, Joins: f.Joins}, nil
	}
	return &Predicate{
		SQL:   "(" + f.Low + " >= ? AND " + f.High + " <= ?)",
		Args:  []any{lo, hi},
		Joins: f.Joins,
	}, nil
}

func (f Range) bound(param, raw string) (any, error) {
	if !f.Dates {
		n, err := parseNumber(raw)
		if err != nil {
			return nil, malformed("'%s' must be numeric", param)
		}
		return n, nil
	}
	date, ok := core.DatePart(raw)
	if !ok {
		return nil, malformed("'%s' must be a date (YYYY-MM-DD)", param)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, malformed("'%s' is not a valid date", param)
	}
	return date, nil
}

// Regexp matches Expr against the parameter, anchored at the start when Anchor is set.
type Regexp struct {
	Param  string
	Expr   string
	Anchor bool
	Joins  []string
}

func (f Regexp) joins() []string { return f.Joins }

func (f Regexp) Predicate(p core.Params) (*Predicate, error) {
	raw := p.Get(f.Param)
	if raw == "" {
		return nil, nil
	}
	// The pattern is bound, never spliced into the statement
	if f.Anchor && !strings.HasPrefix(raw, "^") {
		raw = "^" + raw
	}
	return &Predicate{SQL: f.Expr + " REGEXP ?", Args: []any{raw}, Joins: f.Joins}, nil
}

// TimestampLayout is the format timestamps are bound and compared with.
const TimestampLayout = "2006-01-02 15:04:05"

// zeroDate is accepted as "since the beginning" and bound unchanged.
const zeroDate = "0000-00-00"

// DateBound compares Expr with a date parameter at a fixed clock time.
// DayOffset shifts the bound, e.g. -1 with Clock 13:00:00 selects the whole
// observation night that ends on the given date.
type DateBound struct {
	Param     string
	Expr      string
	Op        string // ">=" or "<"
	Clock     string // HH:MM:SS, defaults to 00:00:00
	DayOffset int
	Joins     []string
}

func (f DateBound) joins() []string { return f.Joins }

func (f DateBound) Predicate(p core.Params) (*Predicate, error) {
	raw := p.Get(f.Param)
	if raw == "" {
		return nil, nil
	}
	date, ok := core.DatePart(raw)
	if !ok {
		return nil, malformed("'%s' must be a date (YYYY-MM-DD)", f.Param)
	}
	if f.Op != ">=" && f.Op != "<" && f.Op != ">" && f.Op != "<=" {
		return nil, fmt.Errorf("date bound on %s: unsupported operator '%s'", f.Expr, f.Op)
	}
	// 0000-00-00 means "no lower bound" and is bound without a clock shift
	if date == zeroDate {
		return &Predicate{SQL: f.Expr + " " + f.Op + " ?", Args: []any{zeroDate + " 00:00:00"}, Joins: f.Joins}, nil
	}
	clock := f.Clock
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse(TimestampLayout, date+" "+clock)
	if err != nil {
		return nil, malformed("'%s' is not a valid date", f.Param)
	}
	t = t.AddDate(0, 0, f.DayOffset)
	return &Predicate{SQL: f.Expr + " " + f.Op + " ?", Args: []any{t.Format(TimestampLayout)}, Joins: f.Joins}, nil
}

// Flag adds a fixed clause when Param equals Value (or, with Negate, when it does not).
type Flag struct {
	Param  string
	Value  string
	Negate bool
	SQL    string
	Args   []any
	Joins  []string
}

func (f Flag) joins() []string { return f.Joins }

func (f Flag) Predicate(p core.Params) (*Predicate, error) {
	if (p.Get(f.Param) == f.Value) == f.Negate {
		return nil, nil
	}
	// Copy so that a caller appending to Args cannot alias the page declaration
	args := make([]any, len(f.Args))
	copy(args, f.Args)
	return &Predicate{SQL: f.SQL, Args: args, Joins: f.Joins}, nil
}

// IntList restricts Expr to (or, with Not, excludes) a list of integers.
type IntList struct {
	Param string
	Expr  string
	Not   bool
	Joins []string
}

func (f IntList) joins() []string { return f.Joins }

func (f IntList) Predicate(p core.Params) (*Predicate, error) {
	nums, err := core.ParseIntList(p.Get(f.Param))
	if err != nil {
		return nil, malformed("'%s': %v", f.Param, err)
	}
	if len(nums) == 0 {
		return nil, nil
	}
	// One placeholder per entry
	marks := make([]string, len(nums))
	args := make([]any, len(nums))
	for i, n := range nums {
		marks[i] = "?"
		args[i] = n
	}
	op := " IN ("
	if f.Not {
		op = " NOT IN ("
	}
	return &Predicate{SQL: f.Expr + op + strings.Join(marks, ", ") + ")", Args: args, Joins: f.Joins}, nil
}

// parseNumber keeps integers integral so that they bind and print as such.
func parseNumber(raw string) (any, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}
