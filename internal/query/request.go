// internal/query/request.go
package query

import (
	"strconv"
	"time"

	"github.com/astro-datacenter/rundb/internal/core"
)

// Enum and status parameter sentinels
const (
	sentinelNone  = "0"
	sentinelGroup = "-1"
)

// Options carry the per-deployment settings a request is built with.
type Options struct {
	Now             time.Time
	TimeLimit       time.Duration // default for steps without their own limit
	DefaultPageSize int
	MaxPageSize     int
}

// Request is the immutable, fully resolved form of one page request.
type Request struct {
	Page         *Page
	Columns      []string // toggled-on column keys, page order
	Steps        []string // toggled-on status steps, page order
	Groups       []string // enum params grouped by, page order
	StatusGroups []string // status steps grouped by, page order
	Restricted   []string // column keys fixed to a single value by an enum filter
	Predicates   []Predicate
	Sort         *core.SortSpec
	Paging       core.Paging
	Now          time.Time
	TimeLimit    time.Duration
}

// Grouped reports whether the request aggregates rows.
func (r Request) Grouped() bool {
	return len(r.Groups) > 0 || len(r.StatusGroups) > 0
}

// NewRequest resolves the parameters of one call against page.
// Predicates keep a stable order: page filters, enum restrictions, status filters.
func NewRequest(page *Page, params core.Params, opts Options) (Request, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}

	req := Request{Page: page, Now: opts.Now, TimeLimit: opts.TimeLimit}

	paging, err := core.ParsePaging(params, opts.DefaultPageSize, opts.MaxPageSize)
	if err != nil {
		return Request{}, malformed("%v", err)
	}
	req.Paging = paging

	sort, ok, err := core.ParseSort(params.Get(core.ParamSortBy))
	if err != nil {
		return Request{}, malformed("%v", err)
	}
	if ok {
		req.Sort = &sort
	}

	// Only declared columns can be toggled; unknown keys are ignored
	for _, c := range page.Columns {
		if params.On(c.Key) {
			req.Columns = append(req.Columns, c.Key)
		}
	}

	// Filters without a parameter return no predicate
	for _, f := range page.Filters {
		pred, err := f.Predicate(params)
		if err != nil {
			return Request{}, err
		}
		if pred != nil {
			req.Predicates = append(req.Predicates, *pred)
		}
	}

	for _, e := range page.Enums {
		raw := params.Get(e.Param)
		switch raw {
		case "", sentinelNone:
			continue
		case sentinelGroup:
			req.Groups = append(req.Groups, e.Param)
			continue
		}
		// Any other value restricts the column to one key and hides it
		key, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || key <= 0 {
			return Request{}, malformed("'%s' must be a positive key, 0 or -1", e.Param)
		}
		req.Restricted = append(req.Restricted, e.Column)
		req.Predicates = append(req.Predicates, Predicate{SQL: e.Check + " = ?", Args: []any{key}, Joins: e.Joins})
	}

	for _, s := range page.Steps {
		if params.On(s.Key) {
			req.Steps = append(req.Steps, s.Key)
		}
		raw := params.Get(s.StatusParam())
		switch raw {
		case "", sentinelNone:
			continue
		case sentinelGroup:
			req.StatusGroups = append(req.StatusGroups, s.Key)
			continue
		}
		// A status value filters on the derived state of the step
		st, ok := ParseStatus(raw)
		if !ok {
			return Request{}, malformed("'%s' is not a known status", raw)
		}
		joins := append(append([]string{}, page.Status.Joins...), s.Joins...)
		req.Predicates = append(req.Predicates, Predicate{
			SQL:   statusExpr(page.Status, s) + " = ?",
			Args:  []any{statusThreshold(req.Now, req.stepLimit(s)), string(st)},
			Joins: joins,
		})
	}

	// Reject a bad sort key here rather than in Build
	if req.Sort != nil {
		if _, _, err := req.sortTarget(); err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

// stepLimit is the running/crashed threshold of a step.
func (r Request) stepLimit(s StatusStep) time.Duration {
	if s.TimeLimit > 0 {
		return s.TimeLimit
	}
	return r.TimeLimit
}

func (r Request) restricted(key string) bool {
	return contains(r.Restricted, key)
}

// sortTarget resolves the sort key against what the request selects.
// Without grouping any page column may be sorted on, a status step only when
// it is shown. A grouped request sorts on its group keys, the aggregates or
// the count.
func (r Request) sortTarget() (expr string, joins []string, err error) {
	key := r.Sort.Key
	page := r.Page
	if !r.Grouped() {
		// Columns may be sorted on even when not shown
		if c, ok := page.column(key); ok {
			return c.expr(), c.Joins, nil
		}
		if s, ok := page.step(key); ok && contains(r.Steps, s.Key) {
			return quoteAlias(s.label()), nil, nil
		}
		return "", nil, malformed("cannot sort by '%s'", key)
	}

	// Grouped rows only carry group keys, aggregates and the count
	for _, e := range page.Enums {
		if (e.Column == key || e.Param == key) && contains(r.Groups, e.Param) {
			col, _ := page.column(e.Column)
			return quoteAlias(col.label()), nil, nil
		}
	}
	if s, ok := page.step(key); ok && contains(r.StatusGroups, s.Key) {
		return quoteAlias(s.label()), nil, nil
	}
	for _, a := range page.Aggregates {
		if a.Alias == key {
			return quoteAlias(a.Alias), nil, nil
		}
	}
	if key == page.countAlias() {
		return quoteAlias(key), nil, nil
	}
	return "", nil, malformed("cannot sort by '%s' when grouping", key)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
