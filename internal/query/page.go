// internal/query/page.go

// Package query turns a report page declaration plus request parameters into
// one parameterized SQL statement, a count statement and display metadata.
//
// Structural SQL (expressions, joins, GROUP BY, ORDER BY) is only ever taken
// from a Page declaration; every value that comes from a request is bound as
// a parameter.
package query

import (
	"fmt"
	"time"
)

// Join is a named join clause, e.g. {"Source", "LEFT JOIN Source USING(fSourceKEY)"}.
type Join struct {
	Key    string
	Clause string
}

// Column describes one selectable output column.
type Column struct {
	Key        string   // request flag name and allow-list key
	Expr       string   // SQL expression; Key is used when empty
	Alias      string   // display label; Key is used when empty
	RightAlign bool     // numeric columns are right aligned
	Joins      []string // join keys needed to resolve Expr
}

func (c Column) expr() string {
	if c.Expr != "" {
		return c.Expr
	}
	return c.Key
}

func (c Column) label() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Key
}

// Enum is a column backed by a foreign key. Its Param selects:
// "" or "0" no constraint, "-1" group by the key, n>0 restrict Check to n.
type Enum struct {
	Column string // key of the display column in Page.Columns
	Param  string
	Check  string
	Joins  []string
}

// Aggregate is emitted in place of row columns when the request groups.
type Aggregate struct {
	Expr       string
	Alias      string
	RightAlign bool
	Joins      []string
}

// StatusStep is one processing step whose state is derived from its done
// timestamp and the page-wide start/failed timestamps, or from its own
// process table when Process is set.
type StatusStep struct {
	Key       string // done timestamp column; also the display toggle
	Alias     string
	Needs     string        // prerequisite column; a null value means the step cannot run yet
	TimeLimit time.Duration // overrides Options.TimeLimit when set
	Joins     []string
	Process   *ProcessColumns
}

// ProcessColumns name the columns of a per-step process table.
type ProcessColumns struct {
	Start      string
	Stop       string
	ReturnCode string
	Available  string
}

// StatusParam is the request parameter selecting a status filter or status grouping.
func (s StatusStep) StatusParam() string {
	return s.Key + "Status"
}

func (s StatusStep) label() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Key
}

// StatusColumns names the start and failed timestamps shared by the steps of a page.
type StatusColumns struct {
	Start  string
	Failed string
	Joins  []string
}

// Order is a fixed ORDER BY used when the request gives none.
type Order struct {
	Expr string
	Desc bool
}

// Page declares everything the builder may put into a statement for one report.
type Page struct {
	Name         string
	Title        string
	Table        string
	ID           Column // always selected when not grouping
	Joins        []Join // registry of joins referenced by key
	BaseJoins    []string
	Columns      []Column
	Enums        []Enum
	Steps        []StatusStep
	Status       StatusColumns
	Filters      []Filter
	Aggregates   []Aggregate
	CountAlias   string
	DefaultOrder Order
}

func (p *Page) column(key string) (Column, bool) {
	if key == p.ID.Key {
		return p.ID, true
	}
	for _, c := range p.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (p *Page) join(key string) (string, bool) {
	for _, j := range p.Joins {
		if j.Key == key {
			return j.Clause, true
		}
	}
	return "", false
}

func (p *Page) step(key string) (StatusStep, bool) {
	for _, s := range p.Steps {
		if s.Key == key {
			return s, true
		}
	}
	return StatusStep{}, false
}

func (p *Page) countAlias() string {
	if p.CountAlias != "" {
		return p.CountAlias
	}
	return "Count"
}

// Validate checks that every join key referenced by the page is declared
// and every enum points at a declared column.
func (p *Page) Validate() error {
	check := func(owner string, keys []string) error {
		for _, k := range keys {
			if _, ok := p.join(k); !ok {
				return fmt.Errorf("page %s: %s references unknown join '%s'", p.Name, owner, k)
			}
		}
		return nil
	}
	if p.Table == "" || p.ID.Key == "" {
		return fmt.Errorf("page %s: table and id column are required", p.Name)
	}
	if err := check("base joins", p.BaseJoins); err != nil {
		return err
	}
	if err := check("status columns", p.Status.Joins); err != nil {
		return err
	}
	for _, c := range p.Columns {
		if err := check("column "+c.Key, c.Joins); err != nil {
			return err
		}
	}
	for _, e := range p.Enums {
		if _, ok := p.column(e.Column); !ok {
			return fmt.Errorf("page %s: enum %s references unknown column '%s'", p.Name, e.Param, e.Column)
		}
		if err := check("enum "+e.Param, e.Joins); err != nil {
			return err
		}
	}
	for _, s := range p.Steps {
		if err := check("step "+s.Key, s.Joins); err != nil {
			return err
		}
		if pc := s.Process; pc != nil {
			if pc.Start == "" || pc.Stop == "" || pc.ReturnCode == "" || pc.Available == "" {
				return fmt.Errorf("page %s: step %s needs all process columns", p.Name, s.Key)
			}
			continue
		}
		if p.Status.Start == "" || p.Status.Failed == "" {
			return fmt.Errorf("page %s: status steps need start and failed columns", p.Name)
		}
	}
	for _, a := range p.Aggregates {
		if err := check("aggregate "+a.Alias, a.Joins); err != nil {
			return err
		}
	}
	for _, f := range p.Filters {
		if err := check("filter", f.joins()); err != nil {
			return err
		}
	}
	return nil
}
