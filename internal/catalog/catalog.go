// internal/catalog/catalog.go

// Package catalog declares the report pages of the data center: base table,
// joins, selectable columns, filters, aggregates and processing steps.
package catalog

import (
	"errors"
	"sort"

	"github.com/astro-datacenter/rundb/internal/query"
)

// ErrUnknownPage is returned by Lookup for names that are not declared.
var ErrUnknownPage = errors.New("unknown page")

var pages = map[string]*query.Page{
	Sequences.Name:     Sequences,
	Runs.Name:          Runs,
	DataSets.Name:      DataSets,
	Ceres.Name:         Ceres,
	SequenceBuild.Name: SequenceBuild,
	Optical.Name:       Optical,
}

// Lookup returns the page registered under name.
func Lookup(name string) (*query.Page, error) {
	p, ok := pages[name]
	if !ok {
		return nil, ErrUnknownPage
	}
	return p, nil
}

// Names returns the registered page names, sorted.
func Names() []string {
	names := make([]string, 0, len(pages))
	for n := range pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks every registered page.
func Validate() error {
	for _, n := range Names() {
		if err := pages[n].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// testFlag hides test observations unless fTest=On.
func testFlag(expr string) query.Flag {
	return query.Flag{
		Param:  "fTest",
		Value:  "On",
		Negate: true,
		SQL:    expr + " = ?",
		Args:   []any{"no"},
		Joins:  []string{"Source"},
	}
}
