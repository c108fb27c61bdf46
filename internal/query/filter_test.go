// internal/query/filter_test.go
package query

import (
	"testing"

	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPredicates(t *testing.T) {
	testCases := []struct {
		name     string
		filter   Filter
		params   core.Params
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Two column range",
			filter:   Range{MinParam: "fZDMin", MaxParam: "fZDMax", Low: "S.fZenithDistanceMin", High: "S.fZenithDistanceMax"},
			params:   core.Params{"fZDMin": "10", "fZDMax": "35.5"},
			wantSQL:  "(S.fZenithDistanceMin >= ? AND S.fZenithDistanceMax <= ?)",
			wantArgs: []any{int64(10), 35.5},
		},
		{
			name:     "Date range",
			filter:   Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "B.fDate", Dates: true},
			params:   core.Params{"fRunMin": "2024-03-01", "fRunMax": "2024-03-31 00:00:00"},
			wantSQL:  "B.fDate BETWEEN ? AND ?",
			wantArgs: []any{"2024-03-01", "2024-03-31"},
		},
		{
			name:     "Regexp keeps explicit anchor",
			filter:   Regexp{Param: "fSourceN", Expr: "Source.fSourceName", Anchor: true},
			params:   core.Params{"fSourceN": "^Crab"},
			wantSQL:  "Source.fSourceName REGEXP ?",
			wantArgs: []any{"^Crab"},
		},
		{
			name:     "Unanchored regexp",
			filter:   Regexp{Param: "fNameN", Expr: "D.fDataSetName"},
			params:   core.Params{"fNameN": "Crab"},
			wantSQL:  "D.fDataSetName REGEXP ?",
			wantArgs: []any{"Crab"},
		},
		{
			name:     "Start date covers the preceding night",
			filter:   DateBound{Param: "fStartDate", Expr: "S.fRunStart", Op: ">=", Clock: "13:00:00", DayOffset: -1},
			params:   core.Params{"fStartDate": "2004-03-01"},
			wantSQL:  "S.fRunStart >= ?",
			wantArgs: []any{"2004-02-29 13:00:00"},
		},
		{
			name:     "Zero start date",
			filter:   DateBound{Param: "fStartDate", Expr: "S.fRunStart", Op: ">=", Clock: "13:00:00", DayOffset: -1},
			params:   core.Params{"fStartDate": "0000-00-00"},
			wantSQL:  "S.fRunStart >= ?",
			wantArgs: []any{"0000-00-00 00:00:00"},
		},
		{
			name:     "Stop date with time part",
			filter:   DateBound{Param: "fStopDate", Expr: "S.fRunStart", Op: "<", Clock: "13:00:00"},
			params:   core.Params{"fStopDate": "2005-01-31 00:00:00"},
			wantSQL:  "S.fRunStart < ?",
			wantArgs: []any{"2005-01-31 13:00:00"},
		},
		{
			name:     "Negated flag applies by default",
			filter:   Flag{Param: "fTest", Value: "On", Negate: true, SQL: "Source.fTest = ?", Args: []any{"no"}},
			params:   core.Params{},
			wantSQL:  "Source.fTest = ?",
			wantArgs: []any{"no"},
		},
		{
			name:     "Flag",
			filter:   Flag{Param: "fOff", Value: "Off", SQL: "NOT (Source.fSourceName LIKE ?)", Args: []any{"%Off%"}},
			params:   core.Params{"fOff": "Off"},
			wantSQL:  "NOT (Source.fSourceName LIKE ?)",
			wantArgs: []any{"%Off%"},
		},
		{
			name:     "Excluded list",
			filter:   IntList{Param: "fExclude", Expr: "S.fSequenceFirst", Not: true},
			params:   core.Params{"fExclude": "100, 200 300"},
			wantSQL:  "S.fSequenceFirst NOT IN (?, ?, ?)",
			wantArgs: []any{100, 200, 300},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := tc.filter.Predicate(tc.params)
			require.NoError(t, err)
			require.NotNil(t, pred)
			assert.Equal(t, tc.wantSQL, pred.SQL)
			assert.Equal(t, tc.wantArgs, pred.Args)
		})
	}
}

func TestFilterPredicates_Inactive(t *testing.T) {
	filters := []Filter{
		Equality{Param: "fSequenceNo", Expr: "S.fSequenceFirst"},
		Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "S.fSequenceFirst"},
		Regexp{Param: "fSourceN", Expr: "Source.fSourceName"},
		DateBound{Param: "fStopDate", Expr: "S.fRunStart", Op: "<"},
		Flag{Param: "fTest", Value: "On", Negate: true, SQL: "Source.fTest = ?"},
		IntList{Param: "fSequences", Expr: "S.fSequenceFirst"},
	}
	params := core.Params{"fTest": "On", "fSequences": " , "}
	for _, f := range filters {
		pred, err := f.Predicate(params)
		assert.NoError(t, err)
		assert.Nil(t, pred)
	}
}

func TestFilterPredicates_Malformed(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		params core.Params
	}{
		{"Max without min", Range{MinParam: "a", MaxParam: "b", Low: "x"}, core.Params{"b": "1"}},
		{"Number in date range", Range{MinParam: "a", MaxParam: "b", Low: "x", Dates: true}, core.Params{"a": "1", "b": "2"}},
		{"Impossible date in range", Range{MinParam: "a", MaxParam: "b", Low: "x", Dates: true}, core.Params{"a": "2024-01-01", "b": "2024-02-30"}},
		{"Bad date", DateBound{Param: "d", Expr: "x", Op: "<"}, core.Params{"d": "yesterday"}},
		{"Impossible date", DateBound{Param: "d", Expr: "x", Op: "<"}, core.Params{"d": "2005-02-30"}},
		{"Bad list", IntList{Param: "l", Expr: "x"}, core.Params{"l": "1,two"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.filter.Predicate(tc.params)
			assert.ErrorIs(t, err, ErrMalformedRequest)
		})
	}
}

func TestFlagArgsAreCopied(t *testing.T) {
	f := Flag{Param: "p", Value: "x", SQL: "a = ?", Args: []any{"v"}}
	pred, err := f.Predicate(core.Params{"p": "x"})
	require.NoError(t, err)
	pred.Args[0] = "changed"
	assert.Equal(t, "v", f.Args[0])
}
