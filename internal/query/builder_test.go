// internal/query/builder_test.go
package query

import (
	"strings"
	"testing"
	"time"

	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testPage() *Page {
	return &Page{
		Name:  "items",
		Table: "Items",
		ID:    Column{Key: "fItemID", Expr: "Items.fItemID", Alias: "Item", RightAlign: true},
		Joins: []Join{
			{Key: "Owner", Clause: "LEFT JOIN Owner USING(fOwnerKEY)"},
			{Key: "ItemStatus", Clause: "LEFT JOIN ItemStatus USING(fItemID)"},
		},
		Columns: []Column{
			{Key: "fOwnerName", Alias: "Owner", Joins: []string{"Owner"}},
			{Key: "fSize", Alias: "Size", RightAlign: true},
		},
		Enums: []Enum{{Column: "fOwnerName", Param: "fOwnerKEY", Check: "Items.fOwnerKEY"}},
		Steps: []StatusStep{{Key: "fChecked", Alias: "Checked"}},
		Status: StatusColumns{
			Start:  "ItemStatus.fStartTime",
			Failed: "ItemStatus.fFailedTime",
			Joins:  []string{"ItemStatus"},
		},
		Filters: []Filter{
			Range{MinParam: "fMin", MaxParam: "fMax", Low: "Items.fItemID"},
			Regexp{Param: "fOwnerN", Expr: "Owner.fOwnerName", Anchor: true, Joins: []string{"Owner"}},
			Equality{Param: "fSizeIs", Expr: "Items.fSize", Numeric: true},
		},
		Aggregates:   []Aggregate{{Expr: "SUM(Items.fSize)", Alias: "Total", RightAlign: true}},
		DefaultOrder: Order{Expr: "Items.fItemID", Desc: true},
	}
}

func build(t *testing.T, params core.Params) Statement {
	t.Helper()
	req, err := NewRequest(testPage(), params, Options{Now: testNow, TimeLimit: 12 * time.Hour, DefaultPageSize: 20, MaxPageSize: 100})
	require.NoError(t, err)
	stmt, err := Build(req)
	require.NoError(t, err)
	return stmt
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		name     string
		params   core.Params
		wantSQL  string
		wantArgs []any
		wantCols []string
	}{
		{
			name:     "No filters",
			params:   core.Params{},
			wantSQL:  "SELECT Items.fItemID AS `Item` FROM Items ORDER BY Items.fItemID DESC LIMIT 0, 20",
			wantArgs: []any{},
			wantCols: []string{"Item"},
		},
		{
			name:   "All filters in declaration order",
			params: core.Params{"fSizeIs": "3", "fOwnerN": "ab", "fMin": "1", "fMax": "10"},
			wantSQL: "SELECT Items.fItemID AS `Item` FROM Items LEFT JOIN Owner USING(fOwnerKEY) " +
				"WHERE Items.fItemID BETWEEN ? AND ? AND Owner.fOwnerName REGEXP ? AND Items.fSize = ? " +
				"ORDER BY Items.fItemID DESC LIMIT 0, 20",
			wantArgs: []any{int64(1), int64(10), "^ab", int64(3)},
			wantCols: []string{"Item"},
		},
		{
			name:   "Join shared by column and filter",
			params: core.Params{"fOwnerName": "On", "fOwnerN": "ab"},
			wantSQL: "SELECT Items.fItemID AS `Item`, fOwnerName AS `Owner` FROM Items LEFT JOIN Owner USING(fOwnerKEY) " +
				"WHERE Owner.fOwnerName REGEXP ? ORDER BY Items.fItemID DESC LIMIT 0, 20",
			wantArgs: []any{"^ab"},
			wantCols: []string{"Item", "Owner"},
		},
		{
			name:     "Enum restricted to one value hides its column",
			params:   core.Params{"fOwnerName": "On", "fSize": "On", "fOwnerKEY": "5"},
			wantSQL:  "SELECT Items.fItemID AS `Item`, fSize AS `Size` FROM Items WHERE Items.fOwnerKEY = ? ORDER BY Items.fItemID DESC LIMIT 0, 20",
			wantArgs: []any{int64(5)},
			wantCols: []string{"Item", "Size"},
		},
		{
			name:   "Enum grouping",
			params: core.Params{"fOwnerKEY": "-1"},
			wantSQL: "SELECT fOwnerName AS `Owner`, SUM(Items.fSize) AS `Total`, COUNT(*) AS `Count` " +
				"FROM Items LEFT JOIN Owner USING(fOwnerKEY) GROUP BY Items.fOwnerKEY LIMIT 0, 20",
			wantArgs: []any{},
			wantCols: []string{"Owner", "Total", "Count"},
		},
		{
			name:     "Explicit sort",
			params:   core.Params{"fSortBy": "fSize-"},
			wantSQL:  "SELECT Items.fItemID AS `Item` FROM Items ORDER BY fSize DESC LIMIT 0, 20",
			wantArgs: []any{},
			wantCols: []string{"Item"},
		},
		{
			name:     "Ascending sort on id",
			params:   core.Params{"fSortBy": "fItemID+"},
			wantSQL:  "SELECT Items.fItemID AS `Item` FROM Items ORDER BY Items.fItemID LIMIT 0, 20",
			wantArgs: []any{},
			wantCols: []string{"Item"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stmt := build(t, tc.params)
			assert.Equal(t, tc.wantSQL, stmt.SQL)
			assert.Equal(t, tc.wantArgs, stmt.Args)
			labels := make([]string, 0, len(stmt.Columns))
			for _, c := range stmt.Columns {
				labels = append(labels, c.Label)
			}
			assert.Equal(t, tc.wantCols, labels)
		})
	}
}

func TestBuild_WhereKeywordCount(t *testing.T) {
	params := core.Params{}
	for i, kv := range [][2]string{{"fSizeIs", "3"}, {"fOwnerN", "x"}, {"fOwnerKEY", "2"}} {
		params[kv[0]] = kv[1]
		stmt := build(t, params)
		assert.Equal(t, 1, strings.Count(stmt.SQL, "WHERE"))
		assert.Equal(t, i, strings.Count(stmt.SQL, " AND "), "predicates=%d", i+1)
	}
}

func TestBuild_SortTargets(t *testing.T) {
	testCases := []struct {
		name      string
		params    core.Params
		wantOrder string
	}{
		{"Shown step", core.Params{"fChecked": "On", "fSortBy": "fChecked-"}, "ORDER BY `Checked` DESC"},
		{"Group column", core.Params{"fOwnerKEY": "-1", "fSortBy": "fOwnerName"}, "ORDER BY `Owner`"},
		{"Group parameter", core.Params{"fOwnerKEY": "-1", "fSortBy": "fOwnerKEY-"}, "ORDER BY `Owner` DESC"},
		{"Aggregate", core.Params{"fOwnerKEY": "-1", "fSortBy": "Total-"}, "ORDER BY `Total` DESC"},
		{"Count", core.Params{"fCheckedStatus": "-1", "fSortBy": "Count-"}, "ORDER BY `Count` DESC"},
		{"Status group", core.Params{"fCheckedStatus": "-1", "fSortBy": "fChecked"}, "ORDER BY `Checked`"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stmt := build(t, tc.params)
			assert.True(t, strings.HasSuffix(stmt.SQL, " "+tc.wantOrder+" LIMIT 0, 20"), stmt.SQL)
		})
	}
}

func TestBuild_JoinOnce(t *testing.T) {
	stmt := build(t, core.Params{"fOwnerName": "On", "fOwnerN": "x", "fSortBy": "fOwnerName"})
	assert.Equal(t, 1, strings.Count(stmt.SQL, "LEFT JOIN Owner"))
}

func TestBuild_Paging(t *testing.T) {
	stmt := build(t, core.Params{"fNumStart": "20", "fNumResults": "10"})
	assert.True(t, strings.HasSuffix(stmt.SQL, " LIMIT 20, 10"))
	assert.False(t, stmt.Export)

	stmt = build(t, core.Params{"fNumStart": "20", "fNumResults": "10", "fSendTxt": "1"})
	assert.NotContains(t, stmt.SQL, "LIMIT")
	assert.True(t, stmt.Export)
}

func TestBuild_CountStatement(t *testing.T) {
	stmt := build(t, core.Params{"fSizeIs": "3", "fNumStart": "40"})
	assert.Equal(t,
		"SELECT COUNT(*) FROM (SELECT Items.fItemID AS `Item` FROM Items WHERE Items.fSize = ?) AS counted",
		stmt.CountSQL)
	assert.Equal(t, []any{int64(3)}, stmt.CountArgs)
}

func TestBuild_StatusStep(t *testing.T) {
	threshold := "2024-03-10 00:00:00"

	stmt := build(t, core.Params{"fChecked": "On", "fCheckedStatus": "failed"})
	assert.Equal(t, 2, strings.Count(stmt.SQL, "(CASE"))
	assert.Equal(t, 1, strings.Count(stmt.SQL, "LEFT JOIN ItemStatus"))
	assert.Contains(t, stmt.SQL, "END) AS `Checked`")
	assert.Contains(t, stmt.SQL, "END) = ?")
	assert.Equal(t, []any{threshold, threshold, "failed"}, stmt.Args)
	assert.Equal(t, "Checked", stmt.Columns[1].Label)

	stmt = build(t, core.Params{"fCheckedStatus": "-1"})
	assert.True(t, strings.HasPrefix(stmt.SQL, "SELECT (CASE"))
	assert.Contains(t, stmt.SQL, "GROUP BY `Checked`")
	assert.Equal(t, []any{threshold}, stmt.Args)
}

func TestNewRequest_Malformed(t *testing.T) {
	testCases := []struct {
		name   string
		params core.Params
	}{
		{"Half range", core.Params{"fMin": "1"}},
		{"Non numeric bound", core.Params{"fMin": "a", "fMax": "2"}},
		{"Non numeric equality", core.Params{"fSizeIs": "big"}},
		{"Unknown sort column", core.Params{"fSortBy": "fPassword-"}},
		{"Empty sort column", core.Params{"fSortBy": "-"}},
		{"Sort by hidden step", core.Params{"fSortBy": "fChecked-"}},
		{"Sort by aggregate without grouping", core.Params{"fSortBy": "Total-"}},
		{"Sort by count without grouping", core.Params{"fSortBy": "Count"}},
		{"Sort by row column when grouping", core.Params{"fOwnerKEY": "-1", "fSortBy": "fSize"}},
		{"Sort by id when grouping", core.Params{"fCheckedStatus": "-1", "fSortBy": "fItemID"}},
		{"Bad enum key", core.Params{"fOwnerKEY": "abc"}},
		{"Unknown status", core.Params{"fCheckedStatus": "lost"}},
		{"Negative offset", core.Params{"fNumStart": "-5"}},
		{"Page too large", core.Params{"fNumResults": "1000"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRequest(testPage(), tc.params, Options{Now: testNow, DefaultPageSize: 20, MaxPageSize: 100})
			assert.ErrorIs(t, err, ErrMalformedRequest)
		})
	}
}

func TestStatementDebug(t *testing.T) {
	stmt := build(t, core.Params{"fMin": "10000", "fMax": "20000", "fOwnerN": "O'Hara"})
	assert.Equal(t,
		"SELECT Items.fItemID AS `Item` FROM Items LEFT JOIN Owner USING(fOwnerKEY) "+
			"WHERE Items.fItemID BETWEEN 10000 AND 20000 AND Owner.fOwnerName REGEXP '^O''Hara' "+
			"ORDER BY Items.fItemID DESC LIMIT 0, 20",
		stmt.Debug())
}

func TestPageValidate(t *testing.T) {
	assert.NoError(t, testPage().Validate())

	p := testPage()
	p.Columns = append(p.Columns, Column{Key: "fColor", Joins: []string{"Paint"}})
	assert.Error(t, p.Validate())

	p = testPage()
	p.Status.Failed = ""
	assert.Error(t, p.Validate())

	process := &ProcessColumns{Start: "P.fStartTime", Stop: "P.fStopTime", ReturnCode: "P.fReturnCode", Available: "P.fAvailable"}
	p = testPage()
	p.Status = StatusColumns{}
	p.Steps = []StatusStep{{Key: "Checked", Process: process}}
	assert.NoError(t, p.Validate(), "process steps need no page status columns")

	p.Steps[0].Process = &ProcessColumns{Start: "P.fStartTime"}
	assert.Error(t, p.Validate())
}
