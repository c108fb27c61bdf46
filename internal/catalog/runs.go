// internal/catalog/runs.go
package catalog

import "github.com/astro-datacenter/rundb/internal/query"

// Runs lists raw data runs and their data-check state.
var Runs = &query.Page{
	Name:  "runs",
	Title: "Runs",
	Table: "RunData",
	ID:    query.Column{Key: "fRunNumber", Expr: "RunData.fRunNumber", Alias: "Run", RightAlign: true},
	Joins: []query.Join{
		{Key: "RunType", Clause: "LEFT JOIN RunType USING(fRunTypeKEY)"},
		{Key: "Source", Clause: "LEFT JOIN Source USING(fSourceKEY)"},
		{Key: "RunProcessStatus", Clause: "LEFT JOIN RunProcessStatus USING(fRunNumber, fTelescopeNumber)"},
	},
	Columns: []query.Column{
		{Key: "fRunTypeName", Alias: "RunType", Joins: []string{"RunType"}},
		{Key: "fSourceName", Alias: "Source", Joins: []string{"Source"}},
		{Key: "fSequenceFirst", Expr: "RunData.fSequenceFirst", Alias: "Sequ", RightAlign: true},
		{Key: "fRunStart", Expr: "RunData.fRunStart", Alias: "start"},
		{Key: "fRunStop", Expr: "RunData.fRunStop", Alias: "stop"},
		{Key: "fNumEvents", Expr: "RunData.fNumEvents", Alias: "#Evts", RightAlign: true},
		{Key: "fZenithDistance", Alias: "Zd", RightAlign: true},
		{Key: "fAzimuth", Alias: "Az", RightAlign: true},
		{Key: "fROI", Alias: "roi", RightAlign: true},
		{Key: "fLastUpdate", Expr: "RunData.fLastUpdate", Alias: "LastUpd"},
	},
	Enums: []query.Enum{
		{Column: "fRunTypeName", Param: "fRunTypeKEY", Check: "RunData.fRunTypeKEY"},
		{Column: "fSourceName", Param: "fSourceKEY", Check: "RunData.fSourceKEY"},
	},
	Steps: []query.StatusStep{
		{Key: "fRawFileAvail", Alias: "RawFile"},
		{Key: "fDataCheckDone", Alias: "DataCheck", Needs: "RunProcessStatus.fRawFileAvail"},
	},
	Status: query.StatusColumns{
		Start:  "RunProcessStatus.fStartTime",
		Failed: "RunProcessStatus.fFailedTime",
		Joins:  []string{"RunProcessStatus"},
	},
	Filters: []query.Filter{
		testFlag("Source.fTest"),
		query.Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "RunData.fRunNumber"},
		query.Equality{Param: "fSequenceNo", Expr: "RunData.fSequenceFirst", Numeric: true},
		query.Range{MinParam: "fZDMin", MaxParam: "fZDMax", Low: "RunData.fZenithDistance"},
		query.Regexp{Param: "fSourceN", Expr: "Source.fSourceName", Anchor: true, Joins: []string{"Source"}},
		query.DateBound{Param: "fStartDate", Expr: "RunData.fRunStart", Op: ">=", Clock: "13:00:00", DayOffset: -1},
		query.DateBound{Param: "fStopDate", Expr: "RunData.fRunStart", Op: "<", Clock: "13:00:00"},
	},
	Aggregates: []query.Aggregate{
		{Expr: "SUM(RunData.fNumEvents)", Alias: "Evts", RightAlign: true},
		{Expr: "MIN(RunData.fZenithDistance)", Alias: "Min Zd", RightAlign: true},
		{Expr: "MAX(RunData.fZenithDistance)", Alias: "Max Zd", RightAlign: true},
	},
	CountAlias:   "#Runs",
	DefaultOrder: query.Order{Expr: "RunData.fRunNumber", Desc: true},
}
