// internal/catalog/datasets.go
package catalog

import "github.com/astro-datacenter/rundb/internal/query"

// DataSets lists the data sets built from sequences and their analysis state.
var DataSets = &query.Page{
	Name:  "datasets",
	Title: "Data Sets",
	Table: "DataSets",
	ID:    query.Column{Key: "fDataSetNumber", Expr: "DataSets.fDataSetNumber", Alias: "DataSet", RightAlign: true},
	Joins: []query.Join{
		{Key: "Source", Clause: "LEFT JOIN Source USING(fSourceKEY)"},
		{Key: "ObservationMode", Clause: "LEFT JOIN ObservationMode USING(fObservationModeKEY)"},
		{Key: "DataSetProcessStatus", Clause: "LEFT JOIN DataSetProcessStatus USING(fDataSetNumber)"},
	},
	Columns: []query.Column{
		{Key: "fDataSetName", Alias: "Name"},
		{Key: "fComment", Expr: "DataSets.fComment", Alias: "Comment"},
		{Key: "fSourceName", Alias: "Source", Joins: []string{"Source"}},
		{Key: "fObservationModeName", Alias: "ObsMode", Joins: []string{"ObservationMode"}},
		{Key: "fRunStart", Expr: "DataSets.fRunStart", Alias: "Start"},
		{Key: "fRunStop", Expr: "DataSets.fRunStop", Alias: "Stop"},
		{Key: "fZenithDistanceMin", Expr: "DataSets.fZenithDistanceMin", Alias: "ZdMin", RightAlign: true},
		{Key: "fZenithDistanceMax", Expr: "DataSets.fZenithDistanceMax", Alias: "ZdMax", RightAlign: true},
		{Key: "fRunTime", Expr: "DataSets.fRunTime", Alias: "Time [min]", RightAlign: true},
	},
	Enums: []query.Enum{
		{Column: "fSourceName", Param: "fSourceKEY", Check: "DataSets.fSourceKEY"},
		{Column: "fObservationModeName", Param: "fObservationModeKEY", Check: "DataSets.fObservationModeKEY"},
	},
	Steps: []query.StatusStep{
		{Key: "fDataSetFileWritten", Alias: "DSFile"},
		{Key: "fStarFilesAvail", Alias: "StarFiles", Needs: "DataSetProcessStatus.fDataSetFileWritten"},
		{Key: "fGanymed", Alias: "Ganymed", Needs: "DataSetProcessStatus.fStarFilesAvail"},
		{Key: "fFillGanymed", Alias: "FillGanymed", Needs: "DataSetProcessStatus.fGanymed"},
	},
	Status: query.StatusColumns{
		Start:  "DataSetProcessStatus.fStartTime",
		Failed: "DataSetProcessStatus.fFailedTime",
		Joins:  []string{"DataSetProcessStatus"},
	},
	Filters: []query.Filter{
		query.Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "DataSets.fDataSetNumber"},
		query.Regexp{Param: "fSourceN", Expr: "Source.fSourceName", Anchor: true, Joins: []string{"Source"}},
		query.Regexp{Param: "fNameN", Expr: "DataSets.fDataSetName"},
	},
	Aggregates: []query.Aggregate{
		{Expr: "SUM(DataSets.fRunTime)/60.0", Alias: "Time [h]", RightAlign: true},
	},
	CountAlias:   "# DataSets",
	DefaultOrder: query.Order{Expr: "DataSets.fDataSetNumber", Desc: true},
}
