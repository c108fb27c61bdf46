// internal/catalog/sequences.go
package catalog

import "github.com/astro-datacenter/rundb/internal/query"

// Sequences lists calibration/analysis sequences with their processing state.
var Sequences = &query.Page{
	Name:  "sequences",
	Title: "Sequences",
	Table: "Sequences",
	ID:    query.Column{Key: "fSequenceFirst", Expr: "Sequences.fSequenceFirst", Alias: "Sequ", RightAlign: true},
	Joins: []query.Join{
		{Key: "Source", Clause: "LEFT JOIN Source USING(fSourceKEY)"},
		{Key: "Project", Clause: "LEFT JOIN Project USING(fProjectKEY)"},
		{Key: "ObservationMode", Clause: "LEFT JOIN ObservationMode USING(fObservationModeKEY)"},
		{Key: "LightConditions", Clause: "LEFT JOIN LightConditions USING(fLightConditionsKEY)"},
		{Key: "DiscriminatorThresholdTable", Clause: "LEFT JOIN DiscriminatorThresholdTable USING(fDiscriminatorThresholdTableKEY)"},
		{Key: "SequenceProcessStatus", Clause: "LEFT JOIN SequenceProcessStatus USING(fSequenceFirst, fTelescopeNumber)"},
		{Key: "Calibration", Clause: "LEFT JOIN Calibration USING(fSequenceFirst, fTelescopeNumber)"},
		{Key: "Star", Clause: "LEFT JOIN Star USING(fSequenceFirst, fTelescopeNumber)"},
	},
	BaseJoins: []string{"SequenceProcessStatus", "Calibration", "Star"},
	Columns: []query.Column{
		{Key: "fSequenceLast", Alias: "Last", RightAlign: true},
		{Key: "fSourceName", Alias: "Source", Joins: []string{"Source"}},
		{Key: "fProjectName", Alias: "Project", Joins: []string{"Project"}},
		{Key: "fObservationModeName", Alias: "ObsMode", Joins: []string{"ObservationMode"}},
		{Key: "fLightConditionsName", Alias: "Light", Joins: []string{"LightConditions"}},
		{Key: "fDiscriminatorThresholdTableName", Alias: "DT", Joins: []string{"DiscriminatorThresholdTable"}},
		{Key: "fRunStart", Expr: "Sequences.fRunStart", Alias: "Start"},
		{Key: "fRunTime", Expr: "Sequences.fRunTime/60.0", Alias: "Time [min]", RightAlign: true},
		{Key: "fNumEvents", Expr: "Sequences.fNumEvents", Alias: "#Evts", RightAlign: true},
		{Key: "fZenithDistanceMin", Alias: "ZdMin", RightAlign: true},
		{Key: "fZenithDistanceMax", Alias: "ZdMax", RightAlign: true},
		{Key: "fAzimuthMin", Alias: "AzMin", RightAlign: true},
		{Key: "fAzimuthMax", Alias: "AzMax", RightAlign: true},
		{Key: "fUnsuitableInner", Alias: "Unsuit", RightAlign: true},
		{Key: "fIsolatedInner", Alias: "Isolated", RightAlign: true},
		{Key: "fIsolatedMaxCluster", Alias: "IsoMaxCluster", RightAlign: true},
		{Key: "fMeanPedRmsInner", Alias: "PedRms", RightAlign: true},
		{Key: "fPSF", Alias: "PSF", RightAlign: true},
		{Key: "fDataRate", Alias: "Rate", RightAlign: true},
		{Key: "fNumStarsMed", Alias: "#Stars", RightAlign: true},
		{Key: "fNumStarsCorMed", Alias: "#CorStars", RightAlign: true},
		{Key: "fInhomogeneity", Alias: "Inhom", RightAlign: true},
		{Key: "fRelOnTime", Expr: "Star.fEffOnTime/Sequences.fRunTime", Alias: "RelOnTime", RightAlign: true},
	},
	Enums: []query.Enum{
		{Column: "fSourceName", Param: "fSourceKEY", Check: "Sequences.fSourceKEY"},
		{Column: "fProjectName", Param: "fProjectKEY", Check: "Sequences.fProjectKEY"},
		{Column: "fObservationModeName", Param: "fObservationModeKEY", Check: "Sequences.fObservationModeKEY"},
		{Column: "fLightConditionsName", Param: "fLightConditionsKEY", Check: "Sequences.fLightConditionsKEY"},
	},
	Steps: []query.StatusStep{
		{Key: "fSequenceFileWritten", Alias: "SequFile"},
		{Key: "fAllFilesAvail", Alias: "FilesAvail", Needs: "SequenceProcessStatus.fSequenceFileWritten"},
		{Key: "fCallisto", Alias: "Callisto", Needs: "SequenceProcessStatus.fAllFilesAvail"},
		{Key: "fFillCallisto", Alias: "FillCallisto", Needs: "SequenceProcessStatus.fCallisto"},
		{Key: "fStar", Alias: "Star", Needs: "SequenceProcessStatus.fCallisto"},
		{Key: "fFillStar", Alias: "FillStar", Needs: "SequenceProcessStatus.fStar"},
	},
	Status: query.StatusColumns{
		Start:  "SequenceProcessStatus.fStartTime",
		Failed: "SequenceProcessStatus.fFailedTime",
		Joins:  []string{"SequenceProcessStatus"},
	},
	Filters: []query.Filter{
		testFlag("Source.fTest"),
		query.Flag{Param: "fOff", Value: "Off", SQL: "NOT (Source.fSourceName LIKE ?)", Args: []any{"%Off%"}, Joins: []string{"Source"}},
		query.Flag{Param: "fOnlyOff", Value: "On", SQL: "Source.fSourceName LIKE ?", Args: []any{"%Off%"}, Joins: []string{"Source"}},
		query.Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "Sequences.fSequenceFirst"},
		query.Equality{Param: "fSequenceNo", Expr: "Sequences.fSequenceFirst", Numeric: true},
		query.Range{MinParam: "fZDMin", MaxParam: "fZDMax", Low: "Sequences.fZenithDistanceMin", High: "Sequences.fZenithDistanceMax"},
		query.Regexp{Param: "fSourceN", Expr: "Source.fSourceName", Anchor: true, Joins: []string{"Source"}},
		query.DateBound{Param: "fStartDate", Expr: "Sequences.fRunStart", Op: ">=", Clock: "13:00:00", DayOffset: -1},
		query.DateBound{Param: "fStopDate", Expr: "Sequences.fRunStart", Op: "<", Clock: "13:00:00"},
		query.DateBound{Param: "fStarStart", Expr: "SequenceProcessStatus.fStar", Op: ">=", Joins: []string{"SequenceProcessStatus"}},
		query.DateBound{Param: "fStarStop", Expr: "SequenceProcessStatus.fStar", Op: "<", Clock: "23:59:59", Joins: []string{"SequenceProcessStatus"}},
		query.IntList{Param: "fSequences", Expr: "Sequences.fSequenceFirst"},
		query.IntList{Param: "fExcludeSequences", Expr: "Sequences.fSequenceFirst", Not: true},
	},
	Aggregates: []query.Aggregate{
		{Expr: "SUM(Sequences.fRunTime)/3600.0", Alias: "Time [h]", RightAlign: true},
		{Expr: "SUM(Sequences.fNumEvents)", Alias: "Evts", RightAlign: true},
		{Expr: "MIN(Sequences.fZenithDistanceMin)", Alias: "Min Zd", RightAlign: true},
		{Expr: "MAX(Sequences.fZenithDistanceMax)", Alias: "Max Zd", RightAlign: true},
	},
	CountAlias:   "# Sequ",
	DefaultOrder: query.Order{Expr: "Sequences.fSequenceFirst", Desc: true},
}
