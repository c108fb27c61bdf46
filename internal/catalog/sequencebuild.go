// internal/catalog/sequencebuild.go
package catalog

import (
	"time"

	"github.com/astro-datacenter/rundb/internal/query"
)

// SequenceBuild shows, per night, how far building the sequences got.
var SequenceBuild = &query.Page{
	Name:  "sequencebuild",
	Title: "Sequence Build Status",
	Table: "SequenceBuildStatus",
	ID:    query.Column{Key: "fDate", Expr: "SequenceBuildStatus.fDate", Alias: "Date"},
	Steps: []query.StatusStep{
		{Key: "fCCFilled", Alias: "CC Filled", TimeLimit: 12 * time.Hour},
		{Key: "fExclusionsDone", Alias: "Exclusions", Needs: "SequenceBuildStatus.fCCFilled", TimeLimit: 12 * time.Hour},
		{Key: "fSequenceEntriesBuilt", Alias: "Sequences", Needs: "SequenceBuildStatus.fExclusionsDone", TimeLimit: 12 * time.Hour},
	},
	Status: query.StatusColumns{
		Start:  "SequenceBuildStatus.fStartTime",
		Failed: "SequenceBuildStatus.fFailedTime",
	},
	Filters: []query.Filter{
		query.Range{MinParam: "fRunMin", MaxParam: "fRunMax", Low: "SequenceBuildStatus.fDate", Dates: true},
	},
	CountAlias:   "# days",
	DefaultOrder: query.Order{Expr: "SequenceBuildStatus.fDate"},
}
