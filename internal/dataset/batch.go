// internal/dataset/batch.go
package dataset

import (
	"time"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// Values of DataSetSequenceMapping.fOnOff
const (
	MappingOn  = 1
	MappingOff = 2
)

const timestampLayout = "2006-01-02 15:04:05"

// BatchInput is everything BuildBatch needs besides the selection.
type BatchInput struct {
	Number  int64
	On      domain.SequenceStats
	Source  domain.RealSource
	ModeKey int64
	Now     time.Time
}

// BuildBatch returns the ordered statements that store sel as data set
// in.Number. An update rewrites the data set, clears its process status and
// replaces all sequence mappings; it keeps the owner.
func BuildBatch(sel Selection, in BatchInput) []domain.Exec {
	now := in.Now.Format(timestampLayout)
	// DataSets columns in insert order after fDataSetNumber
	values := []any{
		sel.UserKey, sel.Comment, in.ModeKey, sel.Name, in.Source.Key,
		in.On.RunStart, in.On.RunStop, in.On.ZenithDistanceMin, in.On.ZenithDistanceMax, in.On.RunTimeSum,
	}

	var stmts []domain.Exec
	if sel.Update > 0 {
		// values[0] is the user; an update must not change the owner
		stmts = append(stmts,
			domain.Exec{
				SQL: `UPDATE DataSets SET fComment = ?, fObservationModeKEY = ?, fDataSetName = ?,
		fSourceKEY = ?, fRunStart = ?, fRunStop = ?, fZenithDistanceMin = ?, fZenithDistanceMax = ?, fRunTime = ?
		WHERE fDataSetNumber = ?`,
				Args: append(append([]any{}, values[1:]...), in.Number),
			},
			domain.Exec{
				SQL: `UPDATE DataSetProcessStatus SET fDataSetInserted = ?, fDataSetFileWritten = NULL,
		fStarFilesAvail = NULL, fGanymed = NULL, fFillGanymed = NULL, fWebGanymed = NULL,
		fWebPlotDBGanymed = NULL, fStartTime = NULL, fFailedTime = NULL, fProgramId = NULL, fReturnCode = NULL
		WHERE fDataSetNumber = ?`,
				Args: []any{now, in.Number},
			},
			domain.Exec{
				SQL:  `DELETE FROM DataSetSequenceMapping WHERE fDataSetNumber = ?`,
				Args: []any{in.Number},
			},
		)
	} else {
		// New data sets start with only the insert timestamp set
		stmts = append(stmts,
			domain.Exec{
				SQL: `INSERT INTO DataSets (fDataSetNumber, fUserKEY, fComment, fObservationModeKEY, fDataSetName,
		fSourceKEY, fRunStart, fRunStop, fZenithDistanceMin, fZenithDistanceMax, fRunTime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				Args: append([]any{in.Number}, values...),
			},
			domain.Exec{
				SQL:  `INSERT INTO DataSetProcessStatus (fDataSetNumber, fDataSetInserted) VALUES (?, ?)`,
				Args: []any{in.Number, now},
			},
		)
	}

	// On sequences first, then off, each in selection order
	mapping := `INSERT INTO DataSetSequenceMapping (fDataSetNumber, fSequenceFirst, fOnOff) VALUES (?, ?, ?)`
	for _, seq := range sel.On {
		stmts = append(stmts, domain.Exec{SQL: mapping, Args: []any{in.Number, seq, MappingOn}})
	}
	for _, seq := range sel.Off {
		stmts = append(stmts, domain.Exec{SQL: mapping, Args: []any{in.Number, seq, MappingOff}})
	}
	return stmts
}
