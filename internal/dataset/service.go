// internal/dataset/service.go
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/astro-datacenter/rundb/internal/domain"
	"github.com/astro-datacenter/rundb/internal/logger"
	"github.com/astro-datacenter/rundb/internal/storage"
)

var customLog = logger.NewLogger()

// Gather reads the database values a selection is checked against.
func Gather(ctx context.Context, db *sql.DB, sel Selection) (Report, error) {
	var rep Report
	var err error
	// Nothing to look up; Check reports the missing on sequences
	if len(sel.On) == 0 {
		return rep, nil
	}
	if rep.On, err = storage.SequenceStats(ctx, db, sel.On); err != nil {
		return rep, err
	}
	if len(sel.Off) > 0 {
		if rep.Off, err = storage.SequenceStats(ctx, db, sel.Off); err != nil {
			return rep, err
		}
	}
	if rep.ModeKey, err = storage.ObservationModeKey(ctx, db, sel.Mode()); err != nil {
		return rep, err
	}
	if rep.OnModeKeys, err = storage.ObservationModeKeys(ctx, db, sel.On); err != nil {
		return rep, err
	}
	if rep.OnDTKeys, err = storage.DiscriminatorTableKeys(ctx, db, sel.On); err != nil {
		return rep, err
	}
	if rep.OnSourceNames, err = storage.SourceNames(ctx, db, sel.On); err != nil {
		return rep, err
	}
	// Resolve the source names to their real sources
	if rep.RealSources, err = storage.RealSources(ctx, db, rep.OnSourceNames); err != nil {
		return rep, err
	}
	return rep, nil
}

// Outcome is the result of Store.
type Outcome struct {
	Number  int64               `json:"number"`
	Check   Result              `json:"check"`
	Results []domain.ExecResult `json:"results,omitempty"`
}

// Store checks sel and, when no check fails, writes it in one batch.
// The batch is not run when the check reports errors. Only the user who
// created a data set may update it.
func Store(ctx context.Context, db *sql.DB, sel Selection, now time.Time) (*Outcome, error) {
	// Ownership is checked before anything else is read
	if sel.Update > 0 {
		ds, err := storage.FindDataSet(ctx, db, sel.Update)
		if err != nil {
			return nil, err
		}
		if ds.UserKey != sel.UserKey {
			customLog.Warnf("Dataset: User %d tried to update data set %d of user %d", sel.UserKey, ds.Number, ds.UserKey)
			return nil, fmt.Errorf("data set %d: %w", ds.Number, storage.ErrNotOwner)
		}
	}
	rep, err := Gather(ctx, db, sel)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Check: Check(sel, rep)}
	if !out.Check.OK() {
		// A failed check is a result, not an error
		return out, nil
	}

	source, _ := rep.RealSource()
	// The number is allocated inside the batch transaction
	out.Number, out.Results, err = storage.ExecDataSetBatch(ctx, db, func(next int64) (int64, []domain.Exec) {
		number := sel.Number(next)
		return number, BuildBatch(sel, BatchInput{
			Number:  number,
			On:      rep.On,
			Source:  source,
			ModeKey: rep.ModeKey,
			Now:     now,
		})
	})
	if err != nil {
		return out, err
	}
	customLog.Printf("Dataset: Stored data set %d (%s) with %d on and %d off sequences", out.Number, sel.Name, len(sel.On), len(sel.Off))
	return out, nil
}

// LoadFile renders the data-set file of a stored data set.
func LoadFile(ctx context.Context, db *sql.DB, number int64) (string, error) {
	ds, err := storage.FindDataSet(ctx, db, number)
	if err != nil {
		return "", err
	}
	on, off, err := storage.DataSetSequences(ctx, db, number)
	if err != nil {
		return "", err
	}
	names, err := storage.SourceNames(ctx, db, on)
	if err != nil {
		return "", err
	}
	sources, err := storage.RealSources(ctx, db, names)
	if err != nil {
		return "", err
	}
	// A stored data set always has on sequences; none left means they were deleted
	if len(sources) == 0 {
		return "", fmt.Errorf("data set %d: %w", number, storage.ErrNoSequences)
	}
	return File(FileInput{
		On:         on,
		Off:        off,
		SourceName: sources[0].Name,
		RunTime:    ds.RunTime,
		Name:       ds.Name,
		Comment:    ds.Comment,
	}), nil
}
