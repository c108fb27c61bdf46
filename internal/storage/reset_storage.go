// internal/storage/reset_storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/astro-datacenter/rundb/internal/query"
)

// ResetStep selects which processing state of a sequence is cleared.
type ResetStep string

const (
	// ResetCrashed clears failed runs and runs started more than a day ago.
	ResetCrashed ResetStep = ""
	// ResetCallisto clears calibration and everything after it where it predates the latest Mars version.
	ResetCallisto ResetStep = "callisto"
	// ResetStar clears the star step where it predates the latest Mars version.
	ResetStar ResetStep = "star"
)

// ErrNoMarsVersion is returned when an outdated reset is requested without a Mars version in the database.
var ErrNoMarsVersion = errors.New("no mars version available")

// MarsVersion is the latest analysis software release.
type MarsVersion struct {
	Name      string
	StartDate string
}

// LatestMarsVersion returns the newest Mars version.
func LatestMarsVersion(ctx context.Context, db *sql.DB) (*MarsVersion, error) {
	sqlStatement := `SELECT fMarsVersionName, fStartDate FROM MarsVersion ORDER BY fMarsVersion DESC LIMIT 1`
	var (
		v     MarsVersion
		start any
	)
	err := db.QueryRowContext(ctx, sqlStatement).Scan(&v.Name, &start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMarsVersion
		}
		customLog.Warnf("Storage: Failed to read latest Mars version: %v", err)
		return nil, asQueryError(err, sqlStatement)
	}
	v.StartDate = FormatCell(start)
	return &v, nil
}

// ResetSequences clears the processing state of the given sequences so they
// are picked up again, and returns the number of rows changed.
func ResetSequences(ctx context.Context, db *sql.DB, step ResetStep, sequences []int, now time.Time) (int64, error) {
	if len(sequences) == 0 {
		return 0, ErrNoSequences
	}

	var (
		set   string
		where string
		args  []any
	)
	switch step {
	case ResetCallisto, ResetStar:
		version, err := LatestMarsVersion(ctx, db)
		if err != nil {
			return 0, err
		}
		if step == ResetCallisto {
			set = "fCallisto=NULL, fFillCallisto=NULL, fStar=NULL, fFillStar=NULL, "
			where = "fCallisto < ?"
		} else {
			set = "fStar=NULL, fFillStar=NULL, "
			where = "fStar < ?"
		}
		args = append(args, version.StartDate)
	case ResetCrashed:
		where = "(fFailedTime IS NOT NULL OR fStartTime < ?)"
		args = append(args, now.AddDate(0, 0, -1).Format(query.TimestampLayout))
	default:
		return 0, fmt.Errorf("unknown reset step '%s'", step)
	}

	sqlStatement := `UPDATE SequenceProcessStatus SET ` + set +
		`fStartTime=NULL, fFailedTime=NULL, fProgramId=NULL, fReturnCode=NULL WHERE ` + where +
		` AND fSequenceFirst IN (` + placeholders(len(sequences)) + `)`
	args = append(args, intArgs(sequences)...)

	result, err := db.ExecContext(ctx, sqlStatement, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to reset sequences: %v\nSQL: %s", err, sqlStatement)
		return 0, asQueryError(err, sqlStatement)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	customLog.Printf("Storage: Reset %d sequence status rows (step '%s')", affected, step)
	return affected, nil
}

// Reset states of one processing step, as shown before a reset.
const (
	StepOutdated = "outdated"
	StepUpToDate = "up to date"
	StepRunning  = "running"
	StepReset    = "already resetted"
	StepCrashed  = "crashed or failed"
)

// StepState is the reset state of one step of a sequence. Version names the
// Mars version the step was processed with, or the current one for steps
// that are up to date or running.
type StepState struct {
	State   string `json:"state"`
	Version string `json:"version,omitempty"`
}

// ResetState describes a sequence ahead of a reset.
type ResetState struct {
	Sequence int       `json:"sequence"`
	Project  string    `json:"project"`
	RunStart string    `json:"run_start"`
	Callisto StepState `json:"callisto"`
	Star     StepState `json:"star"`
	// Marked is set when a reset of the requested step would change the sequence.
	Marked bool `json:"marked"`
}

// marsVersions returns all Mars versions, newest first.
func marsVersions(ctx context.Context, db *sql.DB) ([]MarsVersion, error) {
	sqlStatement := `SELECT fMarsVersionName, fStartDate FROM MarsVersion ORDER BY fMarsVersion DESC`
	rows, err := db.QueryContext(ctx, sqlStatement)
	if err != nil {
		customLog.Warnf("Storage: Failed to read Mars versions: %v", err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	var versions []MarsVersion
	for rows.Next() {
		var (
			v     MarsVersion
			start any
		)
		if err := rows.Scan(&v.Name, &start); err != nil {
			return nil, asQueryError(err, sqlStatement)
		}
		v.StartDate = FormatCell(start)
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	if len(versions) == 0 {
		return nil, ErrNoMarsVersion
	}
	return versions, nil
}

// processedWith names the newest version released before done.
func processedWith(versions []MarsVersion, done string) string {
	for _, v := range versions {
		if done > v.StartDate {
			return v.Name
		}
	}
	return ""
}

// stepTimes are the status columns of one sequence, formatted as timestamps.
type stepTimes struct {
	done, started, failed string
	blocked               bool // the step cannot run yet
}

// classifyStep derives the reset state of one step. A step is outdated when
// it was done before the latest version was released.
func classifyStep(versions []MarsVersion, t stepTimes, dayAgo string) StepState {
	latest := versions[0]
	switch {
	case t.done != "" && t.done < latest.StartDate:
		return StepState{State: StepOutdated, Version: processedWith(versions, t.done)}
	case t.done != "":
		return StepState{State: StepUpToDate, Version: latest.Name}
	case t.started != "" && t.started > dayAgo && t.failed == "" && !t.blocked:
		return StepState{State: StepRunning, Version: latest.Name}
	case t.failed == "":
		return StepState{State: StepReset}
	default:
		return StepState{State: StepCrashed}
	}
}

// PreviewReset reports for each known sequence of the list what a reset of
// step would find. Unknown sequence numbers are left out.
func PreviewReset(ctx context.Context, db *sql.DB, step ResetStep, sequences []int, now time.Time) ([]ResetState, error) {
	if len(sequences) == 0 {
		return nil, ErrNoSequences
	}
	if step != ResetCrashed && step != ResetCallisto && step != ResetStar {
		return nil, fmt.Errorf("unknown reset step '%s'", step)
	}
	versions, err := marsVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	sqlStatement := `SELECT SequenceProcessStatus.fSequenceFirst, fCallisto, fStar, fStartTime, fFailedTime,
		fProjectName, fRunStart
		FROM SequenceProcessStatus
		LEFT JOIN Sequences USING(fSequenceFirst, fTelescopeNumber)
		LEFT JOIN Project USING(fProjectKEY)
		WHERE SequenceProcessStatus.fSequenceFirst IN (` + placeholders(len(sequences)) + `)
		ORDER BY SequenceProcessStatus.fSequenceFirst`
	rows, err := db.QueryContext(ctx, sqlStatement, intArgs(sequences)...)
	if err != nil {
		customLog.Warnf("Storage: Failed to read reset preview: %v\nSQL: %s", err, sqlStatement)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	dayAgo := now.AddDate(0, 0, -1).Format(query.TimestampLayout)
	states := []ResetState{}
	for rows.Next() {
		var (
			s                                         ResetState
			callisto, star, started, failed, runStart any
			project                                   sql.NullString
		)
		if err := rows.Scan(&s.Sequence, &callisto, &star, &started, &failed, &project, &runStart); err != nil {
			return nil, asQueryError(err, sqlStatement)
		}
		s.Project, s.RunStart = project.String, FormatCell(runStart)

		cal := stepTimes{done: FormatCell(callisto), started: FormatCell(started), failed: FormatCell(failed)}
		s.Callisto = classifyStep(versions, cal, dayAgo)
		st := cal
		st.done = FormatCell(star)
		st.blocked = cal.done == ""
		s.Star = classifyStep(versions, st, dayAgo)

		switch step {
		case ResetCallisto:
			s.Marked = s.Callisto.State == StepOutdated
		case ResetStar:
			s.Marked = s.Star.State == StepOutdated
		default:
			s.Marked = s.Callisto.State == StepCrashed || s.Star.State == StepCrashed
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return states, nil
}
