// internal/storage/dataset_storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// placeholders returns "?, ?, ..." for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func intArgs(nums []int) []any {
	args := make([]any, len(nums))
	for i, n := range nums {
		args[i] = n
	}
	return args
}

func stringArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

const nextDataSetNumberSQL = `SELECT COALESCE(MAX(fDataSetNumber), 0) + 1 FROM DataSets`

// rowQuerier is implemented by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextDataSetNumber returns the highest data-set number plus one, or 1 for an empty table.
// The value is only a preview; ExecDataSetBatch allocates numbers.
func NextDataSetNumber(ctx context.Context, db *sql.DB) (int64, error) {
	return nextDataSetNumber(ctx, db, nextDataSetNumberSQL)
}

func nextDataSetNumber(ctx context.Context, q rowQuerier, sqlStatement string) (int64, error) {
	var next int64
	if err := q.QueryRowContext(ctx, sqlStatement).Scan(&next); err != nil {
		customLog.Warnf("Storage: Failed to get next data set number: %v", err)
		return 0, asQueryError(err, sqlStatement)
	}
	return next, nil
}

// SequenceStats aggregates the quality values of the given sequences.
func SequenceStats(ctx context.Context, db *sql.DB, sequences []int) (domain.SequenceStats, error) {
	var stats domain.SequenceStats
	if len(sequences) == 0 {
		return stats, ErrNoSequences
	}
	sqlStatement := `SELECT COUNT(*),
		MIN(Sequences.fRunTime)/60.0, MAX(Sequences.fRunTime)/60.0, SUM(Sequences.fRunTime)/60.0,
		MAX(Star.fInhomogeneity), MAX(Calibration.fUnsuitableInner), MAX(Calibration.fIsolatedInner),
		MAX(Calibration.fIsolatedMaxCluster), MIN(Calibration.fMeanPedRmsInner),
		MAX(Calibration.fMeanPedRmsInner), AVG(Calibration.fMeanPedRmsInner),
		MIN(Star.fNumStarsMed), MIN(Star.fNumStarsCorMed),
		MIN(Sequences.fZenithDistanceMin), MAX(Sequences.fZenithDistanceMax),
		MIN(Sequences.fRunStart), MAX(Sequences.fRunStop),
		AVG(Star.fDataRate), AVG(Star.fPSF), MIN(Star.fPSF), MAX(Star.fPSF)
		FROM Sequences
		LEFT JOIN Calibration USING(fSequenceFirst, fTelescopeNumber)
		LEFT JOIN Star USING(fSequenceFirst, fTelescopeNumber)
		WHERE Sequences.fSequenceFirst IN (` + placeholders(len(sequences)) + `)`

	var (
		floats     [18]sql.NullFloat64
		start, end any
	)
	dest := []any{&stats.Count}
	for i := 0; i < 14; i++ {
		dest = append(dest, &floats[i])
	}
	dest = append(dest, &start, &end)
	for i := 14; i < 18; i++ {
		dest = append(dest, &floats[i])
	}

	if err := db.QueryRowContext(ctx, sqlStatement, intArgs(sequences)...).Scan(dest...); err != nil {
		customLog.Warnf("Storage: Failed to aggregate sequence values: %v\nSQL: %s", err, sqlStatement)
		return stats, asQueryError(err, sqlStatement)
	}

	targets := []*float64{
		&stats.RunTimeMin, &stats.RunTimeMax, &stats.RunTimeSum,
		&stats.InhomogeneityMax, &stats.UnsuitableMax, &stats.IsolatedMax,
		&stats.IsolatedClusterMax, &stats.PedRmsMin, &stats.PedRmsMax, &stats.PedRmsAvg,
		&stats.NumStarsMin, &stats.NumStarsCorMin,
		&stats.ZenithDistanceMin, &stats.ZenithDistanceMax,
		&stats.DataRateAvg, &stats.PSFAvg, &stats.PSFMin, &stats.PSFMax,
	}
	for i, t := range targets {
		*t = floats[i].Float64
	}
	stats.RunStart = FormatCell(start)
	stats.RunStop = FormatCell(end)
	return stats, nil
}

// SourceNames returns the distinct source names of the given sequences.
func SourceNames(ctx context.Context, db *sql.DB, sequences []int) ([]string, error) {
	if len(sequences) == 0 {
		return []string{}, nil
	}
	sqlStatement := `SELECT DISTINCT Source.fSourceName FROM Sequences
		JOIN Source USING(fSourceKEY)
		WHERE Sequences.fSequenceFirst IN (` + placeholders(len(sequences)) + `)
		ORDER BY Source.fSourceName`
	return queryStrings(ctx, db, sqlStatement, intArgs(sequences)...)
}

// RealSources groups the named sources by their real source key. A source
// without a real key is reported with Key 0.
func RealSources(ctx context.Context, db *sql.DB, names []string) ([]domain.RealSource, error) {
	if len(names) == 0 {
		return []domain.RealSource{}, nil
	}
	sqlStatement := `SELECT fRealSourceKEY, MIN(fSourceName) FROM Source
		WHERE fSourceName IN (` + placeholders(len(names)) + `)
		GROUP BY fRealSourceKEY ORDER BY fRealSourceKEY`
	rows, err := db.QueryContext(ctx, sqlStatement, stringArgs(names)...)
	if err != nil {
		customLog.Warnf("Storage: Failed to look up real sources: %v", err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	sources := make([]domain.RealSource, 0)
	for rows.Next() {
		var (
			key  sql.NullInt64
			name string
		)
		if err := rows.Scan(&key, &name); err != nil {
			return nil, fmt.Errorf("failed reading real source: %w", err)
		}
		sources = append(sources, domain.RealSource{Key: key.Int64, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return sources, nil
}

// ObservationModeKey returns the key of the named observation mode, 0 if unknown.
func ObservationModeKey(ctx context.Context, db *sql.DB, name string) (int64, error) {
	var key int64
	sqlStatement := `SELECT fObservationModeKEY FROM ObservationMode WHERE fObservationModeName = ?`
	err := db.QueryRowContext(ctx, sqlStatement, name).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		customLog.Warnf("Storage: Failed to look up observation mode %s: %v", name, err)
		return 0, asQueryError(err, sqlStatement)
	}
	return key, nil
}

// ObservationModeKeys returns the distinct observation modes of the given sequences.
func ObservationModeKeys(ctx context.Context, db *sql.DB, sequences []int) ([]int64, error) {
	return sequenceKeys(ctx, db, "fObservationModeKEY", sequences)
}

// DiscriminatorTableKeys returns the distinct discriminator threshold tables of the given sequences.
func DiscriminatorTableKeys(ctx context.Context, db *sql.DB, sequences []int) ([]int64, error) {
	return sequenceKeys(ctx, db, "fDiscriminatorThresholdTableKEY", sequences)
}

// sequenceKeys is only called with fixed column names.
func sequenceKeys(ctx context.Context, db *sql.DB, column string, sequences []int) ([]int64, error) {
	keys := make([]int64, 0)
	if len(sequences) == 0 {
		return keys, nil
	}
	sqlStatement := `SELECT DISTINCT ` + column + ` FROM Sequences
		WHERE fSequenceFirst IN (` + placeholders(len(sequences)) + `) ORDER BY 1`
	rows, err := db.QueryContext(ctx, sqlStatement, intArgs(sequences)...)
	if err != nil {
		customLog.Warnf("Storage: Failed to read %s of sequences: %v", column, err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()
	for rows.Next() {
		var key sql.NullInt64
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed reading %s: %w", column, err)
		}
		keys = append(keys, key.Int64)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return keys, nil
}

// FindDataSet returns the stored description of a data set.
func FindDataSet(ctx context.Context, db *sql.DB, number int64) (*domain.DataSet, error) {
	sqlStatement := `SELECT fDataSetNumber, fUserKEY, fDataSetName, fComment, fSourceKEY, fObservationModeKEY,
		fRunStart, fRunStop, fZenithDistanceMin, fZenithDistanceMax, fRunTime
		FROM DataSets WHERE fDataSetNumber = ?`
	var (
		ds                 domain.DataSet
		name, comment      sql.NullString
		user, source, mode sql.NullInt64
		start, stop   any
		zdMin, zdMax  sql.NullFloat64
		runTime       sql.NullFloat64
	)
	err := db.QueryRowContext(ctx, sqlStatement, number).Scan(&ds.Number, &user, &name, &comment, &source, &mode,
		&start, &stop, &zdMin, &zdMax, &runTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDataSetNotFound
		}
		customLog.Warnf("Storage: Failed to read data set %d: %v", number, err)
		return nil, asQueryError(err, sqlStatement)
	}
	ds.UserKey = user.Int64
	ds.Name, ds.Comment = name.String, comment.String
	ds.SourceKey, ds.ObservationMode = source.Int64, mode.Int64
	ds.RunStart, ds.RunStop = FormatCell(start), FormatCell(stop)
	ds.ZenithDistanceMin, ds.ZenithDistanceMax = zdMin.Float64, zdMax.Float64
	ds.RunTime = runTime.Float64
	return &ds, nil
}

// DataSetSequences returns the on and off sequences mapped to a data set.
func DataSetSequences(ctx context.Context, db *sql.DB, number int64) (on, off []int, err error) {
	sqlStatement := `SELECT fSequenceFirst, fOnOff FROM DataSetSequenceMapping
		WHERE fDataSetNumber = ? ORDER BY fSequenceFirst`
	rows, err := db.QueryContext(ctx, sqlStatement, number)
	if err != nil {
		customLog.Warnf("Storage: Failed to read sequences of data set %d: %v", number, err)
		return nil, nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()
	on, off = []int{}, []int{}
	for rows.Next() {
		var seq, onOff int
		if err := rows.Scan(&seq, &onOff); err != nil {
			return nil, nil, fmt.Errorf("failed reading data set mapping: %w", err)
		}
		if onOff == 2 {
			off = append(off, seq)
		} else {
			on = append(on, seq)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, asQueryError(err, sqlStatement)
	}
	return on, off, nil
}

func queryStrings(ctx context.Context, db *sql.DB, sqlStatement string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		customLog.Warnf("Storage: Query failed: %v\nSQL: %s", err, sqlStatement)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed reading value: %w", err)
		}
		out = append(out, s.String)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return out, nil
}
