// internal/storage/plot_storage.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// PlotRange selects the sequences browsed on the plot pages. From and To are
// inclusive when both are given and exclusive when only one is. SourceKey 0
// means all sources.
type PlotRange struct {
	From      int
	To        int
	SourceKey int64
}

// PlotSequences returns the sequence numbers in r, ascending. An empty range yields none.
func PlotSequences(ctx context.Context, db *sql.DB, r PlotRange) ([]int, error) {
	sqlStatement := `SELECT fSequenceFirst FROM Sequences`
	var args []any
	switch {
	case r.From > 0 && r.To > 0:
		sqlStatement += ` WHERE fSequenceFirst BETWEEN ? AND ?`
		args = append(args, r.From, r.To)
	case r.From > 0:
		sqlStatement += ` WHERE fSequenceFirst > ?`
		args = append(args, r.From)
	case r.To > 0:
		sqlStatement += ` WHERE fSequenceFirst < ?`
		args = append(args, r.To)
	default:
		return []int{}, nil
	}
	if r.SourceKey > 0 {
		sqlStatement += ` AND fSourceKEY = ?`
		args = append(args, r.SourceKey)
	}
	sqlStatement += ` ORDER BY fSequenceFirst`

	rows, err := db.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to list plot sequences: %v", err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	seqs := make([]int, 0)
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("failed reading sequence number: %w", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return seqs, nil
}

// Sources returns all sources ordered by name.
func Sources(ctx context.Context, db *sql.DB) ([]domain.Source, error) {
	sqlStatement := `SELECT fSourceKEY, fSourceName FROM Source ORDER BY fSourceName`
	rows, err := db.QueryContext(ctx, sqlStatement)
	if err != nil {
		customLog.Warnf("Storage: Failed to list sources: %v", err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	sources := make([]domain.Source, 0)
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.Key, &src.Name); err != nil {
			return nil, fmt.Errorf("failed reading source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return sources, nil
}
