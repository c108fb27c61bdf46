// internal/storage/batch_storage.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// ExecBatch runs stmts in order inside one transaction. Execution stops at
// the first failing statement; the transaction is then rolled back and the
// results so far, including the failing one, are returned with its error.
func ExecBatch(ctx context.Context, db *sql.DB, stmts []domain.Exec) ([]domain.ExecResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		customLog.Warnf("Storage: Failed to begin batch transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return execInTx(ctx, tx, stmts)
}

// DataSetBatch builds the statements of a data set given the next free
// data-set number. It returns the number the statements write.
type DataSetBatch func(next int64) (int64, []domain.Exec)

// ExecDataSetBatch reads the next free data-set number and runs the batch
// built for it in the same transaction, so two concurrent inserts cannot
// allocate the same number. On MySQL the read locks the end of the index;
// SQLite connections open their transactions immediate.
func ExecDataSetBatch(ctx context.Context, db *sql.DB, build DataSetBatch) (int64, []domain.ExecResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		customLog.Warnf("Storage: Failed to begin batch transaction: %v", err)
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	sqlStatement := nextDataSetNumberSQL
	if _, lite := db.Driver().(*sqlite3.SQLiteDriver); !lite {
		sqlStatement += " FOR UPDATE"
	}
	next, err := nextDataSetNumber(ctx, tx, sqlStatement)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			customLog.Warnf("Storage: Rollback failed: %v", rbErr)
		}
		return 0, nil, err
	}

	number, stmts := build(next)
	results, err := execInTx(ctx, tx, stmts)
	return number, results, err
}

// execInTx runs stmts and commits tx, or rolls it back at the first failure.
func execInTx(ctx context.Context, tx *sql.Tx, stmts []domain.Exec) ([]domain.ExecResult, error) {
	results := make([]domain.ExecResult, 0, len(stmts))
	for i, s := range stmts {
		res, err := tx.ExecContext(ctx, s.SQL, s.Args...)
		if err != nil {
			qerr := asQueryError(err, s.SQL)
			results = append(results, domain.ExecResult{SQL: s.SQL, Error: qerr.Error()})
			customLog.Warnf("Storage: Batch statement #%d failed, stop executing: %v\nSQL: %s", i, err, s.SQL)
			if rbErr := tx.Rollback(); rbErr != nil {
				customLog.Warnf("Storage: Rollback failed: %v", rbErr)
			}
			return results, qerr
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = -1
		}
		results = append(results, domain.ExecResult{SQL: s.SQL, RowsAffected: affected})
	}

	if err := tx.Commit(); err != nil {
		customLog.Warnf("Storage: Failed to commit batch: %v", err)
		return results, fmt.Errorf("failed to commit batch: %w", err)
	}
	return results, nil
}
