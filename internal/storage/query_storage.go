// internal/storage/query_storage.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/astro-datacenter/rundb/internal/query"
)

// Result is a rendered query result: string cells in output order plus the
// total number of matching rows regardless of pagination.
type Result struct {
	Columns []query.ColumnMeta
	Rows    [][]string
	Total   int64
}

// RunQuery executes the count statement and the page statement of stmt.
func RunQuery(ctx context.Context, db *sql.DB, stmt query.Statement) (*Result, error) {
	res := &Result{Columns: stmt.Columns, Rows: make([][]string, 0)}

	if err := db.QueryRowContext(ctx, stmt.CountSQL, stmt.CountArgs...).Scan(&res.Total); err != nil {
		customLog.Warnf("Storage: Failed count query: %v\nSQL: %s", err, stmt.CountSQL)
		return nil, asQueryError(err, stmt.CountSQL)
	}

	customLog.Debugf("Storage: Executing page query: %s | Args: %v", stmt.SQL, stmt.Args)
	rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		customLog.Warnf("Storage: Failed page query: %v\nSQL: %s", err, stmt.SQL)
		return nil, asQueryError(err, stmt.SQL)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed processing results: %w", err)
	}
	numColumns := len(columns)

	for rows.Next() {
		scanArgs := make([]any, numColumns)
		values := make([]any, numColumns)
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			customLog.Warnf("Storage: Failed scanning result row: %v", err)
			return nil, fmt.Errorf("failed reading result row: %w", err)
		}
		cells := make([]string, numColumns)
		for i, v := range values {
			cells[i] = FormatCell(v)
		}
		res.Rows = append(res.Rows, cells)
	}
	if err = rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating result rows: %v", err)
		return nil, asQueryError(err, stmt.SQL)
	}
	return res, nil
}

// FormatCell renders a scanned value the way it is displayed. NULL is "".
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format(query.TimestampLayout)
	default:
		return fmt.Sprint(x)
	}
}
