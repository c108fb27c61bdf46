// internal/storage/comment_storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/astro-datacenter/rundb/internal/domain"
)

// CommentKind selects the comment table: run comments or sequence comments.
type CommentKind string

const (
	RunComments      CommentKind = "runs"
	SequenceComments CommentKind = "sequences"
)

type commentTable struct {
	table    string
	idColumn string
}

var commentTables = map[CommentKind]commentTable{
	RunComments:      {table: "RunComments", idColumn: "fRunID"},
	SequenceComments: {table: "SequenceComments", idColumn: "fSequenceID"},
}

func lookupCommentTable(kind CommentKind) (commentTable, error) {
	t, ok := commentTables[kind]
	if !ok {
		return commentTable{}, fmt.Errorf("%w: '%s'", ErrUnknownCommentKey, kind)
	}
	return t, nil
}

// CommentFilter restricts a comment listing. Empty Night and zero Target match all.
type CommentFilter struct {
	Night  string
	Target int64
}

// ListComments returns comments ordered by night, target and key.
func ListComments(ctx context.Context, db *sql.DB, kind CommentKind, filter CommentFilter) ([]domain.Comment, error) {
	t, err := lookupCommentTable(kind)
	if err != nil {
		return nil, err
	}
	sqlStatement := `SELECT fCommentKEY, fNight, ` + t.idColumn + `, fComment, fUser FROM ` + t.table
	var (
		where []string
		args  []any
	)
	if filter.Night != "" {
		where = append(where, "fNight = ?")
		args = append(args, filter.Night)
	}
	if filter.Target > 0 {
		where = append(where, t.idColumn+" = ?")
		args = append(args, filter.Target)
	}
	for i, w := range where {
		if i == 0 {
			sqlStatement += " WHERE " + w
		} else {
			sqlStatement += " AND " + w
		}
	}
	sqlStatement += " ORDER BY fNight, " + t.idColumn + ", fCommentKEY"

	rows, err := db.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to list %s: %v", t.table, err)
		return nil, asQueryError(err, sqlStatement)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		var night any
		if err := rows.Scan(&c.Key, &night, &c.Target, &c.Comment, &c.User); err != nil {
			return nil, fmt.Errorf("failed reading comment: %w", err)
		}
		c.Night = FormatCell(night)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, asQueryError(err, sqlStatement)
	}
	return comments, nil
}

// InsertComment stores a new comment and returns its key.
func InsertComment(ctx context.Context, db *sql.DB, kind CommentKind, c domain.Comment) (int64, error) {
	t, err := lookupCommentTable(kind)
	if err != nil {
		return 0, err
	}
	sqlStatement := `INSERT INTO ` + t.table + ` (fNight, ` + t.idColumn + `, fComment, fUser) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement, c.Night, c.Target, c.Comment, c.User)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert comment into %s: %v", t.table, err)
		return 0, asQueryError(err, sqlStatement)
	}
	key, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve comment key after insert: %w", err)
	}
	return key, nil
}

// UpdateComment replaces the text of the comment of (night, target) that
// currently reads oldComment. The author is set to c.User.
func UpdateComment(ctx context.Context, db *sql.DB, kind CommentKind, c domain.Comment, oldComment string) error {
	t, err := lookupCommentTable(kind)
	if err != nil {
		return err
	}
	lookupSQL := `SELECT fCommentKEY FROM ` + t.table + ` WHERE fNight = ? AND ` + t.idColumn + ` = ? AND fComment = ? ORDER BY fCommentKEY`
	var key int64
	err = db.QueryRowContext(ctx, lookupSQL, c.Night, c.Target, oldComment).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		}
		customLog.Warnf("Storage: Failed to look up comment in %s: %v", t.table, err)
		return asQueryError(err, lookupSQL)
	}

	updateSQL := `UPDATE ` + t.table + ` SET fComment = ?, fUser = ? WHERE fCommentKEY = ?`
	if _, err := db.ExecContext(ctx, updateSQL, c.Comment, c.User, key); err != nil {
		customLog.Warnf("Storage: Failed to update comment %d in %s: %v", key, t.table, err)
		return asQueryError(err, updateSQL)
	}
	return nil
}
