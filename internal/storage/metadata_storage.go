// internal/storage/metadata_storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/astro-datacenter/rundb/internal/domain"
	"github.com/astro-datacenter/rundb/internal/query"
)

// --- User Operations ---

// CreateUser inserts a new account and returns its id.
func CreateUser(ctx context.Context, db *sql.DB, name, passwordHash string) (int64, error) {
	sqlStatement := `INSERT INTO users (user_name, password_hash) VALUES (?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement, name, passwordHash)
	if err != nil {
		// user_name is UNIQUE in both schemas
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", name, err)
		return 0, fmt.Errorf("database error during user creation: %w", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		customLog.Warnf("Storage: Failed to get last insert ID for user %s: %v", name, err)
		return 0, fmt.Errorf("failed to retrieve user ID after creation: %w", err)
	}
	return userID, nil
}

// FindUserByName retrieves an account by its user name.
func FindUserByName(ctx context.Context, db *sql.DB, name string) (*domain.User, error) {
	sqlStatement := `SELECT user_id, user_name, password_hash, created_at FROM users WHERE user_name = ? LIMIT 1`
	row := db.QueryRowContext(ctx, sqlStatement, name)

	var (
		user    domain.User
		created any
	)
	err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user %s: %v", name, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	// SQLite hands back a time.Time, MySQL without parseTime a []byte
	user.CreatedAt = asTime(created)
	return &user, nil
}

// ListUsers returns all accounts ordered by name. Password hashes are not read.
func ListUsers(ctx context.Context, db *sql.DB) ([]domain.User, error) {
	sqlStatement := `SELECT user_id, user_name, created_at FROM users ORDER BY user_name`
	rows, err := db.QueryContext(ctx, sqlStatement)
	if err != nil {
		customLog.Warnf("Storage: Failed to list users: %v", err)
		return nil, fmt.Errorf("database error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			user    domain.User
			created any
		)
		if err := rows.Scan(&user.ID, &user.Name, &created); err != nil {
			customLog.Warnf("Storage: Failed to scan user row: %v", err)
			return nil, fmt.Errorf("database error reading users: %w", err)
		}
		user.CreatedAt = asTime(created)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating users: %v", err)
		return nil, fmt.Errorf("database error reading users: %w", err)
	}
	// Empty slice when no account exists yet, not an error
	return users, nil
}

// UpdatePassword replaces the password hash of an account.
// It returns ErrUserNotFound if no account has that name.
func UpdatePassword(ctx context.Context, db *sql.DB, name, passwordHash string) error {
	sqlStatement := `UPDATE users SET password_hash = ? WHERE user_name = ?`
	result, err := db.ExecContext(ctx, sqlStatement, passwordHash, name)
	if err != nil {
		customLog.Warnf("Storage: Failed to update password of user %s: %v", name, err)
		return fmt.Errorf("database error during password update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm password update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes an account. Data sets keep the numeric owner so that
// the account can not be re-created by name to take them over.
// It returns ErrUserNotFound if no account has that name.
func DeleteUser(ctx context.Context, db *sql.DB, name string) error {
	sqlStatement := `DELETE FROM users WHERE user_name = ?`
	result, err := db.ExecContext(ctx, sqlStatement, name)
	if err != nil {
		// Likely a connection issue, not "not found"
		customLog.Warnf("Storage: Error deleting user %s: %v", name, err)
		return fmt.Errorf("database error deleting user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		customLog.Warnf("Storage: Error getting RowsAffected for delete of user %s: %v", name, err)
		return fmt.Errorf("failed confirming user deletion: %w", err)
	}
	if rowsAffected == 0 {
		// No account with that name
		return ErrUserNotFound
	}
	return nil
}

// asTime accepts the representations drivers use for DATETIME columns.
// Unparseable values come back as the zero time.
func asTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case []byte:
		t, _ := time.Parse(query.TimestampLayout, string(x))
		return t
	case string:
		t, _ := time.Parse(query.TimestampLayout, x)
		return t
	}
	return time.Time{}
}
