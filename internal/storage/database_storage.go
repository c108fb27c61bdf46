// internal/storage/database_storage.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// SQLiteDriver is the sqlite3 driver with the REGEXP function registered.
const SQLiteDriver = "sqlite3_rundb"

// maxPatterns bounds the cache of compiled REGEXP patterns.
const maxPatterns = 64

var patterns = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", regexpMatch, true)
		},
	})
}

// regexpMatch implements "value REGEXP pattern"; SQLite passes the pattern
// first. NULL never matches.
func regexpMatch(pattern string, value any) (bool, error) {
	var s string
	switch v := value.(type) {
	case nil:
		return false, nil
	case string:
		s = v
	case []byte:
		if v == nil {
			return false, nil
		}
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// compilePattern returns the compiled pattern from the cache. The cache is
// emptied once it holds maxPatterns entries.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	patterns.Lock()
	defer patterns.Unlock()
	if re, ok := patterns.m[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if len(patterns.m) >= maxPatterns {
		patterns.m = make(map[string]*regexp.Regexp)
	}
	patterns.m[pattern] = re
	return re, nil
}

// Connect opens the configured database and verifies the connection.
func Connect(cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		customLog.Printf("Storage: Connecting to MySQL database")
		db, err = sql.Open("mysql", cfg.DBDSN)
	case config.DriverSQLite:
		dbPath := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
		customLog.Printf("Storage: Initializing SQLite database: %s", dbPath)
		if err := os.MkdirAll(cfg.DatabaseDir, 0o750); err != nil {
			customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.DatabaseDir, err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.DBDriver)
	}
	if err != nil {
		customLog.Warnf("Storage: Failed to open database: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping database: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	customLog.Println("Storage: Database connection successful.")
	return db, nil
}

// OpenSQLite opens a SQLite file with WAL mode and a busy timeout.
// Transactions take the write lock when they begin.
func OpenSQLite(path string) (*sql.DB, error) {
	return sql.Open(SQLiteDriver, path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
}

// EnsureSchema creates the tables the service writes to. On SQLite the
// data-center tables are created as well, so a fresh file is usable for
// development and tests.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	statements := mysqlSchema
	if driver == config.DriverSQLite {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			customLog.Warnf("Storage: Failed to ensure schema: %v\nSQL: %s", err, stmt)
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	customLog.Println("Storage: Schema ensured.")
	return nil
}
