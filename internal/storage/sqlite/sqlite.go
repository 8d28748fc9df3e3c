// Package sqlite provides the SQLite backend of storage.Storage.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. The SQL itself lives in package sqldb; this package opens the
// file, turns on foreign keys and supplies the SQLite DDL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/cantina-api/internal/config"
	"github.com/aanand-mishra/cantina-api/internal/storage/sqldb"
)

// driverName is go-sqlite3 with unicode_lower registered on every
// connection. SQLite's own LOWER only folds ASCII, so "Ângela" would never
// match a search for "ângela".
const driverName = "sqlite3_cantina"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// Dialect is the SQLite flavour of the schema.
//
// consumptions.student_id cascades on delete; consumptions.product_id is
// RESTRICT so a product with history cannot be removed.
var Dialect = sqldb.Dialect{
	Name:  "sqlite",
	Lower: "unicode_lower",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS students (
			id            INTEGER      PRIMARY KEY AUTOINCREMENT,
			full_name     VARCHAR(100) NOT NULL,
			classroom     VARCHAR(20)  NOT NULL,
			registered_at DATETIME     DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id            INTEGER      PRIMARY KEY AUTOINCREMENT,
			name          VARCHAR(100) NOT NULL,
			price         REAL         NOT NULL,
			active        BOOLEAN      NOT NULL DEFAULT 1,
			registered_at DATETIME     DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS consumptions (
			id          INTEGER  PRIMARY KEY AUTOINCREMENT,
			student_id  INTEGER  NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			product_id  INTEGER  NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			quantity    INTEGER  NOT NULL DEFAULT 1,
			unit_price  REAL     NOT NULL,
			consumed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_student ON consumptions (student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_product ON consumptions (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_consumed_at ON consumptions (consumed_at)`,
	},
}

// New opens the SQLite database at cfg.Storage.Path, creates the tables if
// they do not already exist, and returns a ready-to-use store.
func New(cfg *config.Config) (*sqldb.Store, error) {
	return Open(cfg.Storage.Path)
}

// Open is New for callers that only have a file path, such as tests.
func Open(path string) (*sqldb.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
	}

	// SQLite ignores foreign keys unless asked per connection; the DSN
	// parameter applies it to every connection in the pool.
	db, err := sql.Open(driverName, "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	store := sqldb.New(db, Dialect)
	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return store, nil
}
