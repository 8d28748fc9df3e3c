// Package sqldb implements storage.Storage on top of database/sql.
//
// The SQL is written once with ? placeholders and rewritten for the target
// engine by a Dialect, so the sqlite and postgres packages only have to
// open a connection and supply their DDL.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// Dialect describes the differences between database engines.
type Dialect struct {
	// Name is used in log and error messages.
	Name string

	// Schema is executed statement by statement by Migrate.
	// Every statement must be idempotent (CREATE ... IF NOT EXISTS).
	Schema []string

	// NumberedPlaceholders rewrites ? into $1, $2, ... (PostgreSQL).
	NumberedPlaceholders bool

	// ReturningID makes inserts use "RETURNING id" instead of
	// sql.Result.LastInsertId, which pgx does not support.
	ReturningID bool

	// Lower is the SQL function that lowercases a column for name
	// filters. It must agree with strings.ToLower on non-ASCII letters.
	// Empty means LOWER.
	Lower string
}

// ContainsFold returns a condition matching rows whose column contains
// the bound argument, ignoring case. Bind the argument with
// containsPattern.
func (d Dialect) ContainsFold(column string) string {
	lower := d.Lower
	if lower == "" {
		lower = "LOWER"
	}
	return lower + "(" + column + `) LIKE ? ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern lowercases s and escapes the LIKE wildcards in it.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// Rebind rewrites a query written with ? placeholders for this dialect.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Store is the database/sql implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type Store struct {
	Db      *sql.DB
	dialect Dialect

	// now is replaced in tests.
	now func() time.Time
}

// New wraps an open database. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{Db: db, dialect: dialect, now: time.Now}
}

// Migrate creates the students, products and consumptions tables if they
// do not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.Db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Migrate(%s): %w", s.dialect.Name, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.Db.Close()
}

// timestamp normalises t for storage: UTC, microsecond precision (the
// resolution of PostgreSQL timestamps). A zero t means "now".
func (s *Store) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

// prepare compiles query (rewritten for the dialect) on q.
func (s *Store) prepare(ctx context.Context, q querier, query string) (*sql.Stmt, error) {
	return q.PrepareContext(ctx, s.dialect.Rebind(query))
}

// insert runs an INSERT and returns the generated primary key.
func (s *Store) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if s.dialect.ReturningID {
		query += " RETURNING id"
	}

	stmt, err := s.prepare(ctx, q, query)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	if s.dialect.ReturningID {
		var id int64
		if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("exec: %w", err)
		}
		return id, nil
	}

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// exec runs a statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	stmt, err := s.prepare(ctx, q, query)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// exists reports whether query (a SELECT of a single row) finds anything.
func (s *Store) exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	stmt, err := s.prepare(ctx, q, query)
	if err != nil {
		return false, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	var one int
	err = stmt.QueryRowContext(ctx, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}
	return true, nil
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// nullTime maps a NULL timestamp to the zero time.
func nullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
