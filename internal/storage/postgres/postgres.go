// Package postgres provides the PostgreSQL backend of storage.Storage,
// using pgx through its database/sql adapter.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aanand-mishra/cantina-api/internal/config"
	"github.com/aanand-mishra/cantina-api/internal/storage/sqldb"

	// Registers the "pgx" driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect is the PostgreSQL flavour of the schema.
var Dialect = sqldb.Dialect{
	Name:                 "postgres",
	NumberedPlaceholders: true,
	ReturningID:          true,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS students (
			id            BIGSERIAL    PRIMARY KEY,
			full_name     VARCHAR(100) NOT NULL,
			classroom     VARCHAR(20)  NOT NULL,
			registered_at TIMESTAMPTZ  DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id            BIGSERIAL        PRIMARY KEY,
			name          VARCHAR(100)     NOT NULL,
			price         DOUBLE PRECISION NOT NULL,
			active        BOOLEAN          NOT NULL DEFAULT TRUE,
			registered_at TIMESTAMPTZ      DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS consumptions (
			id          BIGSERIAL        PRIMARY KEY,
			student_id  BIGINT           NOT NULL REFERENCES students(id) ON DELETE CASCADE,
			product_id  BIGINT           NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			quantity    BIGINT           NOT NULL DEFAULT 1,
			unit_price  DOUBLE PRECISION NOT NULL,
			consumed_at TIMESTAMPTZ      DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_student ON consumptions (student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_product ON consumptions (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_consumptions_consumed_at ON consumptions (consumed_at)`,
	},
}

// New connects to cfg.Storage.DSN, checks the connection and creates the
// tables if needed.
func New(cfg *config.Config) (*sqldb.Store, error) {
	return Open(cfg.Storage.DSN)
}

// Open is New for callers that only have a DSN.
func Open(dsn string) (*sqldb.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	store := sqldb.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return store, nil
}
