// Package catalog maintains a SQLite database of molecules ingested from
// SD files: one row per record with its name, formula, graph counts, and
// the byte offset needed to reread the raw record later. Records that fail
// to parse are kept in a failures table with their error text so an ingest
// batch is never silently lossy.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS molecules (
	source     TEXT NOT NULL,
	record     INTEGER NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	formula    TEXT NOT NULL DEFAULT '',
	num_atoms  INTEGER NOT NULL,
	num_bonds  INTEGER NOT NULL,
	charge_sum INTEGER NOT NULL DEFAULT 0,
	has_query  INTEGER NOT NULL DEFAULT 0,
	offset     INTEGER NOT NULL,
	batch_id   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source, record)
);

CREATE INDEX IF NOT EXISTS idx_molecules_formula ON molecules(formula);
CREATE INDEX IF NOT EXISTS idx_molecules_batch   ON molecules(batch_id);

CREATE TABLE IF NOT EXISTS failures (
	source     TEXT NOT NULL,
	record     INTEGER NOT NULL,
	line       INTEGER NOT NULL,
	error      TEXT NOT NULL,
	batch_id   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source, record)
);

CREATE INDEX IF NOT EXISTS idx_failures_batch ON failures(batch_id);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
