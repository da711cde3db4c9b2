// Package oui implements ports.OuiDB: a read-only MAC24 → vendor
// lookup. Grounded on wmap's
// internal/adapters/fingerprint/oui_database.go (SQLite-backed, with
// an in-process cache in front of the prepared SELECT). The table is
// not loaded up front: SQLiteDB.Lookup runs the SELECT on every cache
// miss, only found prefixes are cached, and the topology graph calls
// Lookup when it creates a node, so a miss reaches the database from
// the packet path.
package oui

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB is a SQLite-backed ports.OuiDB. Safe for concurrent use.
type SQLiteDB struct {
	db         *sql.DB
	lookupStmt *sql.Stmt

	mu    sync.RWMutex
	cache map[string]string
}

// DatabaseError wraps a SQLite setup failure with the operation that
// failed, mirroring wmap's own DatabaseError shape.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("oui: %s: %v", e.Op, e.Err) }
func (e *DatabaseError) Unwrap() error { return e.Err }

// OpenSQLite opens (and, if needed, initializes) a SQLite-backed OUI
// database at path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "ping", Err: err}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	stmt, err := db.Prepare("SELECT vendor FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "prepare_statement", Err: err}
	}

	return &SQLiteDB{db: db, lookupStmt: stmt, cache: make(map[string]string)}, nil
}

// Lookup implements ports.OuiDB.
func (s *SQLiteDB) Lookup(prefix string) (string, bool) {
	s.mu.RLock()
	if vendor, ok := s.cache[prefix]; ok {
		s.mu.RUnlock()
		return vendor, true
	}
	s.mu.RUnlock()

	var vendor string
	if err := s.lookupStmt.QueryRow(prefix).Scan(&vendor); err != nil {
		return "", false
	}

	s.mu.Lock()
	s.cache[prefix] = vendor
	s.mu.Unlock()
	return vendor, true
}

// Import bulk-loads prefix→vendor pairs, e.g. from a CSV import tool
// grounded on wmap's tools/oui/import_oui_csv. Intended for one-time
// database population, not the hot path.
func (s *SQLiteDB) Import(entries map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &DatabaseError{Op: "begin_tx", Err: err}
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO oui_registry (prefix, vendor) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return &DatabaseError{Op: "prepare_insert", Err: err}
	}
	defer stmt.Close()

	for prefix, vendor := range entries {
		if _, err := stmt.Exec(prefix, vendor); err != nil {
			tx.Rollback()
			return &DatabaseError{Op: "insert", Err: err}
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *SQLiteDB) Close() error {
	s.lookupStmt.Close()
	return s.db.Close()
}
