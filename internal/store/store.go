// Package store writes named datasets into a SQLite database file, one table
// per dataset.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// createTables sets up the catalog that records which datasets were written.
func createTables(db *sql.DB) error {
	const query = `
CREATE TABLE IF NOT EXISTS Export (
  user TEXT NOT NULL,
  created DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS Dataset (
  name TEXT PRIMARY KEY,
  rows INTEGER NOT NULL
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}
	return nil
}

// SetExport records who the file was exported for.
func (s *Store) SetExport(user string, created time.Time) error {
	if _, err := s.db.Exec("DELETE FROM Export"); err != nil {
		return fmt.Errorf("clearing export row: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO Export (user, created) VALUES (?, ?)", user, created.UTC()); err != nil {
		return fmt.Errorf("inserting export row for %q: %w", user, err)
	}
	return nil
}
