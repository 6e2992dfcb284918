package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

// WriteTable replaces the table called name with the rows of t, transactionally.
func (s *Store) WriteTable(name string, t *dataset.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	table := quoteIdent(name)
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return fmt.Errorf("dropping %s: %w", name, err)
	}

	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = quoteIdent(col) + " " + columnType(t, i)
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		if _, err := stmt.Exec(sqlValues(row)...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, name, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO Dataset (name, rows) VALUES (?, ?)", name, len(t.Rows)); err != nil {
		return fmt.Errorf("cataloguing %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// WriteDatasets stores every non-empty dataset and returns how many were written.
func (s *Store) WriteDatasets(ds *dataset.Datasets) (int, error) {
	written := 0
	for _, name := range ds.NonEmpty() {
		t, _ := ds.Get(name)
		if err := s.WriteTable(name, t); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType picks a SQLite affinity from the first non-nil value in column i.
func columnType(t *dataset.Table, i int) string {
	for _, row := range t.Rows {
		switch row[i].(type) {
		case nil:
			continue
		case int, int64:
			return "INTEGER"
		case float64:
			return "REAL"
		case time.Time:
			return "DATETIME"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func sqlValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if ts, ok := v.(time.Time); ok {
			out[i] = ts.UTC()
			continue
		}
		out[i] = v
	}
	return out
}
