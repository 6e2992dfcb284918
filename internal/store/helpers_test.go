package store

import (
	"database/sql"
	"fmt"
)

// ExportUser returns the user recorded by SetExport.
func (s *Store) ExportUser() (string, error) {
	var user string
	err := s.db.QueryRow("SELECT user FROM Export LIMIT 1").Scan(&user)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying export user: %w", err)
	}
	return user, nil
}

// ReadStrings returns every row of table as text, in insertion order.
func (s *Store) ReadStrings(table string) ([][]string, error) {
	rows, err := s.db.Query("SELECT * FROM " + quoteIdent(table) + " ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
