package store

import "fmt"

// Datasets lists the catalogued dataset names with their row counts.
func (s *Store) Datasets() (map[string]int, error) {
	rows, err := s.db.Query("SELECT name, rows FROM Dataset")
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}
