package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/store"
)

// sqliteFile writes ds into a scratch database and returns the file contents.
func sqliteFile(ds *dataset.Datasets, user string, now time.Time) ([]byte, error) {
	dir, err := os.MkdirTemp("", "lastfm-export-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.db")
	s, err := store.New(path)
	if err != nil {
		return nil, err
	}
	if err := s.SetExport(user, now); err != nil {
		s.Close()
		return nil, err
	}
	if _, err := s.WriteDatasets(ds); err != nil {
		s.Close()
		return nil, err
	}
	catalog, err := s.Datasets()
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := checkCatalog(ds, catalog); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Close(); err != nil {
		return nil, fmt.Errorf("closing database: %w", err)
	}
	return os.ReadFile(path)
}

// checkCatalog fails unless catalog holds exactly the non-empty datasets of ds
// with their row counts.
func checkCatalog(ds *dataset.Datasets, catalog map[string]int) error {
	names := ds.NonEmpty()
	if len(catalog) != len(names) {
		return fmt.Errorf("database catalogs %d datasets, want %d", len(catalog), len(names))
	}
	for _, name := range names {
		t, _ := ds.Get(name)
		if got, ok := catalog[name]; !ok || got != len(t.Rows) {
			return fmt.Errorf("dataset %s: database has %d rows, want %d", name, got, len(t.Rows))
		}
	}
	return nil
}
