package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "export.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func TestWriteTable(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	tbl := dataset.NewTable("Artist", "Playcount", "Share")
	tbl.Append("Low", 12, 0.5)
	tbl.Append(`Say "Hi"`, 3, 0.25)

	if err := s.WriteTable("top_artists", tbl); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	// Rewriting replaces, not appends.
	if err := s.WriteTable("top_artists", tbl); err != nil {
		t.Fatalf("WriteTable again: %v", err)
	}

	rows, err := s.ReadStrings("top_artists")
	if err != nil {
		t.Fatalf("ReadStrings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0][0] != "Low" || rows[0][1] != "12" || rows[1][0] != `Say "Hi"` {
		t.Errorf("rows = %v", rows)
	}

	catalog, err := s.Datasets()
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if catalog["top_artists"] != 2 {
		t.Errorf("catalog = %v", catalog)
	}
}

func TestWriteDatasetsSkipsEmpty(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	ds := dataset.New()
	top := dataset.NewTable("Artist", "Playcount")
	top.Append("Low", 12)
	ds.Set(dataset.TopArtists, top)
	ds.Set(dataset.Decades, dataset.NewTable("Decade", "Playcount"))

	n, err := s.WriteDatasets(ds)
	if err != nil {
		t.Fatalf("WriteDatasets: %v", err)
	}
	if n != 1 {
		t.Errorf("written = %d, want 1", n)
	}
	catalog, err := s.Datasets()
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if _, ok := catalog[dataset.Decades]; ok {
		t.Errorf("empty dataset should not be written: %v", catalog)
	}
}

func TestSetExport(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	if err := s.SetExport("rj", time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("SetExport: %v", err)
	}
	if err := s.SetExport("rj2", time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("SetExport: %v", err)
	}
	user, err := s.ExportUser()
	if err != nil {
		t.Fatalf("ExportUser: %v", err)
	}
	if user != "rj2" {
		t.Errorf("ExportUser() = %q, want rj2", user)
	}
}
