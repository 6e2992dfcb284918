package dataset

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

var allNames = []string{
	TopArtists, TopTracks, TopAlbums, RecentTracks, Heatmap, WeeklyComparison,
	Decades, ScrobbleHistory, Streaks, Diversity, ListeningClock, MonthlyTopArtists,
}

func TestAssembleKeepsEveryName(t *testing.T) {
	d := Assemble(Inputs{})

	names := d.Names()
	if len(names) != len(allNames) {
		t.Fatalf("Names() = %v, want %v", names, allNames)
	}
	for i, n := range allNames {
		if names[i] != n {
			t.Errorf("name %d = %q, want %q", i, names[i], n)
		}
		tbl, ok := d.Get(n)
		if !ok || !tbl.Empty() {
			t.Errorf("%s should be present and empty", n)
		}
		if len(tbl.Columns) == 0 {
			t.Errorf("%s has no columns", n)
		}
	}
	if got := d.NonEmpty(); len(got) != 0 {
		t.Errorf("NonEmpty() = %v, want none", got)
	}
}

func TestAssembleShapes(t *testing.T) {
	recent, err := upstream.DecodeRecentTracks([]byte(`{"recenttracks":{"track":[
		{"artist":{"#text":"Low"},"name":"Words","@attr":{"nowplaying":"true"}},
		{"artist":{"#text":"Low"},"album":{"#text":"Trust"},"name":"Canada","date":{"uts":"1700000000","#text":"14 Nov 2023, 22:13"}}
	],"@attr":{"totalPages":"1"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	ts := time.Unix(1700000000, 0).UTC()
	report := analysis.DetectStreaks([]scrobbles.Record{{Timestamp: ts}}, ts)
	div := analysis.Diversity{
		Artists: analysis.Spread{Unique: 1, Total: 3, PlayedRepeatedly: 1},
		Tracks:  analysis.Spread{Unique: 2, Total: 3, PlayedOnce: 1, PlayedRepeatedly: 1},
	}
	var clock [24]int
	clock[22] = 1

	d := Assemble(Inputs{
		TopArtists: []upstream.TopArtist{{Name: "Low", PlayCount: 12}},
		Recent:     recent.Tracks,
		Heatmap:    []analysis.HeatCell{{Day: time.Tuesday, Hour: 22, Plays: 1}},
		Weekly:     &analysis.WeeklyComparison{},
		Decades:    []analysis.DecadeBucket{{Decade: 1990, Playcount: 42}},
		History:    []scrobbles.Record{{Artist: "Low", Track: "Canada", Album: "Trust", Timestamp: ts}},
		Streaks:    &report,
		Diversity:  &div,
		Clock:      &clock,
	})

	tbl, _ := d.Get(RecentTracks)
	if len(tbl.Rows) != 2 {
		t.Fatalf("recent rows = %d, want 2", len(tbl.Rows))
	}
	if got := tbl.Strings(0); got[2] != "Unknown" || got[3] != "Now Playing" {
		t.Errorf("now playing row = %v", got)
	}
	if got := tbl.Strings(1); got[2] != "Trust" || got[3] != "14 Nov 2023, 22:13" {
		t.Errorf("completed row = %v", got)
	}

	tbl, _ = d.Get(WeeklyComparison)
	if len(tbl.Rows) != 2 || tbl.Rows[0][7] != "" {
		t.Errorf("weekly rows = %v", tbl.Rows)
	}

	tbl, _ = d.Get(Diversity)
	if got := tbl.Strings(0); got[3] != "33.33" {
		t.Errorf("artist variety = %v", got)
	}

	tbl, _ = d.Get(ListeningClock)
	if len(tbl.Rows) != 24 {
		t.Errorf("clock rows = %d, want 24", len(tbl.Rows))
	}

	tbl, _ = d.Get(Streaks)
	if got := tbl.Strings(0); got[1] != "2023-11-14" || got[3] != "1" {
		t.Errorf("streak row = %v", got)
	}

	for _, n := range []string{TopTracks, TopAlbums, MonthlyTopArtists} {
		if tbl, _ := d.Get(n); !tbl.Empty() {
			t.Errorf("%s should be empty", n)
		}
	}
}

func TestDatasetsJSONSkipsEmptyAndKeepsColumnOrder(t *testing.T) {
	d := New()
	top := NewTable("Artist", "Playcount")
	top.Append("Low", 12)
	d.Set(TopArtists, top)
	d.Set(TopTracks, NewTable("Track", "Artist", "Playcount"))
	d.Set(Decades, nil)

	body, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"top_artists":[{"Artist":"Low","Playcount":12}]}`; string(body) != want {
		t.Errorf("json = %s, want %s", body, want)
	}
}

func TestAppendRejectsRaggedRows(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for a short row")
		}
	}()
	NewTable("A", "B").Append("only one")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{3, "3"},
		{int64(1700000000), "1700000000"},
		{14.0, "14"},
		{2.5, "2.5"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
	}
	for _, tc := range tests {
		if got := Format(tc.in); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsHistory(t *testing.T) {
	for _, name := range allNames {
		want := name == ScrobbleHistory || name == Streaks || name == Diversity ||
			name == ListeningClock || name == MonthlyTopArtists
		if got := IsHistory(name); got != want {
			t.Errorf("IsHistory(%s) = %v, want %v", name, got, want)
		}
	}
}
