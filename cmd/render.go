/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/export"
)

var titles = map[string]string{
	dataset.TopArtists:        "Top artists",
	dataset.TopTracks:         "Top tracks",
	dataset.TopAlbums:         "Top albums",
	dataset.RecentTracks:      "Recent tracks",
	dataset.Heatmap:           "Listening heatmap",
	dataset.WeeklyComparison:  "This week vs last week",
	dataset.Decades:           "Decades",
	dataset.ScrobbleHistory:   "Scrobble history",
	dataset.Streaks:           "Longest streaks",
	dataset.Diversity:         "Diversity",
	dataset.ListeningClock:    "Listening clock (UTC)",
	dataset.MonthlyTopArtists: "Top artist by month",
}

func title(name string) string {
	if t, ok := titles[name]; ok {
		return t
	}
	return name
}

// printDatasets renders each named table of ds that has rows. Empty tables
// are listed as having no data.
func printDatasets(w io.Writer, ds *dataset.Datasets, names []string) error {
	for _, name := range names {
		t, ok := ds.Get(name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", title(name))
		if t.Empty() {
			fmt.Fprintln(w, "No data.")
			continue
		}
		if err := export.RenderTable(w, t); err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
	}
	return nil
}

func printStreakSummary(w io.Writer, r *analysis.StreakReport) {
	if r == nil || r.Longest.Length == 0 {
		fmt.Fprintln(w, "\nNo listening streaks.")
		return
	}
	const dateFormat = "2006-01-02"
	fmt.Fprintf(w, "\nLongest streak: %d days (%s to %s). Current streak: %d days.\n",
		r.Longest.Length, r.Longest.Start.Format(dateFormat), r.Longest.End.Format(dateFormat), r.Current)
}

func printNotes(w io.Writer, notes []string) {
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSome data could not be fetched:")
	for _, n := range notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}
