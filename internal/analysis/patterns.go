package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
)

// Weekdays in heatmap order.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

type HeatCell struct {
	Day   time.Weekday
	Hour  int
	Plays int
}

// Heatmap counts plays per (weekday, hour) in UTC. Only cells with plays are
// returned, Monday first, then by hour.
func Heatmap(records []scrobbles.Record) []HeatCell {
	var grid [7][24]int
	for _, r := range records {
		t := r.Timestamp.UTC()
		grid[t.Weekday()][t.Hour()]++
	}

	var cells []HeatCell
	for _, wd := range Weekdays {
		for h := 0; h < 24; h++ {
			if n := grid[wd][h]; n > 0 {
				cells = append(cells, HeatCell{Day: wd, Hour: h, Plays: n})
			}
		}
	}
	return cells
}

// ListeningClock returns plays per UTC hour of day, all 24 hours.
func ListeningClock(records []scrobbles.Record) [24]int {
	var clock [24]int
	for _, r := range records {
		clock[r.Timestamp.UTC().Hour()]++
	}
	return clock
}

type MonthlyArtist struct {
	Month  string // YYYY-MM
	Artist string
	Plays  int
}

// MonthlyTopArtists picks the most played artist of each month, oldest month
// first. Ties go to the artist encountered first in records.
func MonthlyTopArtists(records []scrobbles.Record) []MonthlyArtist {
	type tally struct {
		counts map[string]int
		order  []string
	}
	months := make(map[string]*tally)
	var keys []string
	for _, r := range records {
		key := r.Timestamp.UTC().Format("2006-01")
		t, ok := months[key]
		if !ok {
			t = &tally{counts: make(map[string]int)}
			months[key] = t
			keys = append(keys, key)
		}
		if t.counts[r.Artist] == 0 {
			t.order = append(t.order, r.Artist)
		}
		t.counts[r.Artist]++
	}

	sort.Strings(keys)
	out := make([]MonthlyArtist, 0, len(keys))
	for _, key := range keys {
		t := months[key]
		best := MonthlyArtist{Month: key}
		for _, artist := range t.order {
			if t.counts[artist] > best.Plays {
				best.Artist = artist
				best.Plays = t.counts[artist]
			}
		}
		out = append(out, best)
	}
	return out
}
