package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
)

// Streak is a maximal run of consecutive UTC days with at least one play.
type Streak struct {
	Start  time.Time
	End    time.Time
	Length int
}

type StreakReport struct {
	// Streaks holds every interval, longest first; equal lengths keep
	// chronological order.
	Streaks []Streak
	Longest Streak
	// Current is the run ending on the last listened day, or 0 when that day
	// is neither today nor yesterday.
	Current  int
	LastDate time.Time
}

// ListeningDates returns the distinct UTC calendar days of records, ascending.
func ListeningDates(records []scrobbles.Record) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, r := range records {
		d := r.Day()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// FindStreaks scans sorted distinct dates once, closing an interval on every gap.
func FindStreaks(dates []time.Time) []Streak {
	if len(dates) == 0 {
		return nil
	}
	var streaks []Streak
	cur := Streak{Start: dates[0], End: dates[0], Length: 1}
	for _, d := range dates[1:] {
		if d.Sub(cur.End) == day {
			cur.End = d
			cur.Length++
			continue
		}
		streaks = append(streaks, cur)
		cur = Streak{Start: d, End: d, Length: 1}
	}
	return append(streaks, cur)
}

// DetectStreaks reports the streaks in records as of now.
func DetectStreaks(records []scrobbles.Record, now time.Time) StreakReport {
	dates := ListeningDates(records)
	streaks := FindStreaks(dates)
	if len(streaks) == 0 {
		return StreakReport{}
	}

	report := StreakReport{LastDate: dates[len(dates)-1]}
	last := streaks[len(streaks)-1]

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if last.End.Equal(today) || last.End.Equal(today.Add(-day)) {
		report.Current = last.Length
	}

	sort.SliceStable(streaks, func(i, j int) bool { return streaks[i].Length > streaks[j].Length })
	report.Streaks = streaks
	report.Longest = streaks[0]
	return report
}

// Top returns at most n streaks, longest first.
func (r StreakReport) Top(n int) []Streak {
	if n > len(r.Streaks) {
		n = len(r.Streaks)
	}
	return r.Streaks[:n]
}
