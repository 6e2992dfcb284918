package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

const (
	day = 24 * time.Hour
	// DayLabelLayout formats the most active day, e.g. "Mar 04".
	DayLabelLayout = "Jan 02"
)

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s - %s", w.Start.Format(DayLabelLayout), w.End.Add(-time.Second).Format(DayLabelLayout))
}

type DayCount struct {
	Label string
	Count int
}

// WindowMetrics summarizes the plays within one window.
type WindowMetrics struct {
	UniqueArtists    int
	UniqueTracks     int
	Scrobbles        int
	ListeningMinutes float64
	AvgPerDay        float64
	MostActiveDay    DayCount
}

type WeeklyComparison struct {
	Current         Window
	Previous        Window
	CurrentMetrics  WindowMetrics
	PreviousMetrics WindowMetrics
	// Partial is set when either window stopped collecting early.
	Partial error
}

// WeekStart returns Monday 00:00 UTC of the calendar week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// WeekWindows returns the current week up to now and the full week before it.
func WeekWindows(now time.Time) (current, previous Window) {
	start := WeekStart(now)
	current = Window{Start: start, End: now.UTC()}
	previous = Window{Start: start.AddDate(0, 0, -7), End: start}
	return current, previous
}

// ElapsedDays is the number of full days between start and now, at least 1.
func ElapsedDays(start, now time.Time) int {
	return max(int(now.Sub(start)/day), 1)
}

// ComputeWindowMetrics summarizes records. days is the divisor for the daily
// average and is clamped to 1.
func ComputeWindowMetrics(records []scrobbles.Record, days int, minutesPerScrobble float64) WindowMetrics {
	m := WindowMetrics{MostActiveDay: DayCount{Label: "None"}}
	if len(records) == 0 {
		return m
	}
	days = max(days, 1)

	artists := make(map[string]struct{})
	tracks := make(map[trackKey]struct{})
	perDay := make(map[time.Time]int)
	var order []time.Time
	for _, r := range records {
		artists[r.Artist] = struct{}{}
		tracks[trackKey{r.Artist, r.Track}] = struct{}{}
		d := r.Day()
		if _, seen := perDay[d]; !seen {
			order = append(order, d)
		}
		perDay[d]++
	}

	m.UniqueArtists = len(artists)
	m.UniqueTracks = len(tracks)
	m.Scrobbles = len(records)
	m.ListeningMinutes = float64(m.Scrobbles) * minutesPerScrobble
	m.AvgPerDay = float64(m.Scrobbles) / float64(days)

	for _, d := range order {
		if perDay[d] > m.MostActiveDay.Count {
			m.MostActiveDay = DayCount{Label: d.Format(DayLabelLayout), Count: perDay[d]}
		}
	}
	return m
}

// WeeklyComparison collects both weeks through the paginator and summarizes them.
func (s *Session) WeeklyComparison(ctx context.Context) WeeklyComparison {
	now := s.now()
	opts := s.options()
	cur, prev := WeekWindows(now)
	wc := WeeklyComparison{Current: cur, Previous: prev}

	curHistory := s.Paginator.CollectAll(ctx, upstream.RecentQuery{User: s.User, From: cur.Start, To: cur.End})
	prevHistory := s.Paginator.CollectAll(ctx, upstream.RecentQuery{
		User: s.User,
		From: prev.Start,
		To:   prev.End.Add(-time.Second),
	})

	wc.CurrentMetrics = ComputeWindowMetrics(curHistory.Records, ElapsedDays(cur.Start, now), opts.MinutesPerScrobble)
	wc.PreviousMetrics = ComputeWindowMetrics(prevHistory.Records, 7, opts.MinutesPerScrobble)

	switch {
	case curHistory.Partial != nil:
		wc.Partial = fmt.Errorf("current week: %w", curHistory.Partial)
	case prevHistory.Partial != nil:
		wc.Partial = fmt.Errorf("previous week: %w", prevHistory.Partial)
	}
	if wc.Partial != nil {
		s.Logger.Warn().Err(wc.Partial).Msg("weekly comparison is based on partial data")
	}
	return wc
}

type trackKey struct {
	artist string
	track  string
}
