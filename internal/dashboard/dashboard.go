// Package dashboard runs one dashboard request end to end: it gathers the
// upstream lists, runs the calculators and assembles the named datasets.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// Source is the part of the upstream client a dashboard reads from.
type Source interface {
	TopArtists(ctx context.Context, user string, period upstream.Period, limit int) ([]upstream.TopArtist, error)
	TopTracks(ctx context.Context, user string, period upstream.Period, limit int) ([]upstream.TopTrack, error)
	TopAlbums(ctx context.Context, user string, period upstream.Period, limit int) ([]upstream.TopAlbum, error)
	RecentTracks(ctx context.Context, q upstream.RecentQuery) (*upstream.RecentTracks, error)
}

type Request struct {
	Period upstream.Period
	// TopLimit bounds the three top lists.
	TopLimit int
	// RecentLimit is how many entries the recent tracks table shows.
	RecentLimit int
	// HeatmapSample is how many recent plays feed the heatmap.
	HeatmapSample int

	// IncludeHistory collects the full scrobble history between From and To
	// (zero means unbounded) and the tables derived from it.
	IncludeHistory bool
	From           time.Time
	To             time.Time
}

func DefaultRequest() Request {
	return Request{
		Period:        upstream.PeriodOverall,
		TopLimit:      10,
		RecentLimit:   10,
		HeatmapSample: upstream.MaxPageSize,
	}
}

type Result struct {
	User      string
	Period    upstream.Period
	Generated time.Time
	Datasets  *dataset.Datasets
	Weekly    analysis.WeeklyComparison
	// Streaks is nil unless the history was collected.
	Streaks *analysis.StreakReport
	// Notes are informational messages about data that could not be fetched.
	Notes []string
}

// Build runs every query of req sequentially through s. Upstream failures
// never fail the build; the affected tables are left empty and a note is added.
func Build(ctx context.Context, src Source, s *analysis.Session, req Request) *Result {
	if req.Period == "" {
		req.Period = upstream.PeriodOverall
	}
	b := &builder{s: s}
	res := &Result{User: s.User, Period: req.Period, Generated: time.Now().UTC()}
	if s.Now != nil {
		res.Generated = s.Now().UTC()
	}

	var in dataset.Inputs
	in.TopArtists = fetch(ctx, b, "top artists", func() ([]upstream.TopArtist, error) {
		return src.TopArtists(ctx, s.User, req.Period, req.TopLimit)
	})
	in.TopTracks = fetch(ctx, b, "top tracks", func() ([]upstream.TopTrack, error) {
		return src.TopTracks(ctx, s.User, req.Period, req.TopLimit)
	})
	in.TopAlbums = fetch(ctx, b, "top albums", func() ([]upstream.TopAlbum, error) {
		return src.TopAlbums(ctx, s.User, req.Period, req.TopLimit)
	})

	recent := fetch(ctx, b, "recent tracks", func() ([]upstream.RecentTrack, error) {
		rt, err := src.RecentTracks(ctx, upstream.RecentQuery{User: s.User, Limit: req.HeatmapSample})
		if err != nil {
			return nil, err
		}
		return rt.Tracks, nil
	})
	in.Recent = recent[:min(len(recent), max(req.RecentLimit, 0))]
	in.Heatmap = analysis.Heatmap(completed(recent))

	res.Weekly = s.WeeklyComparison(ctx)
	in.Weekly = &res.Weekly
	if res.Weekly.Partial != nil {
		b.note("weekly comparison is incomplete", res.Weekly.Partial)
	}

	decades := s.Decades(ctx, req.Period)
	in.Decades = decades.Buckets
	if decades.Partial != nil {
		b.note("decades are unavailable", decades.Partial)
	}

	if req.IncludeHistory {
		h := s.Paginator.CollectAll(ctx, upstream.RecentQuery{User: s.User, From: req.From, To: req.To})
		if h.Partial != nil {
			b.note(fmt.Sprintf("scrobble history stopped after %d pages", h.Pages), h.Partial)
		}
		in.History = h.Records
		report := analysis.DetectStreaks(h.Records, res.Generated)
		div := analysis.MeasureDiversity(h.Records)
		clock := analysis.ListeningClock(h.Records)
		in.Streaks = &report
		in.Diversity = &div
		in.Clock = &clock
		in.Monthly = analysis.MonthlyTopArtists(h.Records)
		res.Streaks = &report
	}

	res.Datasets = dataset.Assemble(in)
	res.Notes = b.notes
	return res
}

type builder struct {
	s     *analysis.Session
	notes []string
}

func (b *builder) note(what string, err error) {
	b.s.Logger.Warn().Err(err).Msg(what)
	b.notes = append(b.notes, fmt.Sprintf("%s: %v", what, err))
}

// fetch waits for the limiter, runs call and turns a failure into a note.
func fetch[T any](ctx context.Context, b *builder, what string, call func() ([]T, error)) []T {
	if err := b.s.Wait(ctx); err != nil {
		b.note(what+" unavailable", err)
		return nil
	}
	out, err := call()
	if err != nil {
		b.note(what+" unavailable", err)
		return nil
	}
	return out
}

func completed(tracks []upstream.RecentTrack) []scrobbles.Record {
	var out []scrobbles.Record
	for _, t := range tracks {
		if rec, ok := scrobbles.FromRecentTrack(t); ok {
			out = append(out, rec)
		}
	}
	return out
}
