// Package analysis computes the derived listening metrics shown on the
// dashboard: weekly comparison, decade buckets, streaks, diversity and the
// time-of-day patterns.
package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// DefaultMinutesPerScrobble is the assumed average track length. It is an
// approximation: no duration is fetched per play.
const DefaultMinutesPerScrobble = 3.5

// TrackCatalog resolves metadata for a single track.
type TrackCatalog interface {
	TrackInfo(ctx context.Context, artist, track, user string) (*upstream.TrackInfo, error)
}

// TopTrackLister lists a user's most played tracks.
type TopTrackLister interface {
	TopTracks(ctx context.Context, user string, period upstream.Period, limit int) ([]upstream.TopTrack, error)
}

type Options struct {
	MinutesPerScrobble float64
	// DecadeTracks is how many top tracks are enriched for decade buckets.
	DecadeTracks int
	// Attempts and RetryDelay apply to enrichment calls.
	Attempts   uint
	RetryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		MinutesPerScrobble: DefaultMinutesPerScrobble,
		DecadeTracks:       10,
		Attempts:           3,
		RetryDelay:         time.Second,
	}
}

// Session carries everything one dashboard request needs. It is created per
// request and never shared between users.
type Session struct {
	User      string
	Now       func() time.Time
	Paginator *scrobbles.Paginator
	Tops      TopTrackLister
	Catalog   TrackCatalog
	// Limiter spaces enrichment calls. Share it with the paginator so that
	// all sequential calls of a request keep the same spacing.
	Limiter *rate.Limiter
	Options Options
	Logger  zerolog.Logger
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Session) options() Options {
	o := s.Options
	if o.MinutesPerScrobble <= 0 {
		o.MinutesPerScrobble = DefaultMinutesPerScrobble
	}
	if o.DecadeTracks <= 0 {
		o.DecadeTracks = 10
	}
	if o.Attempts == 0 {
		o.Attempts = 1
	}
	return o
}

func (s *Session) limiter() *rate.Limiter {
	if s.Limiter == nil {
		s.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return s.Limiter
}

// Wait blocks until the next upstream call may be issued.
func (s *Session) Wait(ctx context.Context) error {
	return s.limiter().Wait(ctx)
}
