package analysis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/avast/retry-go"

	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// ParseYear extracts the last four-digit year from free text such as
// "14 Mar 1994, 00:00".
func ParseYear(text string) (int, bool) {
	matches := yearPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}

func DecadeOf(year int) int {
	return (year / 10) * 10
}

type DecadeBucket struct {
	Decade    int
	Playcount int
}

type DecadeResult struct {
	Buckets []DecadeBucket
	// Resolved counts tracks with a usable release year; Skipped the rest.
	Resolved int
	Skipped  int
	// Partial is set when the top-track listing itself failed.
	Partial error
}

// BucketByDecade sums playcounts per decade, ordered by decade.
func BucketByDecade(years map[int]int) []DecadeBucket {
	byDecade := make(map[int]int)
	for year, plays := range years {
		byDecade[DecadeOf(year)] += plays
	}
	buckets := make([]DecadeBucket, 0, len(byDecade))
	for d, plays := range byDecade {
		buckets = append(buckets, DecadeBucket{Decade: d, Playcount: plays})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Decade < buckets[j].Decade })
	return buckets
}

// Decades looks up the release year of each of the user's top tracks, one
// throttled call at a time, and buckets their playcounts by decade. Tracks
// whose lookup fails or whose release date has no year are skipped.
func (s *Session) Decades(ctx context.Context, period upstream.Period) DecadeResult {
	var result DecadeResult
	opts := s.options()

	if err := s.Wait(ctx); err != nil {
		result.Partial = err
		return result
	}
	tops, err := s.Tops.TopTracks(ctx, s.User, period, opts.DecadeTracks)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("could not list top tracks for decades")
		result.Partial = fmt.Errorf("listing top tracks: %w", err)
		return result
	}

	years := make(map[int]int)
	for _, t := range tops {
		year, err := s.releaseYear(ctx, t.Artist.Name, t.Name)
		if ctx.Err() != nil {
			result.Partial = ctx.Err()
			break
		}
		if err != nil {
			s.Logger.Debug().Err(err).Str("artist", t.Artist.Name).Str("track", t.Name).
				Msg("skipping track without release year")
			result.Skipped++
			continue
		}
		years[year] += int(t.PlayCount)
		result.Resolved++
	}

	result.Buckets = BucketByDecade(years)
	return result
}

var errNoYear = errors.New("no release year")

func (s *Session) releaseYear(ctx context.Context, artist, track string) (int, error) {
	opts := s.options()
	if err := s.Wait(ctx); err != nil {
		return 0, err
	}

	var info *upstream.TrackInfo
	err := retry.Do(
		func() error {
			var err error
			info, err = s.Catalog.TrackInfo(ctx, artist, track, s.User)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(upstream.Temporary),
	)
	if err != nil {
		return 0, err
	}

	year, ok := ParseYear(info.ReleaseText())
	if !ok {
		return 0, errNoYear
	}
	return year, nil
}
