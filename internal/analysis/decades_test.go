package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"

	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

type fakeTops struct {
	tracks []upstream.TopTrack
	err    error
	limit  int
}

func (f *fakeTops) TopTracks(ctx context.Context, user string, period upstream.Period, limit int) ([]upstream.TopTrack, error) {
	f.limit = limit
	return f.tracks, f.err
}

type fakeCatalog struct {
	releases map[string]string
	errs     map[string][]error
	calls    map[string]int
}

func (f *fakeCatalog) TrackInfo(ctx context.Context, artist, track, user string) (*upstream.TrackInfo, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	n := f.calls[track]
	f.calls[track]++
	if errs := f.errs[track]; n < len(errs) {
		return nil, errs[n]
	}
	info := &upstream.TrackInfo{Name: track}
	if rel, ok := f.releases[track]; ok {
		info.Album = &upstream.TrackAlbum{ReleaseDate: rel}
	}
	return info, nil
}

func topTrack(name string, plays int) upstream.TopTrack {
	return upstream.TopTrack{Name: name, PlayCount: upstream.Count(plays), Artist: upstream.NameRef{Name: "Artist"}}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"14 Mar 1994, 00:00", 1994, true},
		{"1971", 1971, true},
		{"    2003   ", 2003, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"12345", 0, false},
	}
	for _, tc := range tests {
		got, ok := ParseYear(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseYear(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDecades(t *testing.T) {
	convey.Convey("Given top tracks with mixed release information", t, func() {
		tops := &fakeTops{tracks: []upstream.TopTrack{
			topTrack("Nineties", 40),
			topTrack("Also Nineties", 2),
			topTrack("Seventies", 7),
			topTrack("No Date", 100),
			topTrack("Broken", 9),
			topTrack("Flaky", 5),
		}}
		catalog := &fakeCatalog{
			releases: map[string]string{
				"Nineties":      "14 Mar 1994, 00:00",
				"Also Nineties": "1999",
				"Seventies":     "1 Jan 1971, 00:00",
				"No Date":       "   ",
				"Flaky":         "2005",
			},
			errs: map[string][]error{
				"Broken": {&upstream.APIError{Code: 6, Message: "Track not found"}},
				"Flaky":  {&upstream.StatusError{Status: 502}},
			},
		}
		s := &Session{
			User:    "rj",
			Tops:    tops,
			Catalog: catalog,
			Options: Options{DecadeTracks: 6, Attempts: 2, RetryDelay: time.Millisecond},
			Logger:  zerolog.Nop(),
		}

		result := s.Decades(context.Background(), upstream.PeriodOverall)

		convey.Convey("Then playcounts are summed per decade in order", func() {
			convey.So(result.Buckets, convey.ShouldResemble, []DecadeBucket{
				{Decade: 1970, Playcount: 7},
				{Decade: 1990, Playcount: 42},
				{Decade: 2000, Playcount: 5},
			})
		})

		convey.Convey("Then tracks without a usable year are skipped, not fatal", func() {
			convey.So(result.Resolved, convey.ShouldEqual, 4)
			convey.So(result.Skipped, convey.ShouldEqual, 2)
			convey.So(result.Partial, convey.ShouldBeNil)
		})

		convey.Convey("Then only temporary failures are retried", func() {
			convey.So(catalog.calls["Flaky"], convey.ShouldEqual, 2)
			convey.So(catalog.calls["Broken"], convey.ShouldEqual, 1)
			convey.So(tops.limit, convey.ShouldEqual, 6)
		})
	})

	convey.Convey("Given the top track listing fails", t, func() {
		s := &Session{
			User:    "rj",
			Tops:    &fakeTops{err: errors.New("boom")},
			Catalog: &fakeCatalog{},
			Logger:  zerolog.Nop(),
		}
		result := s.Decades(context.Background(), upstream.PeriodOverall)

		convey.Convey("Then the result is empty and flagged partial", func() {
			convey.So(result.Buckets, convey.ShouldBeEmpty)
			convey.So(result.Partial, convey.ShouldNotBeNil)
		})
	})
}

func TestDecadeOf(t *testing.T) {
	if got := DecadeOf(1994); got != 1990 {
		t.Errorf("DecadeOf(1994) = %d, want 1990", got)
	}
	if got := DecadeOf(2000); got != 2000 {
		t.Errorf("DecadeOf(2000) = %d, want 2000", got)
	}
}
