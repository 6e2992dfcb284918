// Package scrobbles assembles a user's listening history from the paginated
// user.getRecentTracks endpoint.
package scrobbles

import (
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// Record is one completed play. Records are never mutated after collection.
type Record struct {
	Artist    string
	Track     string
	Album     string
	Timestamp time.Time
	DateText  string
}

// Day returns the UTC calendar day of the play.
func (r Record) Day() time.Time {
	t := r.Timestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PageResult is one decoded page, owned by the paginator while it runs.
type PageResult struct {
	Records    []Record
	PageIndex  int
	TotalPages int
	// Raw is the number of completed entries the upstream returned, before
	// any truncation to the requested page size.
	Raw int
}

// FromRecentTrack converts an upstream entry. ok is false for the
// currently-playing entry, which has no completion timestamp.
func FromRecentTrack(t upstream.RecentTrack) (rec Record, ok bool) {
	if t.NowPlaying() {
		return Record{}, false
	}
	return Record{
		Artist:    t.Artist.Text,
		Track:     t.Name,
		Album:     t.AlbumName(),
		Timestamp: time.Unix(int64(t.Date.UTS), 0).UTC(),
		DateText:  t.Date.Text,
	}, true
}

func newPage(rt *upstream.RecentTracks, page, limit int) PageResult {
	result := PageResult{PageIndex: page, TotalPages: int(rt.Attr.TotalPages)}
	for _, t := range rt.Tracks {
		rec, ok := FromRecentTrack(t)
		if !ok {
			continue
		}
		result.Raw++
		if len(result.Records) < limit {
			result.Records = append(result.Records, rec)
		}
	}
	return result
}
