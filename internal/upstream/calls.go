package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Period scopes the "top" queries.
type Period string

const (
	PeriodOverall Period = "overall"
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
)

var periods = []Period{PeriodOverall, Period7Day, Period1Month, Period3Month, Period6Month, Period12Month}

func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodOverall, nil
	}
	for _, p := range periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q (want one of %v)", s, periods)
}

// RecentQuery parameterizes user.getRecentTracks. Zero From/To are omitted.
type RecentQuery struct {
	User  string
	Limit int
	Page  int
	From  time.Time
	To    time.Time
}

func (q RecentQuery) Params() Params {
	p := Params{
		"user":  q.User,
		"limit": clampLimit(q.Limit),
		"page":  max(q.Page, 1),
	}
	if !q.From.IsZero() {
		p["from"] = q.From.Unix()
	}
	if !q.To.IsZero() {
		p["to"] = q.To.Unix()
	}
	return p
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// DecodeRecentTracks parses a user.getRecentTracks body.
func DecodeRecentTracks(body []byte) (*RecentTracks, error) {
	var env recentTracksEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding recent tracks: %w", err)
	}
	if env.RecentTracks == nil {
		return nil, fmt.Errorf("recenttracks: %w", ErrMissingKey)
	}
	return env.RecentTracks, nil
}

func (c *Client) RecentTracks(ctx context.Context, q RecentQuery) (*RecentTracks, error) {
	body, err := c.Fetch(ctx, MethodRecentTracks, q.Params())
	if err != nil {
		return nil, err
	}
	return DecodeRecentTracks(body)
}

func (c *Client) TopArtists(ctx context.Context, user string, period Period, limit int) ([]TopArtist, error) {
	body, err := c.Fetch(ctx, MethodTopArtists, topParams(user, period, limit))
	if err != nil {
		return nil, err
	}
	var env topArtistsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding top artists: %w", err)
	}
	if env.TopArtists == nil {
		return nil, fmt.Errorf("topartists: %w", ErrMissingKey)
	}
	return env.TopArtists.Artists, nil
}

func (c *Client) TopTracks(ctx context.Context, user string, period Period, limit int) ([]TopTrack, error) {
	body, err := c.Fetch(ctx, MethodTopTracks, topParams(user, period, limit))
	if err != nil {
		return nil, err
	}
	var env topTracksEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding top tracks: %w", err)
	}
	if env.TopTracks == nil {
		return nil, fmt.Errorf("toptracks: %w", ErrMissingKey)
	}
	return env.TopTracks.Tracks, nil
}

func (c *Client) TopAlbums(ctx context.Context, user string, period Period, limit int) ([]TopAlbum, error) {
	body, err := c.Fetch(ctx, MethodTopAlbums, topParams(user, period, limit))
	if err != nil {
		return nil, err
	}
	var env topAlbumsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding top albums: %w", err)
	}
	if env.TopAlbums == nil {
		return nil, fmt.Errorf("topalbums: %w", ErrMissingKey)
	}
	return env.TopAlbums.Albums, nil
}

// TrackInfo looks up one track. user is optional and only adds the user's playcount.
func (c *Client) TrackInfo(ctx context.Context, artist, track, user string) (*TrackInfo, error) {
	params := Params{
		"artist":      artist,
		"track":       track,
		"user":        user,
		"autocorrect": 1,
	}
	body, err := c.Fetch(ctx, MethodTrackInfo, params)
	if err != nil {
		return nil, err
	}
	var env trackInfoEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding track info: %w", err)
	}
	if env.Track == nil {
		return nil, fmt.Errorf("track: %w", ErrMissingKey)
	}
	return env.Track, nil
}

func (c *Client) UserInfo(ctx context.Context, user string) (*UserInfo, error) {
	body, err := c.Fetch(ctx, MethodUserInfo, Params{"user": user})
	if err != nil {
		return nil, err
	}
	var env userInfoEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}
	if env.User == nil {
		return nil, fmt.Errorf("user: %w", ErrMissingKey)
	}
	return env.User, nil
}

func topParams(user string, period Period, limit int) Params {
	if period == "" {
		period = PeriodOverall
	}
	return Params{
		"user":   user,
		"period": string(period),
		"limit":  clampLimit(limit),
	}
}
