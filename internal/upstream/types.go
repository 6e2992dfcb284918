package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Count decodes Last.fm numbers, which arrive either as JSON numbers or as
// decimal strings. Anything unparseable decodes to zero.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*c = 0
			return nil
		}
		*c = Count(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(i)
	return nil
}

// List accepts both a JSON array and a single object, since the API collapses
// one-element lists into a bare object.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}

// PageAttr is the "@attr" block of paginated containers.
type PageAttr struct {
	User       string `json:"user"`
	Page       Count  `json:"page"`
	PerPage    Count  `json:"perPage"`
	TotalPages Count  `json:"totalPages"`
	Total      Count  `json:"total"`
}

// TextRef is the {"#text": "...", "mbid": "..."} shape used by recent tracks.
type TextRef struct {
	Text string `json:"#text"`
	MBID string `json:"mbid"`
}

// NameRef is the {"name": "..."} shape used by top lists.
type NameRef struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

type RecentTrack struct {
	Name   string   `json:"name"`
	Artist TextRef  `json:"artist"`
	Album  *TextRef `json:"album"`
	URL    string   `json:"url"`
	Date   *struct {
		UTS  Count  `json:"uts"`
		Text string `json:"#text"`
	} `json:"date"`
	Attr *struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

// NowPlaying reports whether the entry is the currently playing track.
// Such entries carry no completion timestamp.
func (t RecentTrack) NowPlaying() bool {
	if t.Attr != nil && t.Attr.NowPlaying == "true" {
		return true
	}
	return t.Date == nil
}

// AlbumName defaults a missing album to "Unknown".
func (t RecentTrack) AlbumName() string {
	if t.Album == nil || t.Album.Text == "" {
		return "Unknown"
	}
	return t.Album.Text
}

type RecentTracks struct {
	Tracks List[RecentTrack] `json:"track"`
	Attr   PageAttr          `json:"@attr"`
}

type recentTracksEnvelope struct {
	RecentTracks *RecentTracks `json:"recenttracks"`
}

type TopArtist struct {
	Name      string `json:"name"`
	PlayCount Count  `json:"playcount"`
	URL       string `json:"url"`
}

type TopArtists struct {
	Artists List[TopArtist] `json:"artist"`
	Attr    PageAttr        `json:"@attr"`
}

type topArtistsEnvelope struct {
	TopArtists *TopArtists `json:"topartists"`
}

type TopTrack struct {
	Name      string  `json:"name"`
	PlayCount Count   `json:"playcount"`
	Artist    NameRef `json:"artist"`
	URL       string  `json:"url"`
}

type TopTracks struct {
	Tracks List[TopTrack] `json:"track"`
	Attr   PageAttr       `json:"@attr"`
}

type topTracksEnvelope struct {
	TopTracks *TopTracks `json:"toptracks"`
}

type TopAlbum struct {
	Name      string  `json:"name"`
	PlayCount Count   `json:"playcount"`
	Artist    NameRef `json:"artist"`
	URL       string  `json:"url"`
}

type TopAlbums struct {
	Albums List[TopAlbum] `json:"album"`
	Attr   PageAttr       `json:"@attr"`
}

type topAlbumsEnvelope struct {
	TopAlbums *TopAlbums `json:"topalbums"`
}

type TrackAlbum struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releasedate"`
}

type TrackInfo struct {
	Name     string      `json:"name"`
	Artist   NameRef     `json:"artist"`
	Duration Count       `json:"duration"`
	Album    *TrackAlbum `json:"album"`
	Wiki     *struct {
		Published string `json:"published"`
	} `json:"wiki"`
}

// ReleaseText returns the free-text release date, empty when absent.
func (t TrackInfo) ReleaseText() string {
	if t.Album == nil {
		return ""
	}
	return strings.TrimSpace(t.Album.ReleaseDate)
}

type trackInfoEnvelope struct {
	Track *TrackInfo `json:"track"`
}

type UserInfo struct {
	Name       string `json:"name"`
	RealName   string `json:"realname"`
	PlayCount  Count  `json:"playcount"`
	Country    string `json:"country"`
	URL        string `json:"url"`
	Registered struct {
		UnixTime Count `json:"unixtime"`
	} `json:"registered"`
}

type userInfoEnvelope struct {
	User *UserInfo `json:"user"`
}
