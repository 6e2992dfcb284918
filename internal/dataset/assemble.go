package dataset

import (
	"math"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// TopStreaks is how many streak intervals the streaks table keeps.
const TopStreaks = 5

// Inputs are the computed results of one dashboard request. Nil or empty
// fields produce empty tables.
type Inputs struct {
	TopArtists []upstream.TopArtist
	TopTracks  []upstream.TopTrack
	TopAlbums  []upstream.TopAlbum
	// Recent may include the currently-playing entry.
	Recent  []upstream.RecentTrack
	Heatmap []analysis.HeatCell
	Weekly  *analysis.WeeklyComparison
	Decades []analysis.DecadeBucket

	// History and the tables derived from it are only filled when the full
	// scrobble history was requested.
	History   []scrobbles.Record
	Streaks   *analysis.StreakReport
	Diversity *analysis.Diversity
	Clock     *[24]int
	Monthly   []analysis.MonthlyArtist
}

// Assemble builds every named dataset. All names are always present.
func Assemble(in Inputs) *Datasets {
	d := New()
	d.Set(TopArtists, topArtistsTable(in.TopArtists))
	d.Set(TopTracks, topTracksTable(in.TopTracks))
	d.Set(TopAlbums, topAlbumsTable(in.TopAlbums))
	d.Set(RecentTracks, recentTable(in.Recent))
	d.Set(Heatmap, heatmapTable(in.Heatmap))
	d.Set(WeeklyComparison, weeklyTable(in.Weekly))
	d.Set(Decades, decadesTable(in.Decades))
	d.Set(ScrobbleHistory, historyTable(in.History))
	d.Set(Streaks, streaksTable(in.Streaks))
	d.Set(Diversity, diversityTable(in.Diversity))
	d.Set(ListeningClock, clockTable(in.Clock))
	d.Set(MonthlyTopArtists, monthlyTable(in.Monthly))
	return d
}

func topArtistsTable(artists []upstream.TopArtist) *Table {
	t := NewTable("Artist", "Playcount")
	for _, a := range artists {
		t.Append(a.Name, int(a.PlayCount))
	}
	return t
}

func topTracksTable(tracks []upstream.TopTrack) *Table {
	t := NewTable("Track", "Artist", "Playcount")
	for _, tr := range tracks {
		t.Append(tr.Name, tr.Artist.Name, int(tr.PlayCount))
	}
	return t
}

func topAlbumsTable(albums []upstream.TopAlbum) *Table {
	t := NewTable("Album", "Artist", "Playcount")
	for _, a := range albums {
		t.Append(a.Name, a.Artist.Name, int(a.PlayCount))
	}
	return t
}

func recentTable(recent []upstream.RecentTrack) *Table {
	t := NewTable("Track", "Artist", "Album", "Date")
	for _, r := range recent {
		date := "Now Playing"
		if !r.NowPlaying() {
			date = r.Date.Text
		}
		t.Append(r.Name, r.Artist.Text, r.AlbumName(), date)
	}
	return t
}

func heatmapTable(cells []analysis.HeatCell) *Table {
	t := NewTable("Day", "Hour", "Plays")
	for _, c := range cells {
		t.Append(c.Day.String(), c.Hour, c.Plays)
	}
	return t
}

func weeklyTable(wc *analysis.WeeklyComparison) *Table {
	t := NewTable("Period", "Range", "Artists", "Tracks", "Scrobbles", "ListeningMinutes",
		"AvgScrobblesPerDay", "MostActiveDay", "MostActiveDayScrobbles")
	if wc == nil {
		return t
	}
	add := func(label string, w analysis.Window, m analysis.WindowMetrics) {
		t.Append(label, w.String(), m.UniqueArtists, m.UniqueTracks, m.Scrobbles,
			round(m.ListeningMinutes, 1), round(m.AvgPerDay, 1), m.MostActiveDay.Label, m.MostActiveDay.Count)
	}
	add("current", wc.Current, wc.CurrentMetrics)
	add("previous", wc.Previous, wc.PreviousMetrics)
	return t
}

func decadesTable(buckets []analysis.DecadeBucket) *Table {
	t := NewTable("Decade", "Playcount")
	for _, b := range buckets {
		t.Append(b.Decade, b.Playcount)
	}
	return t
}

func historyTable(records []scrobbles.Record) *Table {
	t := NewTable("Artist", "Track", "Album", "Timestamp", "Date")
	for _, r := range records {
		t.Append(r.Artist, r.Track, r.Album, r.Timestamp.Unix(), r.DateText)
	}
	return t
}

func streaksTable(report *analysis.StreakReport) *Table {
	t := NewTable("Rank", "Start", "End", "Length")
	if report == nil {
		return t
	}
	for i, s := range report.Top(TopStreaks) {
		t.Append(i+1, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Length)
	}
	return t
}

func diversityTable(d *analysis.Diversity) *Table {
	t := NewTable("Dimension", "Unique", "Total", "VarietyPct", "PlayedOnce", "PlayedRepeatedly")
	if d == nil || d.Artists.Total == 0 {
		return t
	}
	for _, row := range []struct {
		name   string
		spread analysis.Spread
	}{{"artists", d.Artists}, {"tracks", d.Tracks}} {
		s := row.spread
		t.Append(row.name, s.Unique, s.Total, round(s.VarietyPct(), 2), s.PlayedOnce, s.PlayedRepeatedly)
	}
	return t
}

func clockTable(clock *[24]int) *Table {
	t := NewTable("Hour", "Plays")
	if clock == nil {
		return t
	}
	total := 0
	for _, n := range clock {
		total += n
	}
	if total == 0 {
		return t
	}
	for h, n := range clock {
		t.Append(h, n)
	}
	return t
}

func monthlyTable(months []analysis.MonthlyArtist) *Table {
	t := NewTable("Month", "Artist", "Plays")
	for _, m := range months {
		t.Append(m.Month, m.Artist, m.Plays)
	}
	return t
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
