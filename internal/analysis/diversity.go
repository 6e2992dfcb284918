package analysis

import "github.com/ademuri/lastfm-dashboard/internal/scrobbles"

// Spread describes how plays are spread over one dimension (artists or tracks).
type Spread struct {
	Unique           int
	Total            int
	PlayedOnce       int
	PlayedRepeatedly int
}

// VarietyPct is Unique/Total as a percentage, 0 for no plays.
func (s Spread) VarietyPct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Unique) / float64(s.Total) * 100
}

type Diversity struct {
	Artists Spread
	Tracks  Spread
}

// MeasureDiversity counts unique artists and (artist, track) pairs.
func MeasureDiversity(records []scrobbles.Record) Diversity {
	artists := make(map[string]int)
	tracks := make(map[trackKey]int)
	for _, r := range records {
		artists[r.Artist]++
		tracks[trackKey{r.Artist, r.Track}]++
	}
	return Diversity{
		Artists: spreadOf(artists, len(records)),
		Tracks:  spreadOf(tracks, len(records)),
	}
}

func spreadOf[K comparable](counts map[K]int, total int) Spread {
	s := Spread{Unique: len(counts), Total: total}
	for _, n := range counts {
		if n == 1 {
			s.PlayedOnce++
		} else {
			s.PlayedRepeatedly++
		}
	}
	return s
}
