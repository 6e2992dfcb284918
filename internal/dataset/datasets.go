package dataset

import "encoding/json"

// Dataset names, in export order.
const (
	TopArtists        = "top_artists"
	TopTracks         = "top_tracks"
	TopAlbums         = "top_albums"
	RecentTracks      = "recent_tracks"
	Heatmap           = "heatmap"
	WeeklyComparison  = "weekly_comparison"
	Decades           = "decades"
	ScrobbleHistory   = "scrobble_history"
	Streaks           = "streaks"
	Diversity         = "diversity"
	ListeningClock    = "listening_clock"
	MonthlyTopArtists = "monthly_top_artists"
)

// HistoryNames are the datasets filled only when the full history is collected.
var HistoryNames = []string{ScrobbleHistory, Streaks, Diversity, ListeningClock, MonthlyTopArtists}

// IsHistory reports whether name is one of HistoryNames.
func IsHistory(name string) bool {
	for _, n := range HistoryNames {
		if n == name {
			return true
		}
	}
	return false
}

// Datasets maps unique names to tables and remembers insertion order.
type Datasets struct {
	names  []string
	tables map[string]*Table
}

func New() *Datasets {
	return &Datasets{tables: make(map[string]*Table)}
}

// Set adds or replaces a table. A nil table is stored as an empty one.
func (d *Datasets) Set(name string, t *Table) {
	if t == nil {
		t = &Table{}
	}
	if _, ok := d.tables[name]; !ok {
		d.names = append(d.names, name)
	}
	d.tables[name] = t
}

func (d *Datasets) Get(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Names lists every dataset, empty ones included.
func (d *Datasets) Names() []string {
	return append([]string(nil), d.names...)
}

// NonEmpty lists datasets that have at least one row.
func (d *Datasets) NonEmpty() []string {
	var names []string
	for _, n := range d.names {
		if !d.tables[n].Empty() {
			names = append(names, n)
		}
	}
	return names
}

// MarshalJSON writes {name: rows} for non-empty tables, in order.
func (d *Datasets) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, n := range d.NonEmpty() {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		rows, err := d.tables[n].MarshalJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, rows...)
	}
	return append(out, '}'), nil
}
