// Package export serializes named datasets into downloadable documents.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

type Format string

const (
	FormatCSV       Format = "csv"
	FormatJSON      Format = "json"
	FormatXLSX      Format = "xlsx"
	FormatPowerBI   Format = "powerbi"
	FormatTableau   Format = "tableau"
	FormatText      Format = "txt"
	FormatSQLite    Format = "sqlite"
	FormatScrobbles Format = "scrobbles-csv"
)

var Formats = []Format{
	FormatCSV, FormatJSON, FormatXLSX, FormatPowerBI, FormatTableau, FormatText, FormatSQLite, FormatScrobbles,
}

var aliases = map[string]Format{
	"excel": FormatXLSX,
	"pbix":  FormatPowerBI,
	"twb":   FormatTableau,
	"text":  FormatText,
	"db":    FormatSQLite,
}

func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	if f, ok := aliases[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("invalid export format %q (want one of %v)", s, Formats)
}

const (
	mimeCSV    = "text/csv"
	mimeJSON   = "application/json"
	mimeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeZip    = "application/zip"
	mimeText   = "text/plain"
	mimeSQLite = "application/vnd.sqlite3"

	// TimestampLayout stamps generated filenames.
	TimestampLayout = "20060102_150405"
)

// ErrNothingToExport is returned when every dataset is empty.
var ErrNothingToExport = errors.New("no data to export")

// Artifact is one serialized export.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// fileSafe replaces path separators so user can be embedded in file names.
func fileSafe(user string) string {
	return pathSeparators.Replace(user)
}

// Serialize renders the non-empty datasets of ds in format. Empty datasets
// are skipped; if nothing is left, ErrNothingToExport is returned.
func Serialize(ds *dataset.Datasets, format Format, user string, now time.Time) (*Artifact, error) {
	raw := user
	user = fileSafe(user)
	if format == FormatScrobbles {
		return scrobbleCSV(ds, user)
	}
	if len(ds.NonEmpty()) == 0 {
		return nil, ErrNothingToExport
	}

	stamp := now.Format(TimestampLayout)
	var (
		data []byte
		err  error
		a    = &Artifact{}
	)
	switch format {
	case FormatCSV:
		data, err = csvBundle(ds, user)
		a.Filename, a.MIME = fmt.Sprintf("%s_data_%s.zip", user, stamp), mimeZip
	case FormatJSON:
		data, err = jsonDocument(ds)
		a.Filename, a.MIME = fmt.Sprintf("%s_data_%s.json", user, stamp), mimeJSON
	case FormatXLSX:
		data, err = workbook(ds)
		a.Filename, a.MIME = fmt.Sprintf("%s_data_%s.xlsx", user, stamp), mimeXLSX
	case FormatPowerBI:
		data, err = powerBIBundle(ds, user)
		a.Filename, a.MIME = fmt.Sprintf("%s_powerbi_%s.zip", user, stamp), mimeZip
	case FormatTableau:
		data, err = tableauBundle(ds, user)
		a.Filename, a.MIME = fmt.Sprintf("%s_tableau_%s.zip", user, stamp), mimeZip
	case FormatText:
		data, err = textReport(ds)
		a.Filename, a.MIME = fmt.Sprintf("%s_data_%s.txt", user, stamp), mimeText
	case FormatSQLite:
		data, err = sqliteFile(ds, raw, now)
		a.Filename, a.MIME = fmt.Sprintf("%s_data_%s.db", user, stamp), mimeSQLite
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", format, err)
	}
	a.Data = data
	return a, nil
}

func scrobbleCSV(ds *dataset.Datasets, user string) (*Artifact, error) {
	t, ok := ds.Get(dataset.ScrobbleHistory)
	if !ok || t.Empty() {
		return nil, ErrNothingToExport
	}
	data, err := tableCSV(t)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", FormatScrobbles, err)
	}
	return &Artifact{Filename: user + "_scrobbles.csv", MIME: mimeCSV, Data: data}, nil
}
