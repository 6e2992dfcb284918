package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

func tableCSV(t *dataset.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for i := range t.Rows {
		if err := w.Write(t.Strings(i)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

type zipEntry struct {
	name string
	data []byte
}

func zipFiles(entries []zipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", e.name, err)
		}
		if _, err := f.Write(e.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// csvEntries renders one CSV per non-empty dataset, named by nameFor.
func csvEntries(ds *dataset.Datasets, nameFor func(string) string) ([]zipEntry, error) {
	var entries []zipEntry
	for _, name := range ds.NonEmpty() {
		t, _ := ds.Get(name)
		data, err := tableCSV(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		entries = append(entries, zipEntry{name: nameFor(name), data: data})
	}
	return entries, nil
}

func csvBundle(ds *dataset.Datasets, user string) ([]byte, error) {
	entries, err := csvEntries(ds, func(name string) string { return fmt.Sprintf("%s_%s.csv", user, name) })
	if err != nil {
		return nil, err
	}
	return zipFiles(entries)
}

func jsonDocument(ds *dataset.Datasets) ([]byte, error) {
	compact, err := json.Marshal(ds)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func plainCSVName(name string) string { return name + ".csv" }

func powerBIBundle(ds *dataset.Datasets, user string) ([]byte, error) {
	entries, err := csvEntries(ds, plainCSVName)
	if err != nil {
		return nil, err
	}

	var readme strings.Builder
	fmt.Fprintf(&readme, "Last.fm listening data for %s\n\n", user)
	readme.WriteString("Load into Power BI with Get Data > Text/CSV, one query per file:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&readme, "  - %s\n", e.name)
	}
	readme.WriteString("\nEvery file has a header row and is UTF-8 encoded.\n")

	entries = append(entries, zipEntry{name: "README.txt", data: []byte(readme.String())})
	return zipFiles(entries)
}

type twbWorkbook struct {
	XMLName     xml.Name        `xml:"workbook"`
	Datasources []twbDatasource `xml:"datasources>datasource"`
}

type twbDatasource struct {
	Name       string        `xml:"name,attr"`
	Connection twbConnection `xml:"connection"`
}

type twbConnection struct {
	Class string `xml:"class,attr"`
	File  string `xml:"file,attr"`
}

// tableauWorkbook builds a workbook descriptor connecting to each CSV file.
func tableauWorkbook(names []string) ([]byte, error) {
	wb := twbWorkbook{}
	for _, n := range names {
		wb.Datasources = append(wb.Datasources, twbDatasource{
			Name:       n,
			Connection: twbConnection{Class: "csv", File: plainCSVName(n)},
		})
	}
	body, err := xml.MarshalIndent(wb, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func tableauBundle(ds *dataset.Datasets, user string) ([]byte, error) {
	entries, err := csvEntries(ds, plainCSVName)
	if err != nil {
		return nil, err
	}
	twb, err := tableauWorkbook(ds.NonEmpty())
	if err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	entries = append(entries, zipEntry{name: user + "_tableau.twb", data: twb})
	return zipFiles(entries)
}
