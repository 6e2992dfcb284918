package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

// RenderTable writes t as an ASCII table.
func RenderTable(w io.Writer, t *dataset.Table) error {
	table := tablewriter.NewWriter(w)
	table.Header(t.Columns)
	for i := range t.Rows {
		if err := table.Append(t.Strings(i)); err != nil {
			return err
		}
	}
	return table.Render()
}

func textReport(ds *dataset.Datasets) ([]byte, error) {
	out := new(bytes.Buffer)
	for _, name := range ds.NonEmpty() {
		t, _ := ds.Get(name)
		fmt.Fprintf(out, "\nDataset: %s\n", name)
		if err := RenderTable(out, t); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		out.WriteString(strings.Repeat("=", 50) + "\n")
	}
	return out.Bytes(), nil
}
