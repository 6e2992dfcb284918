package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ademuri/lastfm-dashboard/internal/dataset"
)

// maxSheetName is the spreadsheet limit on sheet name length.
const maxSheetName = 31

// SheetName truncates name to the sheet-name limit, suffixing a counter when
// the truncated name is already taken.
func SheetName(name string, taken map[string]bool) string {
	base := truncate(name, maxSheetName)
	candidate := base
	for i := 2; taken[candidate]; i++ {
		suffix := "_" + strconv.Itoa(i)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	taken[candidate] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func workbook(ds *dataset.Datasets) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	taken := make(map[string]bool)
	for i, name := range ds.NonEmpty() {
		t, _ := ds.Get(name)
		sheet := SheetName(name, taken)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, fmt.Errorf("naming sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("adding sheet %s: %w", sheet, err)
		}

		header := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("writing header of %s: %w", sheet, err)
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("writing row %d of %s: %w", r, sheet, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
