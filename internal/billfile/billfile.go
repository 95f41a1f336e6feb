// Package billfile reads batches of bills from spreadsheet exports. Clinics
// hand these over as XLSX or CSV with one bill per row.
package billfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/salus-health/benefits-cli/internal/model"
)

// Entry is one bill row plus the identifiers needed to coordinate it.
type Entry struct {
	PolicyID string
	Region   string
	Bill     model.BillRecord
}

// Columns, in order: policy_id, region, provider, date_of_service, total,
// services (semicolon-separated). A header row is detected by a non-numeric
// total column and skipped.
const numColumns = 6

// Read parses the file at path, dispatching on extension (.xlsx or .csv).
func Read(path string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv":
		return ReadCSV(path)
	default:
		return nil, eris.Errorf("billfile: unsupported file type: %s", path)
	}
}

// ReadXLSX reads bill rows from the first sheet of an XLSX file.
func ReadXLSX(path string) ([]Entry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "billfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("billfile: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rowsToEntries(rows)
}

// ReadCSV reads bill rows from a CSV file.
func ReadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "billfile: open csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "billfile: read csv")
	}
	return rowsToEntries(rows)
}

func rowsToEntries(rows [][]string) ([]Entry, error) {
	var out []Entry
	for i, row := range rows {
		if len(row) < numColumns {
			continue
		}
		total, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, eris.Errorf("billfile: row %d: bad total %q", i+1, row[4])
		}

		var services []string
		for _, s := range strings.Split(row[5], ";") {
			if s = strings.TrimSpace(s); s != "" {
				services = append(services, s)
			}
		}

		out = append(out, Entry{
			PolicyID: strings.TrimSpace(row[0]),
			Region:   strings.TrimSpace(row[1]),
			Bill: model.BillRecord{
				Provider:      strings.TrimSpace(row[2]),
				DateOfService: strings.TrimSpace(row[3]),
				Total:         total,
				Services:      services,
			},
		})
	}
	return out, nil
}
