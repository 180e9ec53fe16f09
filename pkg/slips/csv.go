package slips

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/matzehuels/slipmap/pkg/errors"
)

const durationColumn = "duration"

// ReadCSV reads a slip table with a header row.
//
// Header names are matched case-insensitively; "Task", "Project" and
// "Duration" fill the named Record fields and every other column lands in
// Record.Extra. A Duration column is required. Cell values are kept
// verbatim so that grouping stays exact. Rows shorter than the header leave
// the missing cells empty.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slip table is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read slip table header")
	}

	cols := make([]string, len(header))
	hasDuration := false
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[i] = name
		if name == durationColumn {
			hasDuration = true
		}
	}
	if !hasDuration {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slip table has no %q column (columns: %s)",
			"Duration", strings.Join(header, ", "))
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read slip table row %d", len(records)+1)
		}
		records = append(records, recordFromRow(cols, row))
	}
	return records, nil
}

func recordFromRow(cols, row []string) Record {
	var rec Record
	for i, name := range cols {
		if i >= len(row) {
			break
		}
		cell := row[i]
		switch Key(name) {
		case KeyTask:
			rec.Task = cell
		case KeyProject:
			rec.Project = cell
		case durationColumn:
			rec.Duration = cell
		default:
			if name == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[name] = cell
		}
	}
	return rec
}
