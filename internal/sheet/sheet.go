// Package sheet reads the tabular input file and derives the issues to
// create from it.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/willbl/issuesheet/internal/domain"
)

// Row maps column names (from the header row) to cell values.
type Row map[string]string

// Columns selects which input columns feed the issue title and body.
// Body column order is preserved in the rendered body.
type Columns struct {
	Title string
	Body  []string
}

// DefaultColumns returns the column names issuesheet looks for when the user
// does not configure their own.
func DefaultColumns() Columns {
	return Columns{
		Title: "Description:",
		Body:  []string{"Type:", "Category:", "Priority:", "Notes:", "Attachments:"},
	}
}

// Read parses CSV input. The first row is the header; every following row
// becomes a Row keyed by the header names, in input order. Rows shorter than
// the header are padded with empty cells rather than rejected.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+2, err)
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeriveRecords maps rows to IssueRecords. The title is the title column's
// cell; the body is one "<columnName> <cellValue>" line per body column,
// joined by newlines with trailing whitespace trimmed. Configured columns
// missing from the header yield empty values, not an error.
func DeriveRecords(rows []Row, cols Columns) []domain.IssueRecord {
	records := make([]domain.IssueRecord, len(rows))
	for i, row := range rows {
		lines := make([]string, len(cols.Body))
		for j, name := range cols.Body {
			lines[j] = strings.TrimRight(name+" "+row[name], " \t")
		}
		records[i] = domain.IssueRecord{
			Title: row[cols.Title],
			Body:  strings.TrimRight(strings.Join(lines, "\n"), " \t\n"),
		}
	}
	return records
}
