package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/okian/wardwatch/internal/domain/calendar"
	"github.com/okian/wardwatch/internal/domain/model"
)

// Column layout of the attendance export: name;department;title;date.
const (
	colName = iota
	colDepartment
	colTitle
	colDate
	columnCount
)

// SkippedLine explains why an input line was not imported.
type SkippedLine struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport summarises a CSV import.
type ImportReport struct {
	Lines    int           `json:"lines"`
	Accepted int           `json:"accepted"`
	Rows     int           `json:"rows"`
	Skipped  []SkippedLine `json:"skipped,omitempty"`
}

// ImportCSV groups attendance lines into one TrainingRow per
// (title, date, department) in first-seen order, names appended to Planned in
// file order. The header line is skipped; malformed lines are reported, not fatal.
func ImportCSV(r io.Reader, newID func() string) ([]model.TrainingRow, ImportReport, error) {
	var report ImportReport

	// Spreadsheet exports often start with a UTF-8 BOM.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, report, ErrEmptyImport
		}
		return nil, report, fmt.Errorf("read header: %w", err)
	}

	var (
		rows  []model.TrainingRow
		index = map[groupKey]int{}
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Lines++
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, report, fmt.Errorf("read line: %w", err)
			}
			report.Skipped = append(report.Skipped, SkippedLine{Line: perr.Line, Reason: perr.Err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)
		name, key, reason := parseLine(rec)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedLine{Line: line, Reason: reason})
			continue
		}
		report.Accepted++
		if i, ok := index[key]; ok {
			rows[i].Planned = append(rows[i].Planned, name)
			continue
		}
		index[key] = len(rows)
		rows = append(rows, model.TrainingRow{
			ID:               newID(),
			Title:            key.title,
			Date:             key.date,
			Department:       key.department,
			Planned:          []string{name},
			Present:          []string{},
			AbsentsMotivated: []string{},
		})
	}
	report.Rows = len(rows)
	return rows, report, nil
}

func parseLine(rec []string) (string, groupKey, string) {
	if len(rec) < columnCount {
		return "", groupKey{}, fmt.Sprintf("expected %d columns, got %d", columnCount, len(rec))
	}
	name := strings.TrimSpace(rec[colName])
	key := groupKey{
		title:      strings.TrimSpace(rec[colTitle]),
		date:       strings.TrimSpace(rec[colDate]),
		department: strings.TrimSpace(rec[colDepartment]),
	}
	switch {
	case name == "":
		return "", key, "missing name"
	case key.title == "":
		return "", key, "missing title"
	case !calendar.Valid(key.date):
		return "", key, fmt.Sprintf("invalid date %q", key.date)
	}
	return name, key, ""
}
