// Package batch estimates one-rep maxes for every row of an uploaded sheet.
package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/claude/onerm/internal/calc"
)

// ErrEmptySheet is returned when the workbook has no data rows.
var ErrEmptySheet = errors.New("empty sheet")

// ErrTooManyRows is returned when the sheet holds more than MaxRows data rows.
var ErrTooManyRows = errors.New("too many rows")

const (
	// MaxRows caps the data rows estimated from one workbook.
	MaxRows = 1000
	// maxUnzipped caps the decompressed size of a workbook.
	maxUnzipped = 64 << 20
)

// Row is the outcome for one sheet line. Exactly one of Result and Error is set.
type Row struct {
	Line   int          `json:"line"`
	Input  calc.Input   `json:"input"`
	Result *calc.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type Report struct {
	Count  int   `json:"count"`
	Failed int   `json:"failed"`
	Rows   []Row `json:"rows"`
}

// Estimate reads the first sheet of an xlsx workbook with columns
// exercise, weight, reps. A first row whose exercise cell is not a known
// exercise id is treated as a header. Each row is validated exactly like a
// form submit.
func Estimate(r io.Reader) (*Report, error) {
	f, err := excelize.OpenReader(r, excelize.Options{UnzipSizeLimit: maxUnzipped})
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.Rows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	defer rows.Close()

	report := &Report{}
	for line := 1; rows.Next(); line++ {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		if blank(cells) {
			continue
		}
		if line == 1 {
			if _, ok := calc.ParseExercise(cleanID(cells[0])); !ok {
				// header
				continue
			}
		}
		if len(report.Rows) == MaxRows {
			return nil, fmt.Errorf("%w: more than %d", ErrTooManyRows, MaxRows)
		}
		row := estimateRow(line, cells)
		if row.Result == nil {
			report.Failed++
		}
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(report.Rows) == 0 {
		return nil, ErrEmptySheet
	}
	report.Count = len(report.Rows)
	return report, nil
}

func estimateRow(line int, cells []string) Row {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	row := Row{Line: line, Input: calc.Input{Weight: cell(1), Reps: cell(2)}}
	if e, ok := calc.ParseExercise(cleanID(cell(0))); ok {
		row.Input.Exercise = e
	}

	res, err := calc.Estimate(row.Input)
	if err != nil {
		var kind calc.ErrorKind
		if errors.As(err, &kind) {
			row.Error = kind.String()
		} else {
			row.Error = err.Error()
		}
		return row
	}
	row.Result = &res
	return row
}

// cleanID accepts "Bench Press" style labels as well as wire ids.
func cleanID(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
