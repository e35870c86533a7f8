package batch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestEstimate(t *testing.T) {
	buf := workbook(t, [][]any{
		{"exercise", "weight", "reps"},
		{"bench_press", 100, 5},
		{"Squat", "140", "3"},
		{"deadlift", -1, 5},
		{"", "", ""},
		{"curl", 30, 8},
		{"deadlift", 200, 12},
	})

	report, err := Estimate(buf)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if report.Count != 5 {
		t.Fatalf("Count = %d, want 5", report.Count)
	}
	if report.Failed != 3 {
		t.Errorf("Failed = %d, want 3", report.Failed)
	}

	want := []struct {
		line  int
		orm   int
		error string
	}{
		{2, 117, ""},
		{3, 154, ""},
		{4, 0, "invalid_weight"},
		{6, 0, "missing_exercise"},
		{7, 0, "invalid_reps"},
	}
	for i, w := range want {
		row := report.Rows[i]
		if row.Line != w.line {
			t.Errorf("row %d line = %d, want %d", i, row.Line, w.line)
		}
		if w.error != "" {
			if row.Error != w.error || row.Result != nil {
				t.Errorf("row %d = (%v, %q), want error %q", i, row.Result, row.Error, w.error)
			}
			continue
		}
		if row.Result == nil {
			t.Errorf("row %d has no result (error %q)", i, row.Error)
			continue
		}
		if row.Result.OneRepMax != w.orm {
			t.Errorf("row %d 1RM = %d, want %d", i, row.Result.OneRepMax, w.orm)
		}
	}
}

func TestEstimateWithoutHeader(t *testing.T) {
	report, err := Estimate(workbook(t, [][]any{{"squat", 60, 1}}))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if report.Rows[0].Line != 1 || report.Rows[0].Result == nil || report.Rows[0].Result.OneRepMax != 62 {
		t.Errorf("row = %+v", report.Rows[0])
	}
}

func TestEstimateEmpty(t *testing.T) {
	_, err := Estimate(workbook(t, [][]any{{"exercise", "weight", "reps"}}))
	if !errors.Is(err, ErrEmptySheet) {
		t.Errorf("error = %v, want ErrEmptySheet", err)
	}
}

func TestEstimateNotAWorkbook(t *testing.T) {
	if _, err := Estimate(bytes.NewBufferString("exercise,weight,reps")); err == nil {
		t.Error("expected error for non-xlsx input")
	}
}

func TestEstimateRowCap(t *testing.T) {
	rows := make([][]any, 0, MaxRows+1)
	for i := 0; i < MaxRows; i++ {
		rows = append(rows, []any{"squat", 100, 5})
	}
	report, err := Estimate(workbook(t, rows))
	if err != nil {
		t.Fatalf("Estimate at the cap: %v", err)
	}
	if report.Count != MaxRows {
		t.Errorf("count = %d, want %d", report.Count, MaxRows)
	}

	rows = append(rows, []any{"squat", 100, 5})
	if _, err := Estimate(workbook(t, rows)); !errors.Is(err, ErrTooManyRows) {
		t.Errorf("error = %v, want ErrTooManyRows", err)
	}
}
