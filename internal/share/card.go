package share

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/render"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CardOptions controls artifact rendering.
type CardOptions struct {
	// FontPath is a UTF-8 TrueType font. The PDF core fonts only cover
	// Latin-1, so without one the PDF card falls back to English text.
	FontPath string
	Now      func() time.Time
}

func (o CardOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// FileName returns the download name for a result card.
func FileName(res calc.Result, ext string) string {
	return fmt.Sprintf("1rm-%s-%d.%s", res.Exercise, res.OneRepMax, ext)
}

// PDFLocale reports which locale the PDF card is rendered in.
func PDFLocale(l calc.Locale, opts CardOptions) calc.Locale {
	if opts.FontPath == "" {
		return calc.English
	}
	return l
}

// PDF renders the result card as a one-page PDF.
func PDF(res calc.Result, locale calc.Locale, opts CardOptions) (File, error) {
	locale = PDFLocale(locale, opts)
	t := i18n.For(locale)
	card := render.Card(res, t)

	pdf := gofpdf.New("L", "mm", "A5", "")
	family := "Helvetica"
	if opts.FontPath != "" {
		family = "CardFont"
		pdf.AddUTF8Font(family, "", opts.FontPath)
		pdf.AddUTF8Font(family, "B", opts.FontPath)
	}
	pdf.SetTitle(t.ShareTitle, true)
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, card.Heading)
	pdf.Ln(14)

	pdf.SetFont(family, "", 12)
	pdf.Cell(0, 7, card.Exercise)
	pdf.Ln(7)
	pdf.Cell(0, 7, card.Inputs)
	pdf.Ln(11)

	pdf.SetFont(family, "B", 20)
	pdf.Cell(0, 12, card.OneRepMax)
	pdf.Ln(16)

	pdf.SetFont(family, "", 9)
	pdf.Cell(0, 5, opts.now().Format("2006-01-02"))

	if pdf.Err() {
		return File{}, fmt.Errorf("rendering pdf card: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return File{}, fmt.Errorf("writing pdf card: %w", err)
	}
	return File{Name: FileName(res, "pdf"), MIME: MIMEPDF, Data: buf.Bytes()}, nil
}

// XLSX renders the result as a single-sheet workbook.
func XLSX(res calc.Result, locale calc.Locale, opts CardOptions) (File, error) {
	t := i18n.For(locale)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "1RM"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return File{}, fmt.Errorf("naming sheet: %w", err)
	}

	rows := [][]any{
		{t.ResultExercise, t.ExerciseName(res.Exercise)},
		{t.ResultWeight + " (kg)", res.Weight},
		{t.ResultReps, res.Reps},
		{t.Result1RM + " (kg)", res.OneRepMax},
		{"Date", opts.now().Format("2006-01-02")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return File{}, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return File{}, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return File{}, fmt.Errorf("creating style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return File{}, fmt.Errorf("styling header column: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return File{}, fmt.Errorf("sizing column: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, fmt.Errorf("writing workbook: %w", err)
	}
	return File{Name: FileName(res, "xlsx"), MIME: MIMEXLSX, Data: buf.Bytes()}, nil
}
