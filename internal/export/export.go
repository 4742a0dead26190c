package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"docbud-go/internal/format"
	"docbud-go/internal/types"
)

const (
	transcriptSheet = "Transcript"
	cleanupSheet    = "Cleanup"
)

// WriteTranscript writes the final transcript text file.
func WriteTranscript(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// WriteWorkbook writes the labeled transcript and the cleanup attempt log as
// a two sheet review workbook.
func WriteWorkbook(path string, assignments []types.Assignment, attempts []types.Attempt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transcriptSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	setRow(f, transcriptSheet, 1, "Timestamp", "Speaker", "Start", "End", "Text")
	for i, a := range assignments {
		setRow(f, transcriptSheet, i+2, format.Timestamp(a.Start), a.Speaker, a.Start, a.End, a.Text)
	}

	if _, err := f.NewSheet(cleanupSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	setRow(f, cleanupSheet, 1, "Backend", "Outcome", "Error Kind", "Detail")
	for i, at := range attempts {
		setRow(f, cleanupSheet, i+2, at.Backend, string(at.Outcome), string(at.Kind), at.Detail)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
