// Package xlsx renders a batch report as a spreadsheet.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Summary"
	filesSheet   = "Files"
	skippedSheet = "Skipped"
)

// Write emits a workbook with per-category counts, one row per routed file
// and, when present, the skipped uploads.
func Write(w io.Writer, report *domain.BatchReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summaryRows := [][]any{{"Category", "Files"}}
	for _, category := range report.Summary.Categories() {
		summaryRows = append(summaryRows, []any{string(category), report.Summary[category]})
	}
	summaryRows = append(summaryRows, []any{"Total", report.TotalFiles})
	if err := writeRows(f, summarySheet, summaryRows, header); err != nil {
		return err
	}

	if _, err := f.NewSheet(filesSheet); err != nil {
		return fmt.Errorf("create files sheet: %w", err)
	}
	fileRows := [][]any{{"File", "Stored As", "Category", "Tier"}}
	for _, placement := range report.Placements {
		fileRows = append(fileRows, []any{placement.Filename, placement.Stored, string(placement.Category), string(placement.Tier)})
	}
	if err := writeRows(f, filesSheet, fileRows, header); err != nil {
		return err
	}

	if len(report.Skipped) > 0 {
		if _, err := f.NewSheet(skippedSheet); err != nil {
			return fmt.Errorf("create skipped sheet: %w", err)
		}
		skippedRows := [][]any{{"File", "Size (bytes)", "Reason"}}
		for _, skipped := range report.Skipped {
			skippedRows = append(skippedRows, []any{skipped.Filename, skipped.Size, skipped.Reason})
		}
		if err := writeRows(f, skippedSheet, skippedRows, header); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(filesSheet, "A", "B", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
