package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/report/xlsx"
)

func printReport(cmd *cobra.Command, report *domain.BatchReport) {
	out := cmd.OutOrStdout()

	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "warning: %s\n", skipped.Reason)
	}

	if report.TotalFiles == 0 {
		fmt.Fprintln(out, "No files to organize.")
		return
	}

	rows := make([][]string, 0, len(report.Summary))
	for _, category := range report.Summary.Categories() {
		rows = append(rows, []string{string(category), strconv.Itoa(report.Summary[category])})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Category", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "Organized %d file(s) in %s\n", report.TotalFiles, report.Duration.Round(time.Millisecond))

	if report.Archive != nil {
		fmt.Fprintf(out, "Archive: %s (%s)\n", report.Archive.Path, humanize.IBytes(uint64(max(report.Archive.Size, 0))))
	}
}

func printPlacements(cmd *cobra.Command, report *domain.BatchReport) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Placements))
	for _, p := range report.Placements {
		rows = append(rows, []string{p.Filename, string(p.Category), string(p.Tier)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"File", "Category", "Rule"}, rows, nil))
}

// writeReportFile saves the batch report as an xlsx workbook at path.
func writeReportFile(path string, report *domain.BatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := xlsx.Write(f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

func emitReport(cmd *cobra.Command, report *domain.BatchReport, asJSON, verbose bool, reportPath string) error {
	if reportPath != "" {
		if err := writeReportFile(reportPath, report); err != nil {
			return err
		}
	}
	if asJSON {
		return writeJSON(cmd, report)
	}
	if verbose && len(report.Placements) > 0 {
		printPlacements(cmd, report)
	}
	printReport(cmd, report)
	if reportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", reportPath)
	}
	return nil
}
