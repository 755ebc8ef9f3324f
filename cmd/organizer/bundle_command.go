package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/bootstrap"
	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/localfs"
)

func newBundleCommand(ctx *commandContext) *cobra.Command {
	var (
		output     string
		asJSON     bool
		verbose    bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "bundle <file>...",
		Short: "Organize copies of the given files into a zip archive",
		Long: "bundle stages the given files in a temporary folder, sorts them into " +
			"category folders and writes the result as a zip archive. Files over " +
			"the size limit are skipped with a warning. The originals are not touched.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, closeAll, err := openUploads(args)
			defer closeAll()
			if err != nil {
				return err
			}

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			organizer, err := bootstrap.NewOrganizer(cfg, localfs.FileSink{Path: output}, nil)
			if err != nil {
				return err
			}

			report, err := organizer.Organize(cmd.Context(), uploads)
			if err != nil {
				if report != nil {
					for _, skipped := range report.Skipped {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", skipped.Reason)
					}
				}
				return err
			}
			return emitReport(cmd, report, asJSON, verbose, reportPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", domain.ArchiveDownloadName, "Archive path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every file with its category")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an xlsx report to this path")
	return cmd
}

func openUploads(paths []string) ([]domain.Upload, func(), error) {
	files := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]domain.Upload, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, closeAll, fmt.Errorf("open %s: %w", path, err)
		}
		files = append(files, f)

		info, err := f.Stat()
		if err != nil {
			return nil, closeAll, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, closeAll, fmt.Errorf("%s is a directory; use organize for folders", path)
		}
		uploads = append(uploads, domain.Upload{
			Filename: filepath.Base(path),
			Size:     info.Size(),
			Body:     f,
		})
	}
	return uploads, closeAll, nil
}
