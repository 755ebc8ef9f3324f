package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/bootstrap"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		withArchive bool
		asJSON      bool
		verbose     bool
		reportPath  string
	)

	cmd := &cobra.Command{
		Use:   "organize <dir>",
		Short: "Move the files directly inside dir into category subfolders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("open %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			lock, err := lockDir(dir)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					slog.Warn("lock_release_failed", "dir", dir, "error", err)
				}
			}()

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			organizer, err := bootstrap.NewOrganizer(cfg, nil, nil)
			if err != nil {
				return err
			}

			report, err := organizer.OrganizeInPlace(cmd.Context(), dir, withArchive)
			if err != nil {
				return err
			}
			return emitReport(cmd, report, asJSON, verbose, reportPath)
		},
	}

	cmd.Flags().BoolVar(&withArchive, "archive", false, "Also write <dir>.zip of the organized folder")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every file with its category")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an xlsx report to this path")
	return cmd
}
