package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

func newCategoriesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the content labels and the extension table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"ai_labels":            domain.AILabels(),
					"extension_groups":     domain.ExtensionGroups,
					"fallback":             domain.FallbackCategory,
					"confidence_threshold": domain.ConfidenceThreshold,
					"max_classify_chars":   domain.MaxClassifyChars,
					"max_file_size":        domain.MaxFileSize,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Content labels for %s (confidence above %.1f): %s\n\n",
				strings.Join(domain.ContentExtensions, ", "),
				domain.ConfidenceThreshold,
				strings.Join(domain.AILabels(), ", "),
			)

			rows := make([][]string, 0, len(domain.ExtensionGroups)+1)
			for _, group := range domain.ExtensionGroups {
				rows = append(rows, []string{string(group.Category), strings.Join(group.Extensions, " ")})
			}
			rows = append(rows, []string{string(domain.FallbackCategory), "anything else"})
			fmt.Fprintln(out, renderTable(out, []string{"Folder", "Extensions"}, rows, nil))
			fmt.Fprintf(out, "Uploads larger than %s are skipped.\n", humanize.IBytes(domain.MaxFileSize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
