package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ai-note-taker/internal/domain"
)

func (a *app) newExportCmd() *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all notes as PDF or plain text",
		Long: `Download all notes from the backend and save them as notes.<format>.

Examples:
  notetaker export --format txt
  notetaker export --format pdf --dir ~/lectures`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := domain.ParseExportFormat(format)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			path := a.sync(dir).ExportNotes(ctx, f)
			if path == "" {
				return fmt.Errorf("export to %s failed, see log output", f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported notes to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(domain.ExportTXT), "export format: pdf or txt")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to save into (default from export_dir)")
	return cmd
}
