package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ai-note-taker/internal/domain"
)

func (a *app) newListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the notes stored in the backend",
		Long: `List the notes stored in the backend, newest first.

Examples:
  notetaker list
  notetaker list --output json
  notetaker list --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			notes, err := a.client().List(ctx)
			if err != nil {
				return err
			}
			return renderNotes(cmd.OutOrStdout(), notes, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

// yamlNote fixes the field names used in YAML output.
type yamlNote struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	Timestamp string `yaml:"timestamp"`
	Source    string `yaml:"source,omitempty"`
	Content   string `yaml:"content"`
}

func renderNotes(w io.Writer, notes []domain.Note, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(notes)

	case "yaml":
		out := make([]yamlNote, 0, len(notes))
		for _, n := range notes {
			out = append(out, yamlNote{
				ID:        n.ID,
				Title:     n.Title,
				Type:      string(n.Type),
				Timestamp: n.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
				Source:    n.Source,
				Content:   n.Content,
			})
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()

	case "table", "":
		if len(notes) == 0 {
			fmt.Fprintln(w, "No notes found")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tCREATED\tTITLE\tSOURCE")
		for _, n := range notes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Type, n.Timestamp.Format("2006-01-02 15:04"), n.Title, n.Source)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d notes\n", len(notes))
		return nil

	default:
		return fmt.Errorf("unknown output format %q (want %s)", output, strings.Join([]string{"table", "json", "yaml"}, ", "))
	}
}
