package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ai-note-taker/internal/syncclient"
)

func (a *app) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print notes pushed by the backend",
		Long: `Connect to the push channel and print every delivery until the
channel closes or the command is interrupted. Messages that do not decode
to a note are printed with a [malformed] tag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			push := syncclient.OpenPushChannel(ctx, a.cfg.WSURL, nil)
			defer push.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s\n", a.cfg.WSURL)
			for delivery := range push.Deliveries() {
				printDelivery(out, delivery)
			}
			fmt.Fprintln(out, "Push channel closed")
			return nil
		},
	}
}

func printDelivery(out io.Writer, d syncclient.Delivery) {
	if !d.Valid() {
		fmt.Fprintf(out, "[%s] %v: %q\n", d.Status, d.Err, d.Raw)
		return
	}
	fmt.Fprintf(out, "[%s] %s %s %q\n", d.Status, d.Note.ID, d.Note.Type, d.Note.Title)
}
