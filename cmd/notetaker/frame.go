package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ai-note-taker/internal/capture"
)

func (a *app) newFrameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Send captured frames to the backend",
	}

	cmd.AddCommand(a.newFrameUploadCmd(), a.newFrameWatchCmd())
	return cmd
}

func (a *app) newFrameUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload one image for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			result, ok := capture.UploadFrame(ctx, a.sync(""), args[0])
			if !ok {
				return fmt.Errorf("failed to upload %s, see log output", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s (%s, %d bytes)\n", result.Filename, result.ContentType, result.Size)
			if result.Note != nil {
				fmt.Fprintf(out, "Created note %s %q\n", result.Note.ID, result.Note.Title)
			}
			return nil
		},
	}
}

func (a *app) newFrameWatchCmd() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Upload every new image written under DIR",
		Long: `Watch DIR recursively and upload each new or rewritten file matching
--pattern. Runs until interrupted.

Examples:
  notetaker frame watch ./screenshots
  notetaker frame watch ./captures --pattern '**/*.png'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pattern == "" {
				pattern = a.cfg.FramePattern
			}

			w, err := capture.NewFrameWatcher(args[0], pattern, a.sync(""))
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for %s\n", args[0], pattern)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "glob of files to upload (default from frame_pattern)")
	return cmd
}
