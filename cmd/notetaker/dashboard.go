package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ai-note-taker/internal/capture"
	"ai-note-taker/internal/dashboard"
	"ai-note-taker/internal/session"
	"ai-note-taker/internal/ui"
)

var dashboardLogFile = filepath.Join(os.TempDir(), "notetaker.log")

func (a *app) newDashboardCmd() *cobra.Command {
	logFile := dashboardLogFile

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal dashboard (default)",
		Long: `Open the terminal dashboard.

Keys:
  c          toggle capture
  p / t      export notes as PDF / TXT
  enter      open the highlighted note in the editor
  tab        switch between list and editor
  ctrl-s     save the editor contents
  q / esc    quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd, logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", logFile, "where to write logs while the dashboard owns the terminal")
	return cmd
}

func (a *app) runDashboard(cmd *cobra.Command, logFile string) error {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	store := session.NewStore(a.cfg.CaptureEnabled)
	defer store.Close()

	syncer := a.sync("")
	sim := capture.NewSimulator(a.cfg.CaptureInterval, capture.NewGenerator(nil, nil), syncer, store)
	d := dashboard.New(store, syncer, sim, dashboard.Options{PushURL: a.cfg.WSURL})
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	view := ui.New(ctx, d)
	go func() {
		<-ctx.Done()
		view.Stop()
	}()

	log.Printf("[Dashboard] Session started against %s", a.cfg.APIURL)
	err = view.Run()
	cancel()
	return err
}
