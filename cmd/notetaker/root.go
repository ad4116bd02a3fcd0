package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ai-note-taker/internal/config"
	"ai-note-taker/internal/syncclient"
)

// app carries what every subcommand needs: the viper instance the flags
// are bound to and the resolved configuration.
type app struct {
	v         *viper.Viper
	cfgFile   string
	noCapture bool
	cfg       *config.ClientConfig
}

func newRootCmd() *cobra.Command {
	cmd, _ := buildRootCmd()
	return cmd
}

func buildRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "notetaker",
		Short: "Capture lecture notes into a live session",
		Long: `notetaker runs a note taking session against the AI note taker backend.

Notes are captured from lecture material every capture interval, persisted
to the backend and shown in a terminal dashboard together with notes the
backend pushes over its websocket channel.

Examples:
  notetaker
  notetaker list --output yaml
  notetaker export --format pdf --dir ~/lectures
  notetaker frame watch ./screenshots`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd, dashboardLogFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/notetaker/config.yaml)")
	flags.String("api-url", config.DefaultAPIURL, "backend base URL")
	flags.String("ws-url", "", "push channel URL (default derived from --api-url)")
	flags.Duration("capture-interval", config.DefaultCaptureInterval, "time between simulated captures")
	flags.BoolVar(&a.noCapture, "no-capture", false, "start the session with capture turned off")

	a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	a.v.BindPFlag("ws_url", flags.Lookup("ws-url"))
	a.v.BindPFlag("capture_interval", flags.Lookup("capture-interval"))

	rootCmd.AddCommand(
		a.newDashboardCmd(),
		a.newListCmd(),
		a.newExportCmd(),
		a.newWatchCmd(),
		a.newFrameCmd(),
	)
	return rootCmd, a
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "notetaker"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	config.SetClientDefaults(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.LoadClient(a.v)
	if err != nil {
		return err
	}
	if a.noCapture {
		cfg.CaptureEnabled = false
	}
	a.cfg = cfg
	return nil
}

func (a *app) client() *syncclient.Client {
	return syncclient.NewClient(a.cfg.APIURL, a.cfg.HTTPTimeout)
}

func (a *app) sync(exportDir string) *syncclient.Sync {
	if exportDir == "" {
		exportDir = a.cfg.ExportDir
	}
	return syncclient.NewSync(a.client(), exportDir)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
