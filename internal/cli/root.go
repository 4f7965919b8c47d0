package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bandline/internal/config"
	"bandline/internal/store"
	"bandline/internal/tui"
)

type App struct {
	DataPath   string
	ConfigPath string
}

func (a *App) loadConfig() (config.Config, error) {
	return config.Load(a.ConfigPath)
}

func (a *App) openStore() (*store.Store, error) {
	return store.Open(a.DataPath)
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "bandline",
		Short:        "Terminal timeline viewer for resource schedules",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Seed a demo dataset, then view it
  bandline init
  bandline

  # Render one frame to stdout (scripts, diffs)
  bandline snapshot --width 160

  # Keep data in SQLite instead of JSON
  bandline --data schedule.sqlite init
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive viewer.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runView(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DataPath, "data", envOr("BANDLINE_DATA", "bandline.json"), "Path to the dataset (.json, .sqlite or .db)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("BANDLINE_CONFIG", "bandline.yaml"), "Path to the viewer config (missing file means defaults)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))

	return cmd
}

func runView(app *App) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	st, err := app.openStore()
	if err != nil {
		return err
	}
	return tui.Run(st, cfg, app.DataPath)
}

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the interactive viewer (same as running with no subcommand)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(app)
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Execute runs the root command. Cobra prints the error itself; the exit
// code is all that is left to report.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
