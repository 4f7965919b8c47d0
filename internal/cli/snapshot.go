package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bandline/internal/tui"
)

func newSnapshotCmd(app *App) *cobra.Command {
	var width, height int
	var format string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame to stdout without entering the terminal UI",
		Long: "Renders the timeline once. The virtualization buffer is zero, so the\n" +
			"output holds exactly what a viewport of the given size would show.\n" +
			"Text output is the terminal frame; JSON output is the placed geometry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			st, err := app.openStore()
			if err != nil {
				return err
			}
			switch format {
			case "text":
				out, err := tui.Snapshot(st, cfg, width, height)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			case "json":
				out, err := tui.SnapshotJSON(st, cfg, width, height)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 120, "Frame width in columns")
	cmd.Flags().IntVar(&height, "height", 40, "Frame height in lines")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text|json)")
	return cmd
}
