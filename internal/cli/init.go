package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bandline/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a demo dataset to the data path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(app.DataPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", app.DataPath)
				}
			}
			day := time.Now().UTC().Truncate(24 * time.Hour)
			ds := store.DemoDataset(day)
			st := store.New(ds)
			if err := st.SaveTo(app.DataPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d resources, %d events to %s\n",
				len(ds.Resources), len(ds.Events), app.DataPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing dataset")
	return cmd
}
