package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"freight-reconciler/core/config"
	"freight-reconciler/core/database"
	"freight-reconciler/core/store"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent reconciliation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Connect(cmd.Context(), &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}

		runStore, err := store.New(db)
		if err != nil {
			return err
		}

		runs, err := runStore.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tROWS\tUNMATCHED\tOUTPUT")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				run.ID, run.StartedAt.Format("2006-01-02 15:04:05"),
				run.RowCount, run.Unmatched, run.OutputPath)
		}

		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")

	RootCmd.AddCommand(runsCmd)
}
