package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded walks",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Show only the most recent N runs (0 = all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.Close()

	store, err := a.Store()
	if err != nil {
		return storeError(err, a.Paths.DB)
	}
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if runsLimit > 0 && len(runs) > runsLimit {
		runs = runs[len(runs)-runsLimit:]
	}
	fmt.Fprint(cmd.OutOrStdout(), formatRuns(runs, useColor))
	return nil
}
