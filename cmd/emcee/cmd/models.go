package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List stored reference models",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored reference model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDelete,
}

var modelsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a stored reference model as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsShow,
}

func init() {
	modelsCmd.AddCommand(modelsDeleteCmd)
	modelsCmd.AddCommand(modelsShowCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.Close()

	store, err := a.Store()
	if err != nil {
		return storeError(err, a.Paths.DB)
	}
	infos, err := store.ListModels()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatModels(infos, useColor))
	return nil
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.Close()

	store, err := a.Store()
	if err != nil {
		return storeError(err, a.Paths.DB)
	}
	if err := store.DeleteModel(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ deleted model %s\n", args[0])
	return nil
}

func runModelsShow(cmd *cobra.Command, args []string) error {
	a := newApp()
	defer a.Close()

	stats, _, err := a.LoadModel(args[0])
	if err != nil {
		return storeError(err, a.Paths.DB)
	}
	return stats.Encode(cmd.OutOrStdout())
}
