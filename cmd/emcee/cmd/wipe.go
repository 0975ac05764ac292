package cmd

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all stored models and runs",
	Args:  cobra.NoArgs,
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	a := newApp()
	defer a.Close()

	if !a.Paths.HasDB() {
		fmt.Fprintln(cmd.OutOrStdout(), "⚡ no data to wipe")
		return nil
	}

	if !wipeForce {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠ This will delete all emcee models and runs for %s. Continue? [y/N] ", filepath.Base(root))
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
			return nil
		}
	}

	store, err := a.Store()
	if err != nil {
		return storeError(err, a.Paths.DB)
	}
	if err := store.Wipe(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "⚡ project data wiped")
	return nil
}
