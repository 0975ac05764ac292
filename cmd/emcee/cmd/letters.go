package cmd

import (
	"fmt"

	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/spf13/cobra"
)

var lettersBoundary string

var lettersCmd = &cobra.Command{
	Use:   "letters [FILE]",
	Short: "Count single symbols in a corpus",
	Long:  "Counts each symbol of FILE (or stdin) line by line; every line adds one boundary symbol.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLetters,
}

func init() {
	lettersCmd.Flags().StringVar(&lettersBoundary, "boundary", "", "Boundary symbol (default from config)")
}

func runLetters(cmd *cobra.Command, args []string) error {
	boundary, err := boundaryFor(cmd, lettersBoundary)
	if err != nil {
		return err
	}

	r, _, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	counts, err := corpus.Letters(r, boundary)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatLetters(corpus.SortLetters(counts), useColor))
	return nil
}
