package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	fsw "github.com/corey/emcee/internal/adapters/fsnotify"
	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/spf13/cobra"
)

var (
	statsOut      string
	statsSave     string
	statsBoundary string
	statsWatch    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [FILE]",
	Short: "Build a transition model of a corpus",
	Long: "Reads FILE (or stdin) and writes its symbol-transition model as JSON.\n" +
		"With --save the model is also stored for later walks; with --watch it is\n" +
		"rebuilt every time FILE changes.",
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsOut, "out", "o", "", "Write JSON to this file instead of stdout")
	statsCmd.Flags().StringVar(&statsSave, "save", "", "Store the model under this name")
	statsCmd.Flags().StringVar(&statsBoundary, "boundary", "", "Boundary symbol (default from config)")
	statsCmd.Flags().BoolVarP(&statsWatch, "watch", "w", false, "Rebuild whenever FILE changes")
}

// boundaryFor returns the --boundary flag when set, else the configured one.
func boundaryFor(cmd *cobra.Command, flag string) (rune, error) {
	if !cmd.Flags().Changed("boundary") {
		return cfg.BoundaryRune(), nil
	}
	if utf8.RuneCountInString(flag) != 1 {
		return 0, fmt.Errorf("--boundary must be exactly one symbol, got %q", flag)
	}
	r, _ := utf8.DecodeRuneInString(flag)
	return r, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	boundary, err := boundaryFor(cmd, statsBoundary)
	if err != nil {
		return err
	}

	if !statsWatch {
		return buildStats(cmd, args, boundary)
	}

	if len(args) == 0 || args[0] == "-" {
		return fmt.Errorf("--watch needs a FILE")
	}
	return watchStats(cmd, args, boundary)
}

// buildStats reads the input once, then writes and optionally saves its model.
func buildStats(cmd *cobra.Command, args []string, boundary rune) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	stats := corpus.Build(text, boundary)
	logger.Debug("model built", "total", stats.Total(), "contexts", len(stats.Contexts()))

	if err := writeStats(cmd, stats); err != nil {
		return err
	}

	if statsSave != "" {
		a := newApp()
		defer a.Close()
		if err := a.SaveModel(statsSave, stats, boundary); err != nil {
			return storeError(err, a.Paths.DB)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "⚡ saved model %s (%d transitions)\n", statsSave, len(stats.Transitions()))
	}
	return nil
}

func writeStats(cmd *cobra.Command, stats *corpus.Stats) error {
	var w io.Writer = cmd.OutOrStdout()
	if statsOut != "" {
		f, err := os.Create(statsOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return stats.Encode(w)
}

// watchStats builds once, then rebuilds on every debounced change until
// interrupted. The store is opened per rebuild so the lock is not held
// between changes.
func watchStats(cmd *cobra.Command, args []string, boundary rune) error {
	if err := buildStats(cmd, args, boundary); err != nil {
		return err
	}

	watcher, err := fsw.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer watcher.Stop()

	err = watcher.Watch(args[0], func(path string) {
		logger.Info("corpus changed", "path", path)
		if err := buildStats(cmd, args, boundary); err != nil {
			logger.Error("rebuild failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "⚡ watching %s (ctrl-c to stop)\n", args[0])
	<-ctx.Done()
	return nil
}
