package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/corey/emcee/internal/app"
	"github.com/spf13/cobra"
)

var (
	logLevelFlag string
	colorFlag    string
	noColorFlag  bool

	// Resolved in PersistentPreRunE for every subcommand.
	cfg      app.Config
	logger   *slog.Logger
	useColor bool
)

var rootCmd = &cobra.Command{
	Use:   "emcee",
	Short: "emcee — substitution cipher solver",
	Long: "Builds symbol-transition models of text and hill-climbs through\n" +
		"substitution keys until a ciphertext reads like the reference corpus.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// setup loads .emcee/config.yaml, applies the global flags and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	loaded, err := app.LoadConfig(paths.Config)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	level, err := app.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	useColor = resolveColor(colorFlag, noColorFlag)
	return nil
}

// newApp builds the App for the current project. Callers must Close it.
func newApp() *app.App {
	return app.New(projectRoot(), cfg, logger)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never (auto honours NO_COLOR)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable color output")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(lettersCmd)
	rootCmd.AddCommand(walkCmd)
	rootCmd.AddCommand(decipherCmd)
	rootCmd.AddCommand(encipherCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(wipeCmd)
}
