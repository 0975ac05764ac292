package cmd

import (
	"fmt"

	"github.com/corey/emcee/internal/app"
	"github.com/spf13/cobra"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the project root, store and config paths, and the effective configuration.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the effective configuration to .emcee/config.yaml")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	out := cmd.OutOrStdout()

	if configInit {
		if err := paths.EnsureDirs(); err != nil {
			return err
		}
		if err := cfg.Save(paths.Config); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(out, "⚡ wrote %s\n", paths.Config)
		return nil
	}

	dbStatus := paint(colorYellow, "✗ not created", useColor)
	if paths.HasDB() {
		dbStatus = paint(colorGreen, "✓ present", useColor)
	}
	model := cfg.Model
	if model == "" {
		model = "(ciphertext)"
	}

	fmt.Fprintf(out, "%s\n", paint(colorBold, "⚡ emcee config", useColor))
	fmt.Fprintf(out, "  Root:       %s\n", root)
	fmt.Fprintf(out, "  Config:     %s\n", paths.Config)
	fmt.Fprintf(out, "  DB:         %s  %s\n", paths.DB, dbStatus)
	fmt.Fprintf(out, "  Alphabet:   %s\n", cfg.Alphabet)
	fmt.Fprintf(out, "  Boundary:   %q\n", cfg.Boundary)
	fmt.Fprintf(out, "  Seed:       %d\n", cfg.Seed)
	fmt.Fprintf(out, "  Iterations: %d\n", cfg.Iterations)
	fmt.Fprintf(out, "  Model:      %s\n", model)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.LogLevel)
	return nil
}
