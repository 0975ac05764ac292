package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	prom "github.com/corey/emcee/internal/adapters/prometheus"
	"github.com/corey/emcee/internal/app"
	"github.com/corey/emcee/internal/domain/search"
	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"
)

var (
	walkStats       string
	walkModel       string
	walkSeed        uint64
	walkIterations  int
	walkAlphabet    string
	walkMetricsAddr string
	walkNoRecord    bool
	walkQuiet       bool
)

var walkCmd = &cobra.Command{
	Use:   "walk [FILE]",
	Short: "Search for the key of a ciphertext",
	Long: "Hill-climbs from a seeded random key: each iteration swaps two symbols of\n" +
		"the current key and keeps the swap only if the deciphered text moves closer\n" +
		"to the reference model. The reference is --stats, else --model (or the\n" +
		"configured model), else the ciphertext itself.",
	Args: cobra.MaximumNArgs(1),
	RunE: runWalk,
}

func init() {
	walkCmd.Flags().StringVar(&walkStats, "stats", "", "Reference model JSON file (from emcee stats)")
	walkCmd.Flags().StringVarP(&walkModel, "model", "m", "", "Stored reference model name")
	walkCmd.Flags().Uint64Var(&walkSeed, "seed", 0, "Random seed")
	walkCmd.Flags().IntVarP(&walkIterations, "iterations", "n", search.DefaultIterations, "Number of perturbations to score")
	walkCmd.Flags().StringVar(&walkAlphabet, "alphabet", "", "Key alphabet (default from config)")
	walkCmd.Flags().StringVar(&walkMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while walking")
	walkCmd.Flags().BoolVar(&walkNoRecord, "no-record", false, "Don't record the run")
	walkCmd.Flags().BoolVarP(&walkQuiet, "quiet", "q", false, "Only print the summary")
}

// walkConfig applies the walk flags that were set over the loaded config.
func walkConfig(cmd *cobra.Command) (app.Config, error) {
	c := cfg
	flags := cmd.Flags()
	if flags.Changed("seed") {
		c.Seed = walkSeed
	}
	if flags.Changed("iterations") {
		c.Iterations = walkIterations
	}
	if flags.Changed("alphabet") {
		c.Alphabet = walkAlphabet
	}
	if flags.Changed("model") {
		c.Model = walkModel
	}
	return c, c.Validate()
}

func runWalk(cmd *cobra.Command, args []string) error {
	c, err := walkConfig(cmd)
	if err != nil {
		return err
	}

	ciphertext, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	a := app.New(projectRoot(), c, logger)
	defer a.Close()

	out := cmd.OutOrStdout()
	opts := []search.Option{}
	if !walkQuiet {
		opts = append(opts, search.WithObserver(func(s search.Step) {
			fmt.Fprintln(out, formatStep(s, useColor))
		}))
	}

	if walkMetricsAddr != "" {
		metrics := prom.NewMetrics()
		_, stop, err := serveMetrics(walkMetricsAddr, metrics)
		if err != nil {
			return err
		}
		defer stop()
		opts = append(opts, search.WithMetrics(metrics))
	}

	outcome, err := a.Walk(app.RunRequest{
		Ciphertext: ciphertext,
		Reference:  app.ReferenceSource{StatsFile: walkStats, Model: c.Model},
		Seed:       c.Seed,
		Options:    opts,
		Record:     !walkNoRecord,
	})
	if err != nil {
		return storeError(err, a.Paths.DB)
	}

	fmt.Fprint(out, formatResult(outcome.Run, useColor))
	return nil
}

// serveMetrics exposes /metrics on addr until the returned stop is called.
// It returns the bound address, which differs from addr when the port is 0.
func serveMetrics(addr string, metrics *prom.Metrics) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handlers.CompressHandler(metrics.Handler()))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	logger.Info("metrics server started", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
