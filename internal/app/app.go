// Package app wires together adapters and domain logic for the emcee
// commands: project paths, configuration, the model store and the choice
// of reference model for a search.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/corey/emcee/internal/adapters/bbolt"
	"github.com/corey/emcee/internal/domain/cipher"
	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/corey/emcee/internal/domain/search"
	"github.com/corey/emcee/internal/ports"
	"github.com/google/uuid"
)

// ErrModelNotFound is returned when a named reference model is not stored.
var ErrModelNotFound = errors.New("model not found")

// App is the top-level container for one project directory.
type App struct {
	Paths  *Paths
	Config Config
	Logger *slog.Logger

	store  ports.Storage
	closer func() error
}

// New creates an App rooted at projectRoot. The store is opened lazily.
func New(projectRoot string, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		Paths:  NewPaths(projectRoot),
		Config: cfg,
		Logger: logger,
	}
}

// NewWithStore creates an App over an already-open store.
func NewWithStore(projectRoot string, cfg Config, store ports.Storage, logger *slog.Logger) *App {
	a := New(projectRoot, cfg, logger)
	a.store = store
	return a
}

// Store opens the bbolt store on first use.
func (a *App) Store() (ports.Storage, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.Paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}
	store, err := bbolt.NewStore(a.Paths.DB)
	if err != nil {
		return nil, err
	}
	a.logger().Debug("store opened", "path", a.Paths.DB)
	a.store = store
	a.closer = store.Close
	return store, nil
}

// Close releases the store if this App opened it.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer()
	a.closer = nil
	a.store = nil
	return err
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// SaveModel stores stats under name.
func (a *App) SaveModel(name string, stats *corpus.Stats, boundary rune) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	m := &ports.Model{
		Name:        name,
		Boundary:    boundary,
		CreatedAt:   time.Now().Unix(),
		Transitions: stats.Transitions(),
	}
	if err := store.SaveModel(m); err != nil {
		return fmt.Errorf("save model %q: %w", name, err)
	}
	a.logger().Info("model saved", "name", name, "transitions", len(m.Transitions), "total", stats.Total())
	return nil
}

// LoadModel rebuilds a stored model. Wraps ErrModelNotFound when absent.
func (a *App) LoadModel(name string) (*corpus.Stats, *ports.Model, error) {
	store, err := a.Store()
	if err != nil {
		return nil, nil, err
	}
	m, err := store.LoadModel(name)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	return corpus.FromTransitions(m.Transitions), m, nil
}

// ReferenceSource names where a search's reference model comes from.
// At most one of StatsFile and Model is consulted, in that order.
type ReferenceSource struct {
	StatsFile string // JSON stats file
	Model     string // stored model name
}

// Reference is a resolved reference model and the boundary it was read with.
type Reference struct {
	Stats    *corpus.Stats
	Boundary rune
	Label    string // run record label
}

// Reference resolves the reference model for one run. A stored model
// carries its own boundary; a stats file or the ciphertext uses the
// configured one. With no source configured the ciphertext's own model is
// used.
func (a *App) Reference(src ReferenceSource, ciphertext string) (*Reference, error) {
	switch {
	case src.StatsFile != "":
		f, err := os.Open(src.StatsFile)
		if err != nil {
			return nil, fmt.Errorf("open stats: %w", err)
		}
		defer f.Close()
		stats, err := corpus.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.StatsFile, err)
		}
		return &Reference{Stats: stats, Boundary: a.Config.BoundaryRune(), Label: "file:" + src.StatsFile}, nil

	case src.Model != "":
		stats, m, err := a.LoadModel(src.Model)
		if err != nil {
			return nil, err
		}
		return &Reference{Stats: stats, Boundary: m.Boundary, Label: "model:" + src.Model}, nil

	default:
		boundary := a.Config.BoundaryRune()
		return &Reference{Stats: corpus.Build(ciphertext, boundary), Boundary: boundary, Label: "ciphertext"}, nil
	}
}

// RunRequest is one search over a ciphertext.
type RunRequest struct {
	Ciphertext string
	Reference  ReferenceSource
	Seed       uint64
	Options    []search.Option
	Record     bool
}

// RunOutcome is a finished search plus its persisted record.
type RunOutcome struct {
	Result search.Result
	Run    *ports.Run
}

// Walk resolves the reference, seeds a key over the configured alphabet and
// runs the search. When req.Record is set the run is saved to the store.
func (a *App) Walk(req RunRequest) (*RunOutcome, error) {
	ref, err := a.Reference(req.Reference, req.Ciphertext)
	if err != nil {
		return nil, err
	}

	key, err := cipher.New(a.Config.Alphabet, cipher.NewRand(req.Seed))
	if err != nil {
		return nil, err
	}

	opts := []search.Option{
		search.WithIterations(a.Config.Iterations),
		search.WithBoundary(ref.Boundary),
		search.WithLogger(a.logger()),
	}
	opts = append(opts, req.Options...)
	walker, err := search.NewWalker(ref.Stats, opts...)
	if err != nil {
		return nil, err
	}

	a.logger().Info("walk starting",
		"reference", ref.Label,
		"boundary", string(ref.Boundary),
		"seed", req.Seed,
		"iterations", a.Config.Iterations,
		"alphabet", a.Config.Alphabet,
	)
	result := walker.Walk(req.Ciphertext, key)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	run := &ports.Run{
		ID:         id.String(),
		Reference:  ref.Label,
		Alphabet:   a.Config.Alphabet,
		Seed:       req.Seed,
		Iterations: result.Iterations,
		Accepted:   result.Accepted,
		Score:      result.Best.Score,
		Key:        result.Best.Key.Image(),
		Plaintext:  result.Best.Plaintext,
		CreatedAt:  time.Now().Unix(),
	}

	if req.Record {
		store, err := a.Store()
		if err != nil {
			return nil, err
		}
		if err := store.SaveRun(run); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		a.logger().Debug("run recorded", "id", run.ID)
	}
	return &RunOutcome{Result: result, Run: run}, nil
}
