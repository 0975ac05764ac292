// Package search hill-climbs through substitution keys.
//
// Each iteration perturbs a clone of the current key, deciphers the
// ciphertext with the clone, builds a fresh frequency model of the result
// and scores it against a fixed reference model. A strictly lower score
// replaces the current key; anything else is discarded. The loop always
// runs its full iteration budget; there is no convergence test and no
// probabilistic acceptance of worse candidates.
package search

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/corey/emcee/internal/domain/cipher"
	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/corey/emcee/internal/ports"
)

// DefaultIterations is the iteration budget when none is configured.
const DefaultIterations = 10000

// ErrNoReference is returned when a walker has no reference model.
var ErrNoReference = errors.New("no reference model")

// Step is the state after the baseline or an accepted improvement.
type Step struct {
	Iteration int // 0 for the baseline
	Score     float64
	Key       *cipher.Key
	Plaintext string
}

// Result summarizes a finished walk.
type Result struct {
	Best       Step
	Accepted   int // improvements accepted, excluding the baseline
	Iterations int // perturbations scored
}

// Walker runs the search against one reference model.
type Walker struct {
	reference  *corpus.Stats
	iterations int
	boundary   rune
	observer   func(Step)
	metrics    ports.SearchMetrics
	logger     *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithIterations sets the number of perturbations to score.
func WithIterations(n int) Option {
	return func(w *Walker) { w.iterations = n }
}

// WithBoundary sets the boundary symbol used when modelling candidates.
// It must match the boundary the reference was built with.
func WithBoundary(boundary rune) Option {
	return func(w *Walker) { w.boundary = boundary }
}

// WithObserver registers a callback for the baseline and every accepted
// improvement, in order.
func WithObserver(fn func(Step)) Option {
	return func(w *Walker) { w.observer = fn }
}

// WithMetrics reports every iteration to m.
func WithMetrics(m ports.SearchMetrics) Option {
	return func(w *Walker) { w.metrics = m }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) { w.logger = l }
}

// NewWalker creates a walker that scores candidates against reference.
// The reference is fixed for the walker's lifetime.
func NewWalker(reference *corpus.Stats, opts ...Option) (*Walker, error) {
	if reference == nil {
		return nil, ErrNoReference
	}
	w := &Walker{
		reference:  reference,
		iterations: DefaultIterations,
		boundary:   corpus.DefaultBoundary,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.iterations < 0 {
		return nil, fmt.Errorf("iterations must be >= 0, got %d", w.iterations)
	}
	return w, nil
}

// Score deciphers ciphertext with key and returns the plaintext and its
// divergence from the reference.
func (w *Walker) Score(ciphertext string, key *cipher.Key) (string, float64) {
	plaintext := key.Decipher(ciphertext)
	model := corpus.Build(plaintext, w.boundary)
	return plaintext, w.reference.Diff(model)
}

// Walk searches from key. The baseline is scored from key unperturbed;
// key itself is never mutated, but its random source is consumed.
func (w *Walker) Walk(ciphertext string, key *cipher.Key) Result {
	plaintext, score := w.Score(ciphertext, key)
	current := Step{Iteration: 0, Score: score, Key: key, Plaintext: plaintext}
	w.logger.Debug("baseline", "score", score, "key", key.Image())
	w.emit(current)

	accepted := 0
	for i := 1; i <= w.iterations; i++ {
		candidate := current.Key.Perturbed()
		plaintext, score := w.Score(ciphertext, candidate)

		improved := score < current.Score
		if improved {
			current = Step{Iteration: i, Score: score, Key: candidate, Plaintext: plaintext}
			accepted++
			w.logger.Debug("accepted", "iteration", i, "score", score, "key", candidate.Image())
			w.emit(current)
		}
		if w.metrics != nil {
			w.metrics.Iteration(improved, current.Score)
		}
	}

	w.logger.Info("walk finished",
		"iterations", w.iterations,
		"accepted", accepted,
		"score", current.Score,
	)
	return Result{Best: current, Accepted: accepted, Iterations: w.iterations}
}

func (w *Walker) emit(s Step) {
	if w.observer != nil {
		w.observer(s)
	}
}
