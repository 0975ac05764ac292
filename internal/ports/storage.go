// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces and records, never on concrete implementations.
package ports

// Storage persists reference models and search run history.
// The backing store (bbolt) is scoped to one .emcee/ directory. Concurrent
// reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveModel and SaveRun must be transactional. A crash
// mid-write must not corrupt previously committed data.
type Storage interface {
	// SaveModel persists a named reference model. Overwrites any prior
	// model with the same name.
	SaveModel(model *Model) error

	// LoadModel retrieves a named model.
	// Returns nil, nil if no model exists under that name.
	LoadModel(name string) (*Model, error)

	// ListModels returns summaries of all saved models, sorted by name.
	ListModels() ([]ModelInfo, error)

	// DeleteModel removes a named model.
	// Idempotent: deleting a nonexistent model is not an error.
	DeleteModel(name string) error

	// SaveRun records the outcome of one search run.
	SaveRun(run *Run) error

	// ListRuns returns all recorded runs, oldest first.
	ListRuns() ([]*Run, error)

	// Wipe removes every model and run.
	Wipe() error
}

// Transition is one observed (from, to) symbol pair and how often it occurred.
// It is the leaf level of a frequency model; everything else is derived.
type Transition struct {
	From  rune
	To    rune
	Count uint64
}

// Model is the persisted form of a frequency model: its raw transition
// counts plus the boundary symbol it was read with.
type Model struct {
	Name        string
	Boundary    rune
	CreatedAt   int64 // Unix timestamp
	Transitions []Transition
}

// ModelInfo summarizes a stored model without its transitions.
type ModelInfo struct {
	Name        string
	Boundary    rune
	CreatedAt   int64
	Total       uint64 // sum of all transition counts
	Transitions int    // number of distinct transitions
}

// Run is the record of one completed search.
type Run struct {
	ID         string  `json:"id"`
	Reference  string  `json:"reference"` // "ciphertext", "file:<path>" or "model:<name>"
	Alphabet   string  `json:"alphabet"`
	Seed       uint64  `json:"seed"`
	Iterations int     `json:"iterations"`
	Accepted   int     `json:"accepted"`
	Score      float64 `json:"score"`
	Key        string  `json:"key"` // key image in alphabet order
	Plaintext  string  `json:"plaintext"`
	CreatedAt  int64   `json:"created_at"`
}
