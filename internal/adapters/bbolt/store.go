// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// Two top-level buckets hold all data: "models" maps a model name to its
// binary transition encoding, and "runs" maps a time-ordered run ID to a
// JSON run record. Writes are transactional — a crash mid-write cannot
// corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/corey/emcee/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketModels = []byte("models")
	bucketRuns   = []byte("runs")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveModel persists a named model, overwriting any prior model of that name.
func (s *Store) SaveModel(m *ports.Model) error {
	if m == nil {
		return fmt.Errorf("nil model")
	}
	if m.Name == "" {
		return fmt.Errorf("model name is empty")
	}
	data := encodeModel(m)

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketModels)
		if err != nil {
			return err
		}
		return b.Put([]byte(m.Name), data)
	})
}

// LoadModel retrieves a named model.
// Returns nil, nil if no model exists under that name.
func (s *Store) LoadModel(name string) (*ports.Model, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get([]byte(name)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	m, err := decodeModel(name, data)
	if err != nil {
		return nil, fmt.Errorf("decode model %q: %w", name, err)
	}
	return m, nil
}

// ListModels returns summaries of all saved models, sorted by name.
func (s *Store) ListModels() ([]ports.ModelInfo, error) {
	var infos []ports.ModelInfo

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			m, err := decodeModel(string(k), v)
			if err != nil {
				return fmt.Errorf("decode model %q: %w", k, err)
			}
			infos = append(infos, summarize(m))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// DeleteModel removes a named model.
// Idempotent: deleting a nonexistent model is not an error.
func (s *Store) DeleteModel(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

// SaveRun records one search run under its ID.
func (s *Store) SaveRun(run *ports.Run) error {
	if run == nil {
		return fmt.Errorf("nil run")
	}
	if run.ID == "" {
		return fmt.Errorf("run ID is empty")
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		return b.Put([]byte(run.ID), data)
	})
}

// ListRuns returns all recorded runs, oldest first.
func (s *Store) ListRuns() ([]*ports.Run, error) {
	var runs []*ports.Run

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var run ports.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("unmarshal run %q: %w", k, err)
			}
			runs = append(runs, &run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt < runs[j].CreatedAt })
	return runs, nil
}

// Wipe removes every model and run.
func (s *Store) Wipe() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketModels, bucketRuns} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return nil
	})
}
