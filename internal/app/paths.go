package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .emcee/ project directory.
type Paths struct {
	Root   string // .emcee/
	DB     string // .emcee/emcee.db
	Config string // .emcee/config.yaml
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".emcee")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "emcee.db"),
		Config: filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirs creates the .emcee/ directory. Idempotent.
func (p *Paths) EnsureDirs() error {
	return os.MkdirAll(p.Root, 0755)
}

// HasDB reports whether a store has been created under this root.
func (p *Paths) HasDB() bool {
	_, err := os.Stat(p.DB)
	return err == nil
}
