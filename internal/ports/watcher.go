package ports

// Watcher monitors a single corpus file and reports when its content may
// have changed. Editors often replace files by rename, so the adapter
// watches the parent directory and filters events down to the file.
// Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute
	// path after each debounced write, create or rename of the file. The
	// callback may be invoked from any goroutine. Returns an error if the
	// parent directory doesn't exist or can't be watched.
	Watch(path string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
