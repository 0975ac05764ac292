package cmd

import (
	"fmt"
	"strings"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when a bbolt open fails due
// to lock contention. Only another emcee process holds the lock.
func diagnoseDBLock(dbPath string) string {
	return fmt.Sprintf("database %s is locked by another emcee process\n"+
		"  → a long walk or a stats --watch --save may be running\n"+
		"  → find the process:  ps aux | grep 'emcee'\n"+
		"  → wait for it or stop it, then retry your command", dbPath)
}

// storeError rewrites lock timeouts into guidance; other errors pass through.
func storeError(err error, dbPath string) error {
	if isDBLockError(err) {
		return fmt.Errorf("%s", diagnoseDBLock(dbPath))
	}
	return err
}
