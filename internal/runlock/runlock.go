// pattern: Imperative Shell
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".samplerun.lock"

// Acquire takes an exclusive file lock under the repository root. Sessions
// install packages and write coverage state into shared locations, so two
// orchestrator runs in the same repository must not overlap. Returns the
// flock handle (caller must defer Release) or an error if another run
// already holds the lock.
func Acquire(root string) (*flock.Flock, error) {
	lockPath := filepath.Join(root, lockFileName)
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another samplerun session is already running in %s", root)
	}
	return fl, nil
}

// Release unlocks the run lock. Safe on a nil handle.
func Release(fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
}
