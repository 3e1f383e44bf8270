package storage

import (
	"fmt"
	"os"
	"syscall"
)

// lockSuffix names the sidecar file that guards a snapshot against
// concurrent writers, e.g. "tally.yaml.lock".
const lockSuffix = ".lock"

// lockPath takes an exclusive advisory lock on path+".lock" and returns the
// function that releases it. The sidecar file is left in place.
func lockPath(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path+lockSuffix, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
