package settings

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

var ErrAlreadyRunning = errors.New("another jss-contract-tests run is in progress")

// RunLock keeps two harness runs on one machine from creating and deleting objects
// at the same time.
type RunLock struct {
	flock *flock.Flock
}

// DefaultLockPath returns the lock file path in the user cache directory.
func DefaultLockPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "finding cache directory")
	}
	dir = filepath.Join(dir, KeychainService)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	return filepath.Join(dir, "run.lock"), nil
}

// AcquireRunLock takes the lock without waiting.
func AcquireRunLock(path string) (*RunLock, error) {
	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "locking %s", path)
	}
	if !locked {
		return nil, errors.WithStack(ErrAlreadyRunning)
	}
	return &RunLock{flock: l}, nil
}

func (l *RunLock) Release() error {
	return errors.WithStack(l.flock.Unlock())
}
