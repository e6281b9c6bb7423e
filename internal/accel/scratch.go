package accel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 250 * time.Millisecond

// scratch owns the features and results directories. Two processes sharing
// them would clobber each other's files, so every use holds a lock file next
// to the results directory.
type scratch struct {
	featuresDir string
	resultsDir  string
	lockPath    string
}

func newScratch(featuresDir, resultsDir string) *scratch {
	return &scratch{
		featuresDir: featuresDir,
		resultsDir:  resultsDir,
		lockPath:    filepath.Clean(resultsDir) + ".lock",
	}
}

// lock blocks until the scratch lock is held or ctx is done. The returned
// func releases it.
func (s *scratch) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	fl := flock.New(s.lockPath)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", s.lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("locking %s: %w", s.lockPath, ctx.Err())
	}
	return func() { _ = fl.Unlock() }, nil
}

// recreate deletes both directories and makes them again, empty.
func (s *scratch) recreate() error {
	for _, dir := range []string{s.featuresDir, s.resultsDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
