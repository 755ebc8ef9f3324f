package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockDir takes an exclusive lock for dir. The lock file lives in the temp
// dir so it never shows up among the files being organized.
func lockDir(dir string) (*flock.Flock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	sum := sha256.Sum256([]byte(abs))
	lock := flock.New(filepath.Join(os.TempDir(), "organizer-"+hex.EncodeToString(sum[:8])+".lock"))

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", abs, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s is being organized by another run", abs)
	}
	return lock, nil
}
