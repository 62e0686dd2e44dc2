// Package lockfile implements icukit.lock — a lock file that tracks MD5
// checksums of converted source files. This enables incremental migration:
// on re-runs, sources whose content has not changed since their last
// successful conversion are skipped.
//
// The lock file lives in the directory the conversion runs from.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "icukit.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the icukit.lock file structure.
type LockFile struct {
	Version int `yaml:"version"`
	// Checksums maps source path → MD5 of its content at last conversion.
	Checksums map[string]string `yaml:"checksums"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of file content.
func Hash(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}

// sourceKey normalizes a source path for use as a lock file key, so the
// same file hashes to the same entry on every platform.
func sourceKey(sourcePath string) string {
	return filepath.ToSlash(sourcePath)
}

// IsChanged checks whether a source file has changed since its last
// conversion. Returns true if the file is new or its content differs.
func (lf *LockFile) IsChanged(sourcePath string, content []byte) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	oldHash, ok := lf.Checksums[sourceKey(sourcePath)]
	if !ok {
		return true
	}
	return oldHash != Hash(content)
}

// Update records the checksum of a source file after successful conversion.
// Safe for concurrent use by the parallel pipeline.
func (lf *LockFile) Update(sourcePath string, content []byte) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	lf.Checksums[sourceKey(sourcePath)] = Hash(content)
}

// Clean removes entries for sources no longer in the current batch, so
// stale paths don't accumulate across runs.
func (lf *LockFile) Clean(currentPaths []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	valid := make(map[string]bool, len(currentPaths))
	for _, p := range currentPaths {
		valid[sourceKey(p)] = true
	}

	for k := range lf.Checksums {
		if !valid[k] {
			delete(lf.Checksums, k)
		}
	}
}
