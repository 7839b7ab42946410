// Package cache is the local store for downloaded buildx binaries, keyed by
// tool name and version label. The store is an injectable capability so
// acquisition logic can be tested without network or disk access.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Key addresses one cached binary.
type Key struct {
	Tool    string
	Version string
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Tool, k.Version)
}

// Store is a content-addressed binary cache. Concurrent readers are safe;
// concurrent writers to the same key are last-writer-wins (no locking).
type Store interface {
	// Find returns the cached path for key, or false when absent.
	Find(key Key) (string, bool)

	// Save moves the file at srcPath into the cache under key, renamed to
	// filename, and returns the cached path.
	Save(srcPath, filename string, key Key) (string, error)
}

// NewDirStore returns a Store rooted at dir, laid out as
// dir/<tool>/<version>/<filename>.
func NewDirStore(dir string) Store {
	return &dirStore{root: dir}
}

type dirStore struct {
	root string
}

func (s *dirStore) keyDir(key Key) string {
	return filepath.Join(s.root, key.Tool, key.Version)
}

func (s *dirStore) Find(key Key) (string, bool) {
	entries, err := os.ReadDir(s.keyDir(key))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return filepath.Join(s.keyDir(key), e.Name()), true
		}
	}
	return "", false
}

func (s *dirStore) Save(srcPath, filename string, key Key) (string, error) {
	dir := s.keyDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir for %s: %w", key, err)
	}

	dst := filepath.Join(dir, filename)

	// Write through a temp file in the same directory and rename so a
	// concurrent reader never observes a torn binary.
	tmp, err := os.CreateTemp(dir, "."+filename+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage cache entry for %s: %w", key, err)
	}
	tmpPath := tmp.Name()

	src, err := os.Open(srcPath)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}

	_, err = io.Copy(tmp, src)
	src.Close()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write cache entry for %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return dst, nil
}
