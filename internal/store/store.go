// Package store persists ordered record collections and flat counters to
// JSON files. Every operation reloads the backing file, so the file is the
// single source of truth; mutations are serialized per collection and written
// through a rename to avoid interleaved partial writes. The application-level
// read-then-write sequences built on top of it (quota check-then-increment)
// remain non-atomic across processes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound indicates that no record with the requested ID exists.
var ErrNotFound = errors.New("store: record not found")

// Collection is a file-backed ordered collection of records of type T.
// The id function extracts the unique identifier of a record.
type Collection[T any] struct {
	path string
	id   func(T) string

	mu sync.Mutex
}

// NewCollection opens a collection backed by the given file, creating the
// parent directory and an empty file when missing.
func NewCollection[T any](path string, id func(T) string) (*Collection[T], error) {
	if errEnsure := ensureFile(path, []byte("[]")); errEnsure != nil {
		return nil, errEnsure
	}
	return &Collection[T]{path: path, id: id}, nil
}

// All returns the full collection in stored order. A missing or corrupt
// backing file degrades to an empty collection and never fails.
func (c *Collection[T]) All() []T {
	return c.load()
}

// FindByID returns the record with the given ID.
func (c *Collection[T]) FindByID(id string) (T, error) {
	for _, rec := range c.load() {
		if c.id(rec) == id {
			return rec, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// FindOne returns the first record in stored order satisfying match.
func (c *Collection[T]) FindOne(match func(T) bool) (T, error) {
	for _, rec := range c.load() {
		if match(rec) {
			return rec, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Insert appends a record and rewrites the collection. Uniqueness is not
// enforced at this layer; callers pre-check where it matters.
func (c *Collection[T]) Insert(rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := c.load()
	recs = append(recs, rec)
	return c.save(recs)
}

// Update applies a field-level merge function to the record with the given
// ID and rewrites the collection, returning the updated record. It returns
// ErrNotFound when no record matches.
func (c *Collection[T]) Update(id string, apply func(T) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	recs := c.load()
	for i, rec := range recs {
		if c.id(rec) != id {
			continue
		}
		updated := apply(rec)
		recs[i] = updated
		if errSave := c.save(recs); errSave != nil {
			return zero, errSave
		}
		return updated, nil
	}
	return zero, ErrNotFound
}

// Delete removes the record with the given ID and rewrites the remainder.
// Deleting an absent ID is a successful no-op.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := c.load()
	kept := recs[:0]
	for _, rec := range recs {
		if c.id(rec) != id {
			kept = append(kept, rec)
		}
	}
	return c.save(kept)
}

// load reads and decodes the backing file, degrading to empty on any error.
func (c *Collection[T]) load() []T {
	data, errRead := os.ReadFile(c.path)
	if errRead != nil {
		if !os.IsNotExist(errRead) {
			log.WithError(errRead).WithField("path", c.path).Warn("store: read failed, treating as empty")
		}
		return nil
	}
	var recs []T
	if errUnmarshal := json.Unmarshal(data, &recs); errUnmarshal != nil {
		log.WithError(errUnmarshal).WithField("path", c.path).Warn("store: decode failed, treating as empty")
		return nil
	}
	return recs
}

// save rewrites the full collection.
func (c *Collection[T]) save(recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	return writeJSONFile(c.path, recs)
}

// ensureFile creates the parent directory and seeds the file when missing.
func ensureFile(path string, seed []byte) error {
	if errMkdir := os.MkdirAll(filepath.Dir(path), 0o755); errMkdir != nil {
		return fmt.Errorf("store: create data dir: %w", errMkdir)
	}
	if _, errStat := os.Stat(path); errStat == nil {
		return nil
	} else if !os.IsNotExist(errStat) {
		return fmt.Errorf("store: stat %s: %w", path, errStat)
	}
	if errWrite := os.WriteFile(path, seed, 0o644); errWrite != nil {
		return fmt.Errorf("store: seed %s: %w", path, errWrite)
	}
	return nil
}

// writeJSONFile marshals v and replaces path via a temp file rename, so a
// crashed writer never leaves a truncated file behind.
func writeJSONFile(path string, v any) error {
	data, errMarshal := json.MarshalIndent(v, "", "  ")
	if errMarshal != nil {
		return fmt.Errorf("store: encode %s: %w", path, errMarshal)
	}
	tmp, errTmp := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if errTmp != nil {
		return fmt.Errorf("store: temp file for %s: %w", path, errTmp)
	}
	tmpPath := tmp.Name()
	if _, errWrite := tmp.Write(data); errWrite != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("store: write %s: %w", path, errWrite)
	}
	if errClose := tmp.Close(); errClose != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("store: close %s: %w", path, errClose)
	}
	if errRename := os.Rename(tmpPath, path); errRename != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("store: replace %s: %w", path, errRename)
	}
	return nil
}
