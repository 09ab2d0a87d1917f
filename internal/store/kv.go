package store

import (
	"encoding/json"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

// KV is a file-backed flat mapping from string keys to integer counts,
// used by the usage counter. Like Collection, every operation reloads the
// backing file and mutations are serialized per file.
type KV struct {
	path string

	mu sync.Mutex
}

// NewKV opens a mapping backed by the given file, creating the parent
// directory and an empty object when missing.
func NewKV(path string) (*KV, error) {
	if errEnsure := ensureFile(path, []byte("{}")); errEnsure != nil {
		return nil, errEnsure
	}
	return &KV{path: path}, nil
}

// Get returns the value stored for key, or 0 when absent.
func (s *KV) Get(key string) int64 {
	return s.load()[key]
}

// Increment adds one to the value stored for key, persists the full mapping
// and returns the new value.
func (s *KV) Increment(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	m[key]++
	if errSave := writeJSONFile(s.path, m); errSave != nil {
		return 0, errSave
	}
	return m[key], nil
}

// All returns a snapshot of the full mapping.
func (s *KV) All() map[string]int64 {
	return s.load()
}

// load reads and decodes the mapping, degrading to empty on any error.
func (s *KV) load() map[string]int64 {
	m := make(map[string]int64)
	data, errRead := os.ReadFile(s.path)
	if errRead != nil {
		if !os.IsNotExist(errRead) {
			log.WithError(errRead).WithField("path", s.path).Warn("store: read failed, treating as empty")
		}
		return m
	}
	if errUnmarshal := json.Unmarshal(data, &m); errUnmarshal != nil {
		log.WithError(errUnmarshal).WithField("path", s.path).Warn("store: decode failed, treating as empty")
		return make(map[string]int64)
	}
	return m
}
