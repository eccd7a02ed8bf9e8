package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Store persists each user's active baseline. The active baseline carries
// its archive chain and replacement log, so persisting it preserves the
// full provenance.
type Store interface {
	// Save persists a user's active baseline, superseding any prior one.
	Save(b *VocalBaseline) error

	// Get retrieves a user's active baseline.
	Get(userID string) (*VocalBaseline, error)

	// Count returns the number of users with a stored baseline.
	Count() int
}

// JSONStore implements Store using a single JSON file.
type JSONStore struct {
	path      string
	mu        sync.RWMutex
	baselines map[string]*VocalBaseline
}

// storeData is the JSON structure of the store file.
type storeData struct {
	Version   int              `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
	Baselines []*VocalBaseline `json:"baselines"`
}

const storeVersion = 1

// NewJSONStore creates a JSON-backed store at the given path, loading any
// existing data.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{
		path:      path,
		baselines: make(map[string]*VocalBaseline),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, sageerr.Repository("init", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save implements Store.
func (s *JSONStore) Save(b *VocalBaseline) error {
	if b.UserID == "" {
		return sageerr.MissingField("user_id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines[b.UserID] = b
	return s.flush()
}

// Get implements Store.
func (s *JSONStore) Get(userID string) (*VocalBaseline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.baselines[userID]
	if !ok {
		return nil, sageerr.ProfileNotFound(userID)
	}
	return b, nil
}

// Count implements Store.
func (s *JSONStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.baselines)
}

// load reads the store file. Caller must not hold the lock.
func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return sageerr.Repository("load", err)
	}

	var file storeData
	if err := json.Unmarshal(data, &file); err != nil {
		return sageerr.Repository("parse", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range file.Baselines {
		s.baselines[b.UserID] = b
	}
	return nil
}

// flush writes the store file. Caller holds the write lock.
func (s *JSONStore) flush() error {
	file := storeData{
		Version:   storeVersion,
		UpdatedAt: time.Now(),
		Baselines: make([]*VocalBaseline, 0, len(s.baselines)),
	}
	for _, b := range s.baselines {
		file.Baselines = append(file.Baselines, b)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return sageerr.Repository("encode", err)
	}

	// Write-then-rename keeps the file whole if we crash mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return sageerr.Repository("write", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return sageerr.Repository("rename", err)
	}
	return nil
}

// Ensure JSONStore implements Store.
var _ Store = (*JSONStore)(nil)
