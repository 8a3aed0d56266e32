package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pulse-mcp/internal/tracker"
)

// ErrSnapshotNotFound is returned by a Store that holds nothing for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one fetch cycle's worth of backend data.
type Snapshot struct {
	Projects  []tracker.Project `json:"projects"`
	Tasks     []tracker.Task    `json:"tasks"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Complete reports whether both collections were fetched.
func (s *Snapshot) Complete() bool {
	return s != nil && s.Projects != nil && s.Tasks != nil
}

// Store persists snapshots beyond the in-process cache.
type Store interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, key string, snap *Snapshot) error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

// FileStore writes one JSON file per key under Dir so that a restarted
// process can still fall back to the last good data.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(f.Dir, fmt.Sprintf("snapshot_%s.json", safe))
}

func (f *FileStore) Load(_ context.Context, key string) (*Snapshot, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes atomically via a temp file and rename.
func (f *FileStore) Save(_ context.Context, key string, snap *Snapshot) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	target := f.path(key)
	tmp, err := os.CreateTemp(f.Dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
