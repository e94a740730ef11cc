// persistence/filestore.go
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/models"
)

// FileStore keeps every player snapshot in memory and flushes the whole map
// to a single JSON file. Flush writes a temp file and renames it over the
// target, so a crash mid-write never corrupts the last-known-good state.
type FileStore struct {
	path  string
	mu    sync.Mutex
	state map[string]*models.PlayerSnapshot
	dirty bool
}

// NewFileStore loads the state file if present. A file that fails to parse
// is renamed aside and the store starts empty rather than failing startup.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	s := &FileStore{
		path:  path,
		state: make(map[string]*models.PlayerSnapshot),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &s.state); err != nil {
		bad := fmt.Sprintf("%s.bad.%d", path, time.Now().Unix())
		logger.Log.Errorf("state file %s unreadable, moving to %s: %v", path, bad, err)
		if renameErr := os.Rename(path, bad); renameErr != nil {
			logger.Log.Errorf("failed to move bad state file: %v", renameErr)
		}
		s.state = make(map[string]*models.PlayerSnapshot)
		return s, nil
	}

	logger.Log.Infof("loaded %d player snapshots from %s", len(s.state), path)
	return s, nil
}

func (s *FileStore) Load(playerKey string) (*models.PlayerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.state[playerKey]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *snap
	return &copied, nil
}

func (s *FileStore) Save(playerKey string, update models.PlayerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.state[playerKey]
	if !ok {
		snap = &models.PlayerSnapshot{}
		s.state[playerKey] = snap
	}
	update.Apply(snap)
	s.dirty = true
	return nil
}

// Flush writes the state atomically: temp file first, then rename.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *FileStore) Close() error {
	return s.Flush()
}
