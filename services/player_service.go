package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/models"
	"github.com/wfunc/worldsync/persistence"
)

// SpawnState is what a joining connection gets back: either restored durable
// state or a fresh default spawn.
type SpawnState struct {
	RoomID   string
	Name     string
	Color    string
	X        float64
	Y        float64
	Restored bool
}

// PlayerService is the persistence gateway between rooms and the Store.
// Writes are coalesced per player key and flushed on a debounce timer so the
// tick path never touches storage.
type PlayerService struct {
	store    persistence.Store
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]models.PlayerUpdate
	timer   *time.Timer
}

func NewPlayerService(store persistence.Store, debounce time.Duration) *PlayerService {
	return &PlayerService{
		store:    store,
		debounce: debounce,
		pending:  make(map[string]models.PlayerUpdate),
	}
}

// LoadOrCreate restores the player keyed by playerKey, falling back to a
// default spawn when no record exists or the load fails. Caller-supplied
// room/name/color win over persisted values; empty ones fall back.
func (s *PlayerService) LoadOrCreate(playerKey, roomID, name, color string) SpawnState {
	spawn := SpawnState{
		RoomID: roomID,
		Name:   name,
		Color:  color,
		X:      rand.Float64()*300 + 50,
		Y:      rand.Float64()*300 + 50,
	}

	snap, err := s.store.Load(playerKey)
	if err != nil {
		if err != persistence.ErrRecordNotFound {
			logger.Log.Errorf("failed to load player %s, using default spawn: %v", playerKey, err)
		}
	} else {
		spawn.Restored = true
		spawn.X = snap.X
		spawn.Y = snap.Y
		if spawn.RoomID == "" {
			spawn.RoomID = snap.RoomID
		}
		if spawn.Name == "" {
			spawn.Name = snap.Name
		}
		if spawn.Color == "" {
			spawn.Color = snap.Color
		}
	}

	if spawn.Color == "" {
		spawn.Color = fmt.Sprintf("#%06x", rand.Intn(0x1000000))
	}
	return spawn
}

// SaveIdentity records the player's room and appearance.
func (s *PlayerService) SaveIdentity(playerKey, roomID, name, color string, x, y float64) {
	s.enqueue(playerKey, models.PlayerUpdate{
		RoomID: models.String(roomID),
		Name:   models.String(name),
		Color:  models.String(color),
		X:      models.Float64(x),
		Y:      models.Float64(y),
		Ts:     models.Int64(time.Now().UnixMilli()),
	})
}

// SavePosition records an accepted move.
func (s *PlayerService) SavePosition(playerKey string, x, y float64) {
	s.enqueue(playerKey, models.PlayerUpdate{
		X:  models.Float64(x),
		Y:  models.Float64(y),
		Ts: models.Int64(time.Now().UnixMilli()),
	})
}

func (s *PlayerService) enqueue(playerKey string, update models.PlayerUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.pending[playerKey]
	cur.Merge(update)
	s.pending[playerKey] = cur

	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flushPending)
	}
}

func (s *PlayerService) flushPending() {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]models.PlayerUpdate)
	s.timer = nil
	s.mu.Unlock()

	for key, update := range batch {
		if err := s.store.Save(key, update); err != nil {
			logger.Log.Errorf("failed to save player %s: %v", key, err)
		}
	}
	if err := s.store.Flush(); err != nil {
		logger.Log.Errorf("failed to flush player store: %v", err)
	}
}

// Flush forces pending writes out synchronously; used at shutdown.
func (s *PlayerService) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}
