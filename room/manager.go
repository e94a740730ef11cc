// room/manager.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/worldsync/config"
	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/monitor"
	"github.com/wfunc/worldsync/timer"
	"github.com/wfunc/worldsync/world"
)

// Manager 管理所有房间: the process-wide room table, constructed once and
// injected into the connection handlers. Rooms tick independently on the
// shared timer manager.
type Manager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	timers *timer.TimerManager
	cfg    config.WorldConfig
	mon    *monitor.Monitor
}

func NewManager(cfg config.WorldConfig, timers *timer.TimerManager, mon *monitor.Monitor) *Manager {
	return &Manager{
		rooms:  make(map[string]*Room),
		timers: timers,
		cfg:    cfg,
		mon:    mon,
	}
}

// GetOrCreate returns the live room for id, creating it with the default
// object set and scheduling its tick task on first join.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, exists := m.rooms[id]; exists {
		return r
	}

	r := NewRoom(id, m.cfg, world.DefaultObjects(), m.mon)
	m.schedule(r)

	m.rooms[id] = r
	if m.mon != nil {
		m.mon.SetActiveRooms(len(m.rooms))
	}
	logger.Log.Infof("created room %s", id)
	return r
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, exists := m.rooms[id]
	return r, exists
}

// schedule registers the room's repeating tick task and installs the cancel
// func the draining state fires.
func (m *Manager) schedule(r *Room) {
	interval := time.Second / time.Duration(m.cfg.TickRate)
	timerID := m.timers.AddTimer(interval, interval, r.Tick)
	r.setStopTick(func() {
		m.timers.RemoveTimer(timerID)
		m.remove(r.ID)
	})
}

// remove drops the room from the table. Re-checks emptiness under the table
// lock: a join that raced the drain arrives here with the tick task already
// cancelled, so the room must be re-armed, not just kept.
func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.rooms[id]
	if !exists {
		return
	}
	if r.PlayerCount() > 0 {
		r.reactivate()
		m.schedule(r)
		logger.Log.Infof("room %s repopulated during drain, re-armed", id)
		return
	}
	delete(m.rooms, id)
	if m.mon != nil {
		m.mon.SetActiveRooms(len(m.rooms))
	}
	logger.Log.Infof("room %s destroyed", id)
}

// Counts reports the active-room count and per-room player counts for the
// health endpoint and the status RPC.
func (m *Manager) Counts() (int, map[string]int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	players := make(map[string]int, len(m.rooms))
	for id, r := range m.rooms {
		players[id] = r.PlayerCount()
	}
	return len(m.rooms), players
}
