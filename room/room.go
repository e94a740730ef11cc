// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/worldsync/config"
	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/monitor"
	"github.com/wfunc/worldsync/network"
	"github.com/wfunc/worldsync/session"
	"github.com/wfunc/worldsync/state"
	"github.com/wfunc/worldsync/world"
)

// Room 是世界同步的核心结构: it exclusively owns its players, spatial index
// and objects. One mutex serializes ticks against move handlers and
// join/leave, so a tick body always observes a consistent world.
type Room struct {
	ID string

	mu       sync.Mutex
	players  map[string]*world.Player
	sessions map[string]*session.Session // playerID -> session
	grid     *world.SpatialIndex
	objects  []*world.WorldObject

	validator        world.MoveValidator
	cellSize         float64
	pickupRadius     float64
	snapshotInterval time.Duration

	lastSnapshotAt time.Time
	removedPlayers []string
	removedObjects []string

	lifecycle state.StateMachine
	stopTick  func() // installed by the manager; cancels this room's tick task
	CreatedAt time.Time

	mon *monitor.Monitor
}

// NewRoom 创建一个新房间 seeded with the default object set. The tick
// schedule is wired up by the manager, not here.
func NewRoom(id string, cfg config.WorldConfig, objects []*world.WorldObject, mon *monitor.Monitor) *Room {
	r := &Room{
		ID:       id,
		players:  make(map[string]*world.Player),
		sessions: make(map[string]*session.Session),
		grid:     world.NewSpatialIndex(),
		objects:  objects,
		validator: world.MoveValidator{
			WorldWidth:  cfg.Width,
			WorldHeight: cfg.Height,
			MaxSpeed:    cfg.MaxSpeed,
			SpeedBuffer: cfg.SpeedBuffer,
			Throttle:    time.Duration(cfg.MoveThrottleMs) * time.Millisecond,
			SpeedCheck:  cfg.SpeedCheck,
		},
		cellSize:         cfg.CellSize,
		pickupRadius:     cfg.PickupRadius,
		snapshotInterval: time.Duration(cfg.SnapshotIntervalMs) * time.Millisecond,
		CreatedAt:        time.Now(),
		mon:              mon,
	}
	r.lifecycle = state.NewLifecycleMachine(r)
	return r
}

// --- state.RoomContext ---

func (r *Room) GetID() string {
	return r.ID
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// StopTicking cancels the room's tick task. The cancel func is consumed
// under the lock so a drain and a later re-arm never double-cancel.
func (r *Room) StopTicking() {
	r.mu.Lock()
	stop := r.stopTick
	r.stopTick = nil
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (r *Room) setStopTick(f func()) {
	r.mu.Lock()
	r.stopTick = f
	r.mu.Unlock()
}

// reactivate returns a draining room to the active state. Used when a join
// raced the teardown and the room must come back to life.
func (r *Room) reactivate() {
	if err := r.lifecycle.ChangeState(state.NewActiveState(r)); err != nil {
		logger.Log.Warnf("room %s: reactivate failed: %v", r.ID, err)
	}
}

// --- lifecycle ---

// Join registers the player, places it into the spatial index and sends the
// welcome frame. The player arrives dirty so the next tick broadcasts it.
func (r *Room) Join(sess *session.Session, p *world.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Cell = world.CellKeyFor(p.X, p.Y, r.cellSize)
	p.Dirty = true
	p.UpdatedAt = time.Now()

	r.players[p.ID] = p
	r.sessions[p.ID] = sess
	r.grid.Insert(p.ID, p.Cell)
	sess.RoomID = r.ID

	welcome := network.BuildWelcome(r.ID, p.ID, sess.PlayerKey, r.playerStates(), r.activeObjects(), time.Now())
	if err := sess.Send(welcome); err != nil {
		logger.Log.Warnf("room %s: failed to send welcome to %s: %v", r.ID, p.ID, err)
	}
}

// Leave removes the player and queues its id for one tick's removal list.
// When the room empties it transitions to draining, which cancels the tick
// schedule; the manager then drops the room from its table.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	p, exists := r.players[playerID]
	if !exists {
		r.mu.Unlock()
		return
	}
	r.grid.Remove(playerID, p.Cell)
	delete(r.players, playerID)
	delete(r.sessions, playerID)
	r.removedPlayers = append(r.removedPlayers, playerID)
	empty := len(r.players) == 0
	r.mu.Unlock()

	if empty {
		if err := r.lifecycle.ChangeState(state.NewDrainingState(r)); err != nil {
			// A join slipped in between the emptiness check and the
			// transition guard; the room stays active.
			logger.Log.Debugf("room %s: drain skipped: %v", r.ID, err)
		}
	}
}

// HandleMove validates and applies one proposed position. Returned picked
// ids have already been queued on the room's object-removal list. ok is
// false when the player vanished before the message was processed.
func (r *Room) HandleMove(playerID string, x, y float64, now time.Time) (verdict world.Verdict, picked []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return world.Accept, nil, false
	}

	verdict = r.validator.Validate(p, x, y, now)
	if verdict != world.Accept {
		return verdict, nil, true
	}

	newCell := world.CellKeyFor(x, y, r.cellSize)
	r.grid.Move(p.ID, p.Cell, newCell)
	p.Cell = newCell
	p.X = x
	p.Y = y
	p.UpdatedAt = now
	p.Dirty = true
	p.LastMoveAt = now

	picked = world.CollectPickups(r.objects, x, y, r.pickupRadius)
	if len(picked) > 0 {
		r.removedObjects = append(r.removedObjects, picked...)
		if r.mon != nil {
			r.mon.AddPickupsConsumed(len(picked))
		}
	}
	return world.Accept, picked, true
}

// Tick runs one synchronization step: decide snapshot-vs-delta, filter per
// client through its AOI neighborhood, broadcast, then clear dirty flags and
// removal lists. Guarded against firing on an already-drained room.
func (r *Room) Tick() {
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) == 0 {
		return
	}

	now := start
	isSnapshotTick := now.Sub(r.lastSnapshotAt) > r.snapshotInterval

	var upserts []world.PlayerState
	for _, p := range r.players {
		if p.Dirty || isSnapshotTick {
			upserts = append(upserts, p.State())
		}
	}
	removes := r.removedPlayers
	objRemoves := r.removedObjects

	if len(upserts) == 0 && len(removes) == 0 && len(objRemoves) == 0 && !isSnapshotTick {
		return
	}

	sent := false
	for _, sess := range r.sessions {
		me, exists := r.players[sess.PlayerID]
		if !exists {
			// Player record vanished mid-tick; never send to an
			// orphaned socket.
			continue
		}
		nearby := r.grid.Neighbors(me.Cell)

		if isSnapshotTick {
			visible := make(map[string]world.PlayerState, len(nearby))
			for id := range nearby {
				if p, okp := r.players[id]; okp {
					visible[id] = p.State()
				}
			}
			if err := sess.Send(network.BuildSnapshot(visible, r.activeObjects(), now)); err != nil {
				logger.Log.Warnf("room %s: snapshot send to %s failed: %v", r.ID, sess.PlayerID, err)
				continue
			}
			sent = true
			continue
		}

		var visible []world.PlayerState
		for _, ps := range upserts {
			if _, near := nearby[ps.ID]; near {
				visible = append(visible, ps)
			}
		}
		if len(visible) == 0 && len(removes) == 0 && len(objRemoves) == 0 {
			continue
		}
		if err := sess.Send(network.BuildDelta(visible, removes, objRemoves, now)); err != nil {
			logger.Log.Warnf("room %s: delta send to %s failed: %v", r.ID, sess.PlayerID, err)
			continue
		}
		sent = true
	}

	for _, p := range r.players {
		p.Dirty = false
	}
	r.removedPlayers = nil
	r.removedObjects = nil
	if isSnapshotTick {
		r.lastSnapshotAt = now
	}

	if r.mon != nil {
		if sent {
			r.mon.IncBroadcasts()
		}
		r.mon.ObserveTickDuration(time.Since(start))
	}
}

// --- helpers (callers hold r.mu) ---

func (r *Room) playerStates() map[string]world.PlayerState {
	out := make(map[string]world.PlayerState, len(r.players))
	for id, p := range r.players {
		out[id] = p.State()
	}
	return out
}

func (r *Room) activeObjects() []world.ObjectState {
	out := make([]world.ObjectState, 0, len(r.objects))
	for _, o := range r.objects {
		if o.Active {
			out = append(out, o.State())
		}
	}
	return out
}
