package world

import "time"

// Player is the authoritative runtime state for one connected player. It is
// owned by exactly one Room and only touched under that room's lock.
type Player struct {
	ID    string
	Name  string
	Color string
	X     float64
	Y     float64

	// Cell is derived from (X, Y); it must never be set independently of the
	// SpatialIndex (see SpatialIndex.Move).
	Cell CellKey

	UpdatedAt time.Time
	Dirty     bool

	// LastMoveAt is the accept time of the most recent move, used by the
	// rate limiter.
	LastMoveAt time.Time
}

// PlayerState is the wire representation of a player inside snapshot and
// delta payloads.
type PlayerState struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Ts    int64   `json:"ts"`
}

func (p *Player) State() PlayerState {
	return PlayerState{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
		X:     p.X,
		Y:     p.Y,
		Ts:    p.UpdatedAt.UnixMilli(),
	}
}
