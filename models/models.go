// models/models.go
package models

// PlayerSnapshot is the durable per-player record keyed by player key. It is
// what a rejoining client gets restored from.
type PlayerSnapshot struct {
	RoomID string  `json:"roomId,omitempty"`
	Name   string  `json:"name,omitempty"`
	Color  string  `json:"color,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Ts     int64   `json:"ts"`
}

// PlayerUpdate is a partial snapshot with merge semantics: nil fields leave
// the stored value untouched.
type PlayerUpdate struct {
	RoomID *string  `json:"roomId,omitempty"`
	Name   *string  `json:"name,omitempty"`
	Color  *string  `json:"color,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Ts     *int64   `json:"ts,omitempty"`
}

// Apply merges the update into the snapshot.
func (u PlayerUpdate) Apply(s *PlayerSnapshot) {
	if u.RoomID != nil {
		s.RoomID = *u.RoomID
	}
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Color != nil {
		s.Color = *u.Color
	}
	if u.X != nil {
		s.X = *u.X
	}
	if u.Y != nil {
		s.Y = *u.Y
	}
	if u.Ts != nil {
		s.Ts = *u.Ts
	}
}

// Merge folds a later update into u, for coalescing pending writes.
func (u *PlayerUpdate) Merge(next PlayerUpdate) {
	if next.RoomID != nil {
		u.RoomID = next.RoomID
	}
	if next.Name != nil {
		u.Name = next.Name
	}
	if next.Color != nil {
		u.Color = next.Color
	}
	if next.X != nil {
		u.X = next.X
	}
	if next.Y != nil {
		u.Y = next.Y
	}
	if next.Ts != nil {
		u.Ts = next.Ts
	}
}

func String(s string) *string    { return &s }
func Float64(f float64) *float64 { return &f }
func Int64(i int64) *int64       { return &i }
