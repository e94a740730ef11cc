package world

import "math"

type ObjectType string

const (
	ObjectPickup ObjectType = "pickup"
	ObjectNPC    ObjectType = "npc"
	ObjectPortal ObjectType = "portal"
)

// WorldObject is a room-scoped static entity. Pickups flip Active false on
// their first qualifying collision and never come back; the room reports the
// transition once through its object-removal list.
type WorldObject struct {
	ID     string
	Type   ObjectType
	X      float64
	Y      float64
	Active bool
}

// ObjectState is the wire representation used in welcome and snapshot
// payloads. Inactive objects are never serialized.
type ObjectState struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

func (o *WorldObject) State() ObjectState {
	return ObjectState{ID: o.ID, Type: o.Type, X: o.X, Y: o.Y}
}

// CollectPickups checks the mover at (x, y) against every active pickup and
// deactivates the ones within radius, returning their ids. Only the mover is
// scanned, so the per-tick cost stays O(moves x objects).
func CollectPickups(objects []*WorldObject, x, y, radius float64) []string {
	var removed []string
	for _, o := range objects {
		if o.Type != ObjectPickup || !o.Active {
			continue
		}
		if math.Hypot(o.X-x, o.Y-y) < radius {
			o.Active = false
			removed = append(removed, o.ID)
		}
	}
	return removed
}

// DefaultObjects is the object set seeded into every new room. Rooms never
// respawn consumed objects; a recreated room starts from this list again.
func DefaultObjects() []*WorldObject {
	return []*WorldObject{
		{ID: "pickup_1", Type: ObjectPickup, X: 400, Y: 400, Active: true},
		{ID: "pickup_2", Type: ObjectPickup, X: 150, Y: 150, Active: true},
		{ID: "pickup_3", Type: ObjectPickup, X: 250, Y: 250, Active: true},
		{ID: "pickup_4", Type: ObjectPickup, X: 350, Y: 150, Active: true},
		{ID: "pickup_5", Type: ObjectPickup, X: 450, Y: 450, Active: true},
		{ID: "npc_1", Type: ObjectNPC, X: 600, Y: 600, Active: true},
		{ID: "portal_1", Type: ObjectPortal, X: 2500, Y: 2500, Active: true},
	}
}
