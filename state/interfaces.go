// state/interfaces.go
package state

// RoomContext is the slice of a Room the lifecycle states need. Defined here
// to break the import cycle between room and state.
type RoomContext interface {
	GetID() string
	PlayerCount() int
	StopTicking()
}
