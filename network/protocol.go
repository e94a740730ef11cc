// network/protocol.go
package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/worldsync/world"
)

// ProtoVersion is carried by every server frame so clients can discover
// additions by version. v2 synced players only; v3 added world objects.
const ProtoVersion = 3

const (
	MsgWelcome  = "welcome"
	MsgSnapshot = "snapshot"
	MsgDelta    = "delta"
	MsgMove     = "move"
)

// ErrProtocol marks an unparseable or unknown inbound frame. Such frames are
// dropped and logged; they never disconnect the client.
var ErrProtocol = errors.New("protocol error")

// MoveMessage is the only client-to-server frame.
type MoveMessage struct {
	X float64
	Y float64
}

// clientEnvelope is the deserialization boundary: the tag plus optional
// fields of every known client frame. Pointers distinguish absent fields
// from zero values.
type clientEnvelope struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

// DecodeClientMessage validates a raw frame into a typed message. Unknown
// tags and missing fields map to ErrProtocol.
func DecodeClientMessage(data []byte) (interface{}, error) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	switch env.Type {
	case MsgMove:
		if env.X == nil || env.Y == nil {
			return nil, fmt.Errorf("%w: move frame missing coordinates", ErrProtocol)
		}
		return MoveMessage{X: *env.X, Y: *env.Y}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrProtocol, env.Type)
	}
}

// Welcome is sent once per connection, immediately after join.
type Welcome struct {
	Type      string                       `json:"type"`
	Proto     int                          `json:"proto"`
	RoomID    string                       `json:"roomId"`
	PlayerID  string                       `json:"playerId"`
	PlayerKey string                       `json:"playerKey"`
	Players   map[string]world.PlayerState `json:"players"`
	Objects   []world.ObjectState          `json:"objects"`
	Ts        int64                        `json:"ts"`
}

// Snapshot is the periodic full re-sync of a client's area of interest.
type Snapshot struct {
	Type    string                       `json:"type"`
	Proto   int                          `json:"proto"`
	Players map[string]world.PlayerState `json:"players"`
	Objects []world.ObjectState          `json:"objects"`
	Ts      int64                        `json:"ts"`
}

// Delta carries only what changed since the previous broadcast. Upserts are
// AOI-filtered; removal lists are room-wide.
type Delta struct {
	Type       string              `json:"type"`
	Proto      int                 `json:"proto"`
	Upserts    []world.PlayerState `json:"upserts"`
	Removes    []string            `json:"removes"`
	ObjRemoves []string            `json:"objRemoves"`
	Ts         int64               `json:"ts"`
}

// The builders below are the sync codec: pure transformations from room
// state to wire structs, no side effects.

func BuildWelcome(roomID, playerID, playerKey string, players map[string]world.PlayerState, objects []world.ObjectState, now time.Time) Welcome {
	return Welcome{
		Type:      MsgWelcome,
		Proto:     ProtoVersion,
		RoomID:    roomID,
		PlayerID:  playerID,
		PlayerKey: playerKey,
		Players:   players,
		Objects:   objects,
		Ts:        now.UnixMilli(),
	}
}

func BuildSnapshot(players map[string]world.PlayerState, objects []world.ObjectState, now time.Time) Snapshot {
	return Snapshot{
		Type:    MsgSnapshot,
		Proto:   ProtoVersion,
		Players: players,
		Objects: objects,
		Ts:      now.UnixMilli(),
	}
}

func BuildDelta(upserts []world.PlayerState, removes, objRemoves []string, now time.Time) Delta {
	if upserts == nil {
		upserts = []world.PlayerState{}
	}
	if removes == nil {
		removes = []string{}
	}
	if objRemoves == nil {
		objRemoves = []string{}
	}
	return Delta{
		Type:       MsgDelta,
		Proto:      ProtoVersion,
		Upserts:    upserts,
		Removes:    removes,
		ObjRemoves: objRemoves,
		Ts:         now.UnixMilli(),
	}
}
