package network

import (
	"errors"
	"testing"
	"time"

	"github.com/wfunc/worldsync/world"
)

func TestDecodeClientMessage_Move(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"move","x":12.5,"y":40}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	move, ok := msg.(MoveMessage)
	if !ok {
		t.Fatalf("expected MoveMessage, got %T", msg)
	}
	if move.X != 12.5 || move.Y != 40 {
		t.Errorf("unexpected coordinates: %+v", move)
	}
}

func TestDecodeClientMessage_Malformed(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"type":"move","x":1}`,           // missing y
		`{"type":"move"}`,                 // missing both
		`{"type":"teleport","x":1,"y":2}`, // unknown tag
		`{}`,                              // no tag
	}
	for _, raw := range cases {
		if _, err := DecodeClientMessage([]byte(raw)); !errors.Is(err, ErrProtocol) {
			t.Errorf("frame %q: expected ErrProtocol, got %v", raw, err)
		}
	}
}

func TestBuildDelta_NoNilSlices(t *testing.T) {
	d := BuildDelta(nil, nil, nil, time.Now())
	if d.Upserts == nil || d.Removes == nil || d.ObjRemoves == nil {
		t.Error("delta slices must serialize as [] not null")
	}
	if d.Proto != ProtoVersion || d.Type != MsgDelta {
		t.Errorf("unexpected envelope: %+v", d)
	}
}

func TestBuildSnapshot(t *testing.T) {
	players := map[string]world.PlayerState{
		"p1": {ID: "p1", X: 1, Y: 2},
	}
	objects := []world.ObjectState{{ID: "pickup_1", Type: world.ObjectPickup, X: 400, Y: 400}}

	s := BuildSnapshot(players, objects, time.UnixMilli(1234))
	if s.Type != MsgSnapshot || s.Proto != ProtoVersion {
		t.Errorf("unexpected envelope: %+v", s)
	}
	if s.Ts != 1234 {
		t.Errorf("expected ts 1234, got %d", s.Ts)
	}
	if len(s.Players) != 1 || len(s.Objects) != 1 {
		t.Errorf("unexpected payload sizes: %d players, %d objects", len(s.Players), len(s.Objects))
	}
}
