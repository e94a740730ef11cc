// state/lifecycle.go
package state

// 房间生命周期状态基础结构
type RoomStateBase struct {
	ID   string
	Room RoomContext
}

func (s *RoomStateBase) GetID() string {
	return s.ID
}

func (s *RoomStateBase) OnEnter() {
	// 默认实现
}

func (s *RoomStateBase) OnExit() {
	// 默认实现
}

// ActiveState: the room has at least one player and its tick schedule runs.
type ActiveState struct {
	RoomStateBase
}

func NewActiveState(room RoomContext) *ActiveState {
	return &ActiveState{
		RoomStateBase: RoomStateBase{
			ID:   "active",
			Room: room,
		},
	}
}

// DrainingState: the last player left; entering it cancels the tick
// schedule. The room table entry is removed right after, so a rejoin under
// the same id builds a brand-new room.
type DrainingState struct {
	RoomStateBase
}

func NewDrainingState(room RoomContext) *DrainingState {
	return &DrainingState{
		RoomStateBase: RoomStateBase{
			ID:   "draining",
			Room: room,
		},
	}
}

func (s *DrainingState) OnEnter() {
	s.Room.StopTicking()
}

// NewLifecycleMachine builds the room machine: active is initial, and the
// only allowed transition is active -> draining once the room is empty.
func NewLifecycleMachine(room RoomContext) *BaseStateMachine {
	active := NewActiveState(room)
	machine := NewBaseStateMachine(active)
	machine.AddTransition(active, NewDrainingState(room), func() bool {
		return room.PlayerCount() == 0
	})
	return machine
}
