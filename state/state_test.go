package state

import (
	"testing"
)

// MockState is a test double for the State interface.
// It helps us track which methods have been called.
type MockState struct {
	ID            string
	OnEnterCalled bool
	OnExitCalled  bool
}

func (m *MockState) OnEnter() {
	m.OnEnterCalled = true
}

func (m *MockState) OnExit() {
	m.OnExitCalled = true
}

func (m *MockState) GetID() string {
	return m.ID
}

// reset clears the call tracking flags.
func (m *MockState) reset() {
	m.OnEnterCalled = false
	m.OnExitCalled = false
}

// MockRoom is a test double for the RoomContext interface.
type MockRoom struct {
	id           string
	playerCount  int
	tickingStops int
}

func (m *MockRoom) GetID() string    { return m.id }
func (m *MockRoom) PlayerCount() int { return m.playerCount }
func (m *MockRoom) StopTicking()     { m.tickingStops++ }

func TestStateMachine_InitialState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	sm := NewBaseStateMachine(initialState)

	if !initialState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}

	if sm.GetCurrentState() != initialState {
		t.Error("GetCurrentState should return the initial state")
	}
}

func TestStateMachine_ChangeState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	nextState := &MockState{ID: "next"}

	sm := NewBaseStateMachine(initialState)
	initialState.reset()

	err := sm.ChangeState(nextState)
	if err != nil {
		t.Fatalf("ChangeState should not return an error, but got: %v", err)
	}

	if !initialState.OnExitCalled {
		t.Error("Expected OnExit to be called on the old state")
	}

	if !nextState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the new state")
	}

	if sm.GetCurrentState() != nextState {
		t.Error("GetCurrentState should return the new state")
	}
}

func TestStateMachine_BlockedTransition(t *testing.T) {
	stateA := &MockState{ID: "A"}
	stateB := &MockState{ID: "B"}

	sm := NewBaseStateMachine(stateA)

	err := sm.AddTransition(stateA, stateB, func() bool { return false })
	if err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	stateA.reset()
	err = sm.ChangeState(stateB)
	if err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState().GetID() != "A" {
		t.Errorf("Expected current state to remain A, but got %s", sm.GetCurrentState().GetID())
	}
	if stateA.OnExitCalled {
		t.Error("OnExit should not be called on the current state if transition is blocked")
	}
	if stateB.OnEnterCalled {
		t.Error("OnEnter should not be called on the new state if transition is blocked")
	}
}

// chainState drives a follow-up transition from inside its own OnEnter, the
// way a draining room's teardown flips back to active when it discovers a
// racing join.
type chainState struct {
	MockState
	sm       *BaseStateMachine
	next     State
	chainErr error
}

func (s *chainState) OnEnter() {
	s.OnEnterCalled = true
	if s.next != nil {
		s.chainErr = s.sm.ChangeState(s.next)
	}
}

func TestStateMachine_TransitionFromOnEnter(t *testing.T) {
	initial := &MockState{ID: "initial"}
	sm := NewBaseStateMachine(initial)

	final := &MockState{ID: "final"}
	mid := &chainState{MockState: MockState{ID: "mid"}, sm: sm, next: final}

	if err := sm.ChangeState(mid); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if mid.chainErr != nil {
		t.Fatalf("chained ChangeState failed: %v", mid.chainErr)
	}
	if sm.GetCurrentState() != final {
		t.Errorf("expected final state, got %s", sm.GetCurrentState().GetID())
	}
	if !mid.OnEnterCalled || !final.OnEnterCalled {
		t.Error("OnEnter chain not fully executed")
	}
}

func TestLifecycle_DrainBlockedWhileOccupied(t *testing.T) {
	room := &MockRoom{id: "r1", playerCount: 2}
	sm := NewLifecycleMachine(room)

	if sm.GetCurrentState().GetID() != "active" {
		t.Fatalf("initial state should be active, got %s", sm.GetCurrentState().GetID())
	}

	err := sm.ChangeState(NewDrainingState(room))
	if err != ErrTransitionNotAllowed {
		t.Errorf("occupied room must not drain, got: %v", err)
	}
	if room.tickingStops != 0 {
		t.Error("StopTicking must not fire on a blocked transition")
	}
}

func TestLifecycle_DrainStopsTicking(t *testing.T) {
	room := &MockRoom{id: "r1", playerCount: 0}
	sm := NewLifecycleMachine(room)

	if err := sm.ChangeState(NewDrainingState(room)); err != nil {
		t.Fatalf("empty room should drain, got: %v", err)
	}
	if sm.GetCurrentState().GetID() != "draining" {
		t.Errorf("expected draining state, got %s", sm.GetCurrentState().GetID())
	}
	if room.tickingStops != 1 {
		t.Errorf("expected exactly one StopTicking call, got %d", room.tickingStops)
	}
}
