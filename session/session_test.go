package session

import (
	"net"
	"testing"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent   []interface{}
	closed bool
}

func (m *MockConnection) Send(v interface{}) error {
	m.sent = append(m.sent, v)
	return nil
}

func (m *MockConnection) Close() error {
	m.closed = true
	return nil
}

func (m *MockConnection) RemoteAddr() net.Addr       { return &net.TCPAddr{} }
func (m *MockConnection) ReadFrame() ([]byte, error) { return nil, nil }

func TestSession_Send(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s1", conn)

	before := sess.LastActive
	if err := sess.Send(map[string]string{"type": "welcome"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(conn.sent) != 1 {
		t.Errorf("expected 1 frame sent, got %d", len(conn.sent))
	}
	if sess.LastActive.Before(before) {
		t.Error("LastActive should not go backwards on Send")
	}
}

func TestManager_AddGetRemove(t *testing.T) {
	m := NewManager()
	sess := NewSession("s1", &MockConnection{})
	sess.PlayerID = "p1"

	m.Add(sess)
	if m.Count() != 1 {
		t.Fatalf("expected count 1, got %d", m.Count())
	}

	got, exists := m.Get("s1")
	if !exists || got != sess {
		t.Fatal("Get should return the added session")
	}

	m.Remove("s1")
	if _, exists := m.Get("s1"); exists {
		t.Error("session still present after Remove")
	}
	if m.Count() != 0 {
		t.Errorf("expected count 0, got %d", m.Count())
	}
}
