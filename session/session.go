// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/worldsync/network"
)

// Session is one connected client: the socket plus the identity resolved at
// join time. PlayerID doubles as the runtime player id inside the room.
type Session struct {
	ID         string
	Conn       network.Connection
	PlayerID   string
	PlayerKey  string
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Send enqueues one server frame. Errors mean this client only; callers log
// and move on.
func (s *Session) Send(v interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.Send(v)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
