package services

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/models"
	"github.com/wfunc/worldsync/persistence"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockStore records saves and serves a canned snapshot per key.
type MockStore struct {
	mu      sync.Mutex
	records map[string]*models.PlayerSnapshot
	saves   map[string][]models.PlayerUpdate
	flushes int
	loadErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]*models.PlayerSnapshot),
		saves:   make(map[string][]models.PlayerUpdate),
	}
}

func (m *MockStore) Load(playerKey string) (*models.PlayerSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	snap, ok := m.records[playerKey]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	copied := *snap
	return &copied, nil
}

func (m *MockStore) Save(playerKey string, update models.PlayerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[playerKey] = append(m.saves[playerKey], update)
	return nil
}

func (m *MockStore) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

func (m *MockStore) Close() error { return nil }

func (m *MockStore) SaveCount(playerKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves[playerKey])
}

func (m *MockStore) LastSave(playerKey string) (models.PlayerUpdate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saves := m.saves[playerKey]
	if len(saves) == 0 {
		return models.PlayerUpdate{}, false
	}
	return saves[len(saves)-1], true
}

func TestLoadOrCreate_DefaultSpawn(t *testing.T) {
	svc := NewPlayerService(NewMockStore(), time.Second)

	spawn := svc.LoadOrCreate("pk-new", "poc_world", "Alice", "")
	if spawn.Restored {
		t.Error("unknown key should not be restored")
	}
	if spawn.RoomID != "poc_world" || spawn.Name != "Alice" {
		t.Errorf("caller identity not honored: %+v", spawn)
	}
	if spawn.X < 50 || spawn.X > 350 || spawn.Y < 50 || spawn.Y > 350 {
		t.Errorf("default spawn outside expected range: (%v, %v)", spawn.X, spawn.Y)
	}
	if spawn.Color == "" {
		t.Error("expected a generated color")
	}
}

func TestLoadOrCreate_Restore(t *testing.T) {
	store := NewMockStore()
	store.records["pk-1"] = &models.PlayerSnapshot{
		RoomID: "poc_world",
		Name:   "Saved",
		Color:  "#112233",
		X:      1234,
		Y:      567,
	}
	svc := NewPlayerService(store, time.Second)

	spawn := svc.LoadOrCreate("pk-1", "", "", "")
	if !spawn.Restored {
		t.Fatal("expected restore")
	}
	if spawn.X != 1234 || spawn.Y != 567 {
		t.Errorf("position not restored: (%v, %v)", spawn.X, spawn.Y)
	}
	if spawn.RoomID != "poc_world" || spawn.Name != "Saved" || spawn.Color != "#112233" {
		t.Errorf("identity not restored: %+v", spawn)
	}
}

func TestLoadOrCreate_CallerParamsWin(t *testing.T) {
	store := NewMockStore()
	store.records["pk-1"] = &models.PlayerSnapshot{
		RoomID: "old_room",
		Name:   "Old",
		Color:  "#000000",
		X:      10,
		Y:      20,
	}
	svc := NewPlayerService(store, time.Second)

	spawn := svc.LoadOrCreate("pk-1", "new_room", "New", "#ffffff")
	if spawn.RoomID != "new_room" || spawn.Name != "New" || spawn.Color != "#ffffff" {
		t.Errorf("caller params should win over persisted: %+v", spawn)
	}
	// 坐标始终来自存档
	if spawn.X != 10 || spawn.Y != 20 {
		t.Errorf("position should come from the record: (%v, %v)", spawn.X, spawn.Y)
	}
}

func TestDebounce_CoalescesWrites(t *testing.T) {
	store := NewMockStore()
	svc := NewPlayerService(store, 50*time.Millisecond)

	svc.SavePosition("pk-1", 100, 100)
	svc.SavePosition("pk-1", 110, 100)
	svc.SavePosition("pk-1", 120, 100)

	if store.SaveCount("pk-1") != 0 {
		t.Fatal("writes should be held until the debounce fires")
	}

	time.Sleep(200 * time.Millisecond)

	if got := store.SaveCount("pk-1"); got != 1 {
		t.Fatalf("expected one coalesced save, got %d", got)
	}
	last, _ := store.LastSave("pk-1")
	if last.X == nil || *last.X != 120 {
		t.Error("coalesced save should carry the latest position")
	}
}

func TestFlush_Synchronous(t *testing.T) {
	store := NewMockStore()
	svc := NewPlayerService(store, time.Hour)

	svc.SaveIdentity("pk-1", "poc_world", "Alice", "#ff0000", 5, 6)
	svc.Flush()

	if store.SaveCount("pk-1") != 1 {
		t.Fatal("Flush should write pending updates immediately")
	}
	last, _ := store.LastSave("pk-1")
	if last.Name == nil || *last.Name != "Alice" || last.RoomID == nil || *last.RoomID != "poc_world" {
		t.Errorf("identity fields missing from save: %+v", last)
	}
	if store.flushes == 0 {
		t.Error("store.Flush not called")
	}
}
