package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKey identifies one grid cell as "cx,cy". Cells are unbounded integers;
// only occupied cells exist in the index, so there is nothing special about
// world edges.
type CellKey string

// CellKeyFor buckets a world position into a grid cell.
func CellKeyFor(x, y, cellSize float64) CellKey {
	cx := int(math.Floor(x / cellSize))
	cy := int(math.Floor(y / cellSize))
	return CellKey(fmt.Sprintf("%d,%d", cx, cy))
}

func (k CellKey) split() (cx, cy int, ok bool) {
	parts := strings.SplitN(string(k), ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	cx, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	cy, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return cx, cy, true
}

// SpatialIndex maps cells to the set of player ids occupying them. A player
// id lives in exactly one cell set at a time; callers keep it in sync with
// Player.Cell via Move.
type SpatialIndex struct {
	cells map[CellKey]map[string]struct{}
}

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{cells: make(map[CellKey]map[string]struct{})}
}

// Insert adds the id to the cell's set, creating the set if absent. Inserting
// an id already present is a no-op.
func (s *SpatialIndex) Insert(id string, key CellKey) {
	set, ok := s.cells[key]
	if !ok {
		set = make(map[string]struct{})
		s.cells[key] = set
	}
	set[id] = struct{}{}
}

// Remove deletes the id from the cell's set, and the set itself once empty so
// memory stays bounded to occupied cells.
func (s *SpatialIndex) Remove(id string, key CellKey) {
	set, ok := s.cells[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(s.cells, key)
	}
}

// Move relocates the id from oldKey to newKey. No-op when the cell did not
// change.
func (s *SpatialIndex) Move(id string, oldKey, newKey CellKey) {
	if oldKey == newKey {
		return
	}
	s.Remove(id, oldKey)
	s.Insert(id, newKey)
}

// Neighbors returns the ids in the 3x3 block of cells centered on key: the
// AOI visibility rule. An empty or malformed key yields an empty set.
func (s *SpatialIndex) Neighbors(key CellKey) map[string]struct{} {
	out := make(map[string]struct{})
	cx, cy, ok := key.split()
	if !ok {
		return out
	}
	for x := cx - 1; x <= cx+1; x++ {
		for y := cy - 1; y <= cy+1; y++ {
			k := CellKey(fmt.Sprintf("%d,%d", x, y))
			for id := range s.cells[k] {
				out[id] = struct{}{}
			}
		}
	}
	return out
}

// OccupiedCells reports how many cells currently hold at least one player.
func (s *SpatialIndex) OccupiedCells() int {
	return len(s.cells)
}

// Contains reports whether id is present in the set for key.
func (s *SpatialIndex) Contains(id string, key CellKey) bool {
	_, ok := s.cells[key][id]
	return ok
}
