package world

import (
	"fmt"
	"math"
	"sort"
)

// Map holds every region on the campaign map, keyed by id.
type Map struct {
	Regions map[string]*Region `json:"-"`
}

// NewMap creates an empty region map.
func NewMap() *Map {
	return &Map{Regions: make(map[string]*Region)}
}

// Get returns the region with the given id, or nil if unknown.
func (m *Map) Get(id string) *Region {
	return m.Regions[id]
}

// Set places a region on the map, replacing any region with the same id.
func (m *Map) Set(r *Region) {
	m.Regions[r.ID] = r
}

// RegionCount returns the number of regions on the map.
func (m *Map) RegionCount() int {
	return len(m.Regions)
}

// Distance returns the straight-line distance between two positions.
func Distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// adjacencyFactor scales the size-sum threshold below which two regions
// count as adjacent. The heuristic stands in for real pathfinding and is
// deliberately replaceable.
const adjacencyFactor = 0.75

// Adjacent reports whether two regions border each other. Regions on
// different landmasses never do.
func (m *Map) Adjacent(aID, bID string) bool {
	a := m.Get(aID)
	b := m.Get(bID)
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if a.Landmass != b.Landmass {
		return false
	}
	return Distance(a.Position, b.Position) <= (a.Size+b.Size)*adjacencyFactor
}

// AdjacentRegions returns the ids of all regions bordering the given one,
// sorted for deterministic iteration.
func (m *Map) AdjacentRegions(id string) []string {
	var out []string
	for other := range m.Regions {
		if other == id {
			continue
		}
		if m.Adjacent(id, other) {
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out
}

// SortedRegions returns every region ordered by id, for deterministic
// iteration and stable API output.
func (m *Map) SortedRegions() []*Region {
	ids := make([]string, 0, len(m.Regions))
	for id := range m.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Region, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.Regions[id])
	}
	return out
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(regions=%d)", len(m.Regions))
}
