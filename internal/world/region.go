// Package world provides the region map, terrain kinds, and the
// distance-based adjacency heuristic used for overland movement.
package world

// RegionType categorizes a region's dominant terrain.
type RegionType uint8

const (
	RegionPlains  RegionType = iota // Open farmland — fastest marching
	RegionCoastal                   // Shoreline and beach landings
	RegionForest                    // Dense woodland — slow going
	RegionFjord                     // Steep inlets and narrow passes
	RegionMountain                  // High passes — slowest terrain
)

// Position is a point on the campaign map, in abstract map units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is one territory on the campaign map.
type Region struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     RegionType `json:"type"`
	Position Position   `json:"position"`
	Size     float64    `json:"size"`     // Rough radius in map units
	Landmass string     `json:"landmass"` // Regions on different landmasses are never adjacent

	// Which faction claims this region. Empty = unclaimed or player-held.
	OwnerFactionID string `json:"owner_faction_id,omitempty"`

	// Whether the player has scouted this region.
	Discovered bool `json:"discovered"`

	// Raid yield multipliers per resource, on top of the type defaults.
	ResourceModifiers map[string]float64 `json:"resource_modifiers,omitempty"`
}

// SpeedModifier returns the marching-speed multiplier for a region type.
// Higher is faster: total leg days = base days / modifier.
func (t RegionType) SpeedModifier() float64 {
	switch t {
	case RegionPlains:
		return 1.2
	case RegionCoastal:
		return 1.0
	case RegionForest:
		return 0.8
	case RegionFjord:
		return 0.7
	case RegionMountain:
		return 0.6
	default:
		return 1.0
	}
}

// RaidModifier returns the default loot multiplier for a resource in this
// region type. Explicit per-region modifiers override these.
func (t RegionType) RaidModifier(resource string) float64 {
	mods := typeRaidModifiers[t]
	if m, ok := mods[resource]; ok {
		return m
	}
	return 1.0
}

var typeRaidModifiers = map[RegionType]map[string]float64{
	RegionPlains:   {"food": 1.5, "wood": 0.8},
	RegionCoastal:  {"food": 1.3, "metal": 0.9},
	RegionForest:   {"wood": 2.0, "food": 0.8},
	RegionFjord:    {"food": 1.1, "metal": 1.2},
	RegionMountain: {"metal": 1.8, "stone": 2.0, "food": 0.5},
}

// RaidModifier returns the effective loot multiplier for a resource,
// preferring the region's own modifier table over the type default.
func (r *Region) RaidModifier(resource string) float64 {
	if r.ResourceModifiers != nil {
		if m, ok := r.ResourceModifiers[resource]; ok {
			return m
		}
	}
	return r.Type.RaidModifier(resource)
}

// TypeName returns a human-readable name for a region type.
func TypeName(t RegionType) string {
	switch t {
	case RegionPlains:
		return "Plains"
	case RegionCoastal:
		return "Coastal"
	case RegionForest:
		return "Forest"
	case RegionFjord:
		return "Fjord"
	case RegionMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// ParseRegionType maps a config string to a RegionType.
func ParseRegionType(s string) (RegionType, bool) {
	switch s {
	case "plains":
		return RegionPlains, true
	case "coastal":
		return RegionCoastal, true
	case "forest":
		return RegionForest, true
	case "fjord":
		return RegionFjord, true
	case "mountain":
		return RegionMountain, true
	default:
		return RegionPlains, false
	}
}
