// Package social provides settlements, factions, and the resource kinds
// that flow between them as tribute and plunder.
package social

// Military holds a settlement's standing defense.
type Military struct {
	Warriors int `json:"warriors"` // Garrison available for muster or defense
	Defenses int `json:"defenses"` // Defense building level, 0–5
}

// Settlement is a population center anchored to one region.
type Settlement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RegionID string `json:"region_id"`

	// Owning faction. Empty = the player's own settlement.
	FactionID string `json:"faction_id,omitempty"`

	Population int `json:"population"`
	Rank       int `json:"rank"` // 0 hamlet … 5 capital

	Military  Military             `json:"military"`
	Resources map[Resource]float64 `json:"resources"`

	// Accumulated renown from raids, battles, and conquests.
	Fame float64 `json:"fame"`

	// Set once the settlement has been taken by force at least once.
	IsCaptured bool `json:"is_captured"`
}

// IsPlayer reports whether this settlement belongs to the player.
func (s *Settlement) IsPlayer() bool {
	return s.FactionID == ""
}

// AddResources merges a resource delta into the settlement's stores.
func (s *Settlement) AddResources(delta map[Resource]float64) {
	if s.Resources == nil {
		s.Resources = make(map[Resource]float64)
	}
	for res, amt := range delta {
		s.Resources[res] += amt
	}
}
