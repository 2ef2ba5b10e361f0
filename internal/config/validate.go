package config

import (
	"fmt"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// Validate checks cross-references and value ranges in a scenario.
func (c *Scenario) Validate() error {
	regionIDs := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		if r.ID == "" {
			return fmt.Errorf("regions[%d]: missing id", i)
		}
		if regionIDs[r.ID] {
			return fmt.Errorf("regions[%d]: duplicate id %q", i, r.ID)
		}
		regionIDs[r.ID] = true
		if _, ok := world.ParseRegionType(r.Type); !ok && r.Type != "" {
			return fmt.Errorf("region %q: unknown type %q", r.ID, r.Type)
		}
		if r.Size <= 0 {
			return fmt.Errorf("region %q: size must be positive", r.ID)
		}
	}

	factionIDs := make(map[string]bool, len(c.Factions))
	for i, f := range c.Factions {
		if f.ID == "" {
			return fmt.Errorf("factions[%d]: missing id", i)
		}
		if factionIDs[f.ID] {
			return fmt.Errorf("factions[%d]: duplicate id %q", i, f.ID)
		}
		factionIDs[f.ID] = true
		if _, ok := social.ParseFactionKind(f.Kind); !ok && f.Kind != "" {
			return fmt.Errorf("faction %q: unknown kind %q", f.ID, f.Kind)
		}
	}

	settIDs := make(map[string]bool, len(c.Settlements))
	for i, s := range c.Settlements {
		if s.ID == "" {
			return fmt.Errorf("settlements[%d]: missing id", i)
		}
		if settIDs[s.ID] {
			return fmt.Errorf("settlements[%d]: duplicate id %q", i, s.ID)
		}
		settIDs[s.ID] = true
		if len(c.Regions) > 0 && !regionIDs[s.Region] {
			return fmt.Errorf("settlement %q: unknown region %q", s.ID, s.Region)
		}
		if s.Faction != "" && !factionIDs[s.Faction] {
			return fmt.Errorf("settlement %q: unknown faction %q", s.ID, s.Faction)
		}
		if s.Warriors < 0 || s.Defenses < 0 || s.Population < 0 {
			return fmt.Errorf("settlement %q: negative military or population values", s.ID)
		}
	}

	if c.PlayerSettlement != "" && !settIDs[c.PlayerSettlement] {
		return fmt.Errorf("player_settlement %q: no such settlement", c.PlayerSettlement)
	}

	if c.Tuning.MusterFractionMin > c.Tuning.MusterFractionMax {
		return fmt.Errorf("tuning: muster_fraction_min exceeds muster_fraction_max")
	}

	return nil
}
