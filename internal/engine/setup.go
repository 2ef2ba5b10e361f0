// Campaign bootstrap: turns a scenario config into a live Simulation,
// generating the map and seeding factions when the scenario leaves them
// out.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/config"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// BuildSimulation assembles a Simulation from a scenario.
func BuildSimulation(cfg *config.Scenario) (*Simulation, error) {
	m := buildMap(cfg)
	factions := buildFactions(cfg)
	setts, playerID, err := buildSettlements(cfg, m, factions)
	if err != nil {
		return nil, err
	}

	// Regions hosting a faction settlement belong to that faction.
	for _, sett := range setts {
		if sett.FactionID == "" {
			continue
		}
		if region := m.Get(sett.RegionID); region != nil && region.OwnerFactionID == "" {
			region.OwnerFactionID = sett.FactionID
		}
	}

	sim := NewSimulation(m, setts, factions, playerID, cfg.Tuning, cfg.Seed)
	slog.Info("campaign ready",
		"regions", m.RegionCount(),
		"settlements", len(setts),
		"factions", len(factions),
		"player_settlement", playerID,
	)
	return sim, nil
}

func buildMap(cfg *config.Scenario) *world.Map {
	if len(cfg.Regions) == 0 {
		gen := world.DefaultGenConfig()
		gen.Seed = cfg.Seed
		gen.Regions = cfg.WorldGen.Regions
		gen.Spread = cfg.WorldGen.Spread
		return world.Generate(gen)
	}

	m := world.NewMap()
	for _, def := range cfg.Regions {
		t, _ := world.ParseRegionType(def.Type)
		landmass := def.Landmass
		if landmass == "" {
			landmass = "mainland"
		}
		m.Set(&world.Region{
			ID:                def.ID,
			Name:              def.Name,
			Type:              t,
			Position:          world.Position{X: def.X, Y: def.Y},
			Size:              def.Size,
			Landmass:          landmass,
			OwnerFactionID:    def.Owner,
			ResourceModifiers: def.Raids,
		})
	}
	return m
}

func buildFactions(cfg *config.Scenario) []*social.Faction {
	if len(cfg.Factions) == 0 {
		return seedFactions()
	}
	var out []*social.Faction
	for _, def := range cfg.Factions {
		kind, _ := social.ParseFactionKind(def.Kind)
		out = append(out, &social.Faction{
			ID:              def.ID,
			Name:            def.Name,
			Kind:            kind,
			MaxActiveArmies: def.MaxArmies,
		})
	}
	return out
}

// seedFactions creates the default rival powers for a generated world.
func seedFactions() []*social.Faction {
	return []*social.Faction{
		{ID: "jarldom_skald", Name: "Jarldom of Skaldheim", Kind: social.FactionNorse, MaxActiveArmies: 2},
		{ID: "kingdom_wessex", Name: "Kingdom of Wessex", Kind: social.FactionAnglo, MaxActiveArmies: 2},
		{ID: "frankish_march", Name: "The Frankish March", Kind: social.FactionFrankish, MaxActiveArmies: 3},
	}
}

func buildSettlements(cfg *config.Scenario, m *world.Map, factions []*social.Faction) ([]*social.Settlement, string, error) {
	if len(cfg.Settlements) > 0 {
		var out []*social.Settlement
		playerID := cfg.PlayerSettlement
		for _, def := range cfg.Settlements {
			s := &social.Settlement{
				ID:         def.ID,
				Name:       def.Name,
				RegionID:   def.Region,
				FactionID:  def.Faction,
				Population: def.Population,
				Rank:       def.Rank,
				Military:   social.Military{Warriors: def.Warriors, Defenses: def.Defenses},
				Resources:  make(map[social.Resource]float64),
			}
			out = append(out, s)
			if playerID == "" && def.Faction == "" {
				playerID = def.ID
			}
		}
		if playerID == "" {
			return nil, "", fmt.Errorf("scenario defines no player settlement")
		}
		return out, playerID, nil
	}

	// Synthesized start: the player takes a coastal hold, each faction a
	// seat of its own, spread across distinct regions.
	regionIDs := make([]string, 0, m.RegionCount())
	for id := range m.Regions {
		regionIDs = append(regionIDs, id)
	}
	sort.Strings(regionIDs)
	if len(regionIDs) < len(factions)+1 {
		return nil, "", fmt.Errorf("generated map too small: %d regions for %d factions", len(regionIDs), len(factions))
	}

	rng := rand.New(rand.NewSource(cfg.Seed + 400))
	var out []*social.Settlement

	player := &social.Settlement{
		ID:         "player_hold",
		Name:       "Ravensfjord",
		RegionID:   pickRegion(regionIDs, m, world.RegionCoastal, regionIDs[0]),
		Population: 300 + rng.Intn(200),
		Rank:       1,
		Military:   social.Military{Warriors: 120 + rng.Intn(80), Defenses: 1},
		Resources:  make(map[social.Resource]float64),
	}
	out = append(out, player)

	used := map[string]bool{player.RegionID: true}
	for i, f := range factions {
		regionID := regionIDs[0]
		for _, id := range regionIDs {
			if !used[id] {
				regionID = id
				break
			}
		}
		used[regionID] = true
		out = append(out, &social.Settlement{
			ID:         fmt.Sprintf("%s_seat", f.ID),
			Name:       fmt.Sprintf("Seat of %s", f.Name),
			RegionID:   regionID,
			FactionID:  f.ID,
			Population: 400 + rng.Intn(400),
			Rank:       2 + i%2,
			Military:   social.Military{Warriors: 150 + rng.Intn(150), Defenses: 2},
			Resources:  make(map[social.Resource]float64),
		})
	}

	return out, player.ID, nil
}

// pickRegion returns the first region of the wanted type, or the fallback.
func pickRegion(ids []string, m *world.Map, want world.RegionType, fallback string) string {
	for _, id := range ids {
		if r := m.Get(id); r != nil && r.Type == want {
			return id
		}
	}
	return fallback
}
