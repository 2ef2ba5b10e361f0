package conflict

import (
	"fmt"
	"math/rand"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// testWorld is an in-memory Registry, Ledger, and Chronicle for manager
// tests. Geometry: home—plains—enemy sit in a chain 10 units apart
// (adjacent pairs), far is out on its own.
type testWorld struct {
	m           *world.Map
	settlements map[string]*social.Settlement
	order       []string
	factions    []*social.Faction
	playerID    string
	events      []string
}

func newTestWorld() *testWorld {
	tw := &testWorld{
		m:           world.NewMap(),
		settlements: make(map[string]*social.Settlement),
	}

	tw.m.Set(&world.Region{ID: "home", Name: "Ravenshore", Type: world.RegionCoastal,
		Position: world.Position{X: 0}, Size: 10, Landmass: "mainland"})
	tw.m.Set(&world.Region{ID: "plains", Name: "Grenmark", Type: world.RegionPlains,
		Position: world.Position{X: 10}, Size: 10, Landmass: "mainland"})
	tw.m.Set(&world.Region{ID: "enemy", Name: "Wealdham Vale", Type: world.RegionPlains,
		Position: world.Position{X: 20}, Size: 10, Landmass: "mainland", OwnerFactionID: "wessex"})
	tw.m.Set(&world.Region{ID: "far", Name: "Jotun Heights", Type: world.RegionMountain,
		Position: world.Position{X: 60}, Size: 10, Landmass: "mainland"})

	tw.addSettlement(&social.Settlement{
		ID: "player_hold", Name: "Ravensfjord", RegionID: "home",
		Population: 400, Rank: 1,
		Military:   social.Military{Warriors: 200, Defenses: 1},
	})
	tw.addSettlement(&social.Settlement{
		ID: "enemy_keep", Name: "Wealdham Keep", RegionID: "enemy", FactionID: "wessex",
		Population: 500, Rank: 2,
		Military:   social.Military{Warriors: 50, Defenses: 2},
	})
	tw.playerID = "player_hold"

	tw.factions = []*social.Faction{
		{ID: "wessex", Name: "Kingdom of Wessex", Kind: social.FactionAnglo, MaxActiveArmies: 2},
	}
	return tw
}

func (tw *testWorld) addSettlement(s *social.Settlement) {
	if s.Resources == nil {
		s.Resources = make(map[social.Resource]float64)
	}
	tw.settlements[s.ID] = s
	tw.order = append(tw.order, s.ID)
}

// ── Registry ─────────────────────────────────────────────────────────

func (tw *testWorld) Region(id string) (*world.Region, bool) {
	r := tw.m.Get(id)
	return r, r != nil
}

func (tw *testWorld) AdjacentRegions(id string) []string {
	return tw.m.AdjacentRegions(id)
}

func (tw *testWorld) Settlement(id string) (*social.Settlement, bool) {
	s, ok := tw.settlements[id]
	return s, ok
}

func (tw *testWorld) PlayerSettlement() *social.Settlement {
	return tw.settlements[tw.playerID]
}

func (tw *testWorld) Faction(id string) (*social.Faction, bool) {
	for _, f := range tw.factions {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

func (tw *testWorld) Factions() []*social.Faction { return tw.factions }

func (tw *testWorld) FactionSettlements(factionID string) []*social.Settlement {
	var out []*social.Settlement
	for _, id := range tw.order {
		if tw.settlements[id].FactionID == factionID {
			out = append(out, tw.settlements[id])
		}
	}
	return out
}

func (tw *testWorld) TransferSettlement(settlementID, newFactionID string) bool {
	s, ok := tw.settlements[settlementID]
	if !ok {
		return false
	}
	s.FactionID = newFactionID
	s.IsCaptured = true
	if region := tw.m.Get(s.RegionID); region != nil {
		region.OwnerFactionID = newFactionID
	}
	return true
}

// ── Ledger ───────────────────────────────────────────────────────────

func (tw *testWorld) AddWarriors(settlementID string, delta int) bool {
	s, ok := tw.settlements[settlementID]
	if !ok {
		return false
	}
	if s.Military.Warriors+delta < 0 {
		return false
	}
	s.Military.Warriors += delta
	return true
}

func (tw *testWorld) AddResources(settlementID string, res map[social.Resource]float64) {
	if s, ok := tw.settlements[settlementID]; ok {
		s.AddResources(res)
	}
}

func (tw *testWorld) AddFame(settlementID string, amount float64, reason string) {
	if s, ok := tw.settlements[settlementID]; ok {
		s.Fame += amount
	}
}

// ── Chronicle ────────────────────────────────────────────────────────

func (tw *testWorld) Record(category, format string, args ...any) {
	tw.events = append(tw.events, category+": "+fmt.Sprintf(format, args...))
}

// newManagers builds the three conflict managers bound together over one
// test world, each with its own seeded stream.
func newManagers(tw *testWorld, seed int64) (*ExpeditionManager, *ArmyManager, *Resolver) {
	tuning := DefaultTuning()
	expeditions := NewExpeditionManager(tw, tw, tw, tuning, rand.New(rand.NewSource(seed)))
	armies := NewArmyManager(tw, tw, tuning, rand.New(rand.NewSource(seed+1)))
	resolver := NewResolver(tw, tw, tw, tuning, rand.New(rand.NewSource(seed+2)))

	expeditions.BindResolver(resolver)
	armies.Bind(resolver, expeditions)
	resolver.Bind(expeditions, armies)
	return expeditions, armies, resolver
}
