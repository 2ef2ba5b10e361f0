// Simulation ties the conflict managers to shared world state and runs
// them each tick. It is the single owner of all mutable campaign state,
// so multiple sessions can run side by side and tests stay deterministic.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/conflict"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// Event is a notable occurrence in the campaign.
type Event struct {
	Day         float64 `json:"day"`
	Description string  `json:"description"`
	Category    string  `json:"category"` // "expedition", "army", "battle", "siege", "raid"
}

// Simulation holds the complete campaign state and wires systems together.
type Simulation struct {
	WorldMap    *world.Map
	Settlements []*social.Settlement
	FactionList []*social.Faction

	// Settlement and faction lookups.
	SettlementIndex map[string]*social.Settlement
	FactionIndex    map[string]*social.Faction

	// The player's seat of power.
	PlayerSettlementID string

	Expeditions *conflict.ExpeditionManager
	Armies      *conflict.ArmyManager
	Resolver    *conflict.Resolver

	// Elapsed campaign days.
	Day float64

	Events []Event // Recent events (trimmed ring)

	lastReportDay int
}

// NewSimulation creates a Simulation from generated components and wires
// the three conflict managers together.
func NewSimulation(m *world.Map, setts []*social.Settlement, factions []*social.Faction, playerSettlementID string, tuning conflict.Tuning, seed int64) *Simulation {
	settIndex := make(map[string]*social.Settlement, len(setts))
	for _, s := range setts {
		settIndex[s.ID] = s
	}
	factionIndex := make(map[string]*social.Faction, len(factions))
	for _, f := range factions {
		factionIndex[f.ID] = f
	}

	sim := &Simulation{
		WorldMap:           m,
		Settlements:        setts,
		FactionList:        factions,
		SettlementIndex:    settIndex,
		FactionIndex:       factionIndex,
		PlayerSettlementID: playerSettlementID,
	}

	sim.Expeditions = conflict.NewExpeditionManager(sim, sim, sim, tuning, rand.New(rand.NewSource(seed)))
	sim.Armies = conflict.NewArmyManager(sim, sim, tuning, rand.New(rand.NewSource(seed+1)))
	sim.Resolver = conflict.NewResolver(sim, sim, sim, tuning, rand.New(rand.NewSource(seed+2)))

	sim.Expeditions.BindResolver(sim.Resolver)
	sim.Armies.Bind(sim.Resolver, sim.Expeditions)
	sim.Resolver.Bind(sim.Expeditions, sim.Armies)

	return sim
}

// Advance moves the whole simulation forward by tickSize days.
// Expeditions move first so the army manager's scans see up-to-date
// positions, then battles and sieges resolve.
func (s *Simulation) Advance(tickSize float64) {
	s.Day += tickSize

	s.Expeditions.ProcessTick(tickSize)
	s.Armies.ProcessTick(tickSize)
	s.sweepHostileEncounters()
	s.Resolver.ProcessTick(tickSize)

	if int(s.Day) > s.lastReportDay {
		s.lastReportDay = int(s.Day)
		s.dailyReport()
	}
}

// sweepHostileEncounters opens battles between hostile expeditions that
// ended the tick in the same region. Army-versus-expedition battles are
// the army manager's job; this catches player war-bands running into AI
// ones.
func (s *Simulation) sweepHostileEncounters() {
	byRegion := make(map[string][]*conflict.Expedition)
	for _, e := range s.Expeditions.Expeditions() {
		if e.Status == conflict.StatusDisbanded || e.Status == conflict.StatusMustering || e.InBattle {
			continue
		}
		byRegion[e.CurrentRegionID] = append(byRegion[e.CurrentRegionID], e)
	}

	regions := make([]string, 0, len(byRegion))
	for id := range byRegion {
		regions = append(regions, id)
	}
	sort.Strings(regions)

	for _, regionID := range regions {
		if s.Resolver.HasActiveBattleIn(regionID) {
			continue
		}
		var player, ai []conflict.Combatant
		for _, e := range byRegion[regionID] {
			if e.Owner == conflict.OwnerPlayer {
				player = append(player, e)
			} else {
				ai = append(ai, e)
			}
		}
		if len(player) > 0 && len(ai) > 0 {
			s.Resolver.InitiateBattle(regionID, player, ai)
		}
	}
}

func (s *Simulation) dailyReport() {
	expeditions := s.Expeditions.Expeditions()
	active := 0
	lootTotal := 0.0
	for _, e := range expeditions {
		if e.Status != conflict.StatusDisbanded {
			active++
			lootTotal += social.TotalLoot(e.Loot)
		}
	}

	slog.Info("daily report",
		"day", s.lastReportDay,
		"date", SimDate(s.Day),
		"expeditions", active,
		"armies", len(s.Armies.FactionArmies()),
		"battles", len(s.Resolver.ActiveBattles(false)),
		"sieges", len(s.Resolver.ActiveSieges(false)),
		"loot_afield", humanize.Comma(int64(lootTotal)),
	)
}

// ── conflict.Registry ────────────────────────────────────────────────

// Region implements conflict.Registry.
func (s *Simulation) Region(id string) (*world.Region, bool) {
	r := s.WorldMap.Get(id)
	return r, r != nil
}

// AdjacentRegions implements conflict.Registry.
func (s *Simulation) AdjacentRegions(id string) []string {
	return s.WorldMap.AdjacentRegions(id)
}

// Settlement implements conflict.Registry.
func (s *Simulation) Settlement(id string) (*social.Settlement, bool) {
	sett, ok := s.SettlementIndex[id]
	return sett, ok
}

// PlayerSettlement implements conflict.Registry.
func (s *Simulation) PlayerSettlement() *social.Settlement {
	return s.SettlementIndex[s.PlayerSettlementID]
}

// Faction implements conflict.Registry.
func (s *Simulation) Faction(id string) (*social.Faction, bool) {
	f, ok := s.FactionIndex[id]
	return f, ok
}

// Factions implements conflict.Registry.
func (s *Simulation) Factions() []*social.Faction { return s.FactionList }

// FactionSettlements implements conflict.Registry.
func (s *Simulation) FactionSettlements(factionID string) []*social.Settlement {
	var out []*social.Settlement
	for _, sett := range s.Settlements {
		if sett.FactionID == factionID {
			out = append(out, sett)
		}
	}
	return out
}

// TransferSettlement implements conflict.Registry: ownership flips and
// the owning region follows the settlement.
func (s *Simulation) TransferSettlement(settlementID, newFactionID string) bool {
	sett, ok := s.SettlementIndex[settlementID]
	if !ok {
		return false
	}
	sett.FactionID = newFactionID
	sett.IsCaptured = true
	if region := s.WorldMap.Get(sett.RegionID); region != nil {
		region.OwnerFactionID = newFactionID
	}
	return true
}

// ── conflict.Ledger ──────────────────────────────────────────────────

// AddWarriors implements conflict.Ledger. A debit that would take the
// garrison negative fails and leaves the count untouched.
func (s *Simulation) AddWarriors(settlementID string, delta int) bool {
	sett, ok := s.SettlementIndex[settlementID]
	if !ok {
		slog.Warn("warrior ledger: unknown settlement", "settlement", settlementID)
		return false
	}
	if sett.Military.Warriors+delta < 0 {
		return false
	}
	sett.Military.Warriors += delta
	return true
}

// AddResources implements conflict.Ledger.
func (s *Simulation) AddResources(settlementID string, res map[social.Resource]float64) {
	if sett, ok := s.SettlementIndex[settlementID]; ok {
		sett.AddResources(res)
	}
}

// AddFame implements conflict.Ledger.
func (s *Simulation) AddFame(settlementID string, amount float64, reason string) {
	sett, ok := s.SettlementIndex[settlementID]
	if !ok {
		return
	}
	sett.Fame += amount
	slog.Debug("fame earned", "settlement", sett.Name, "amount", amount, "reason", reason)
}

// ── conflict.Chronicle ───────────────────────────────────────────────

// Record implements conflict.Chronicle.
func (s *Simulation) Record(category, format string, args ...any) {
	s.Events = append(s.Events, Event{
		Day:         s.Day,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	// Trim old events to prevent unbounded growth (keep last 1000).
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}
