package conflict

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

// ArmyManager gives AI factions reactive military behavior: it scans for
// player forces in or near faction territory and mobilizes armies in
// response, then runs each army's lifecycle.
type ArmyManager struct {
	reg       Registry
	chronicle Chronicle
	tuning    Tuning
	rng       *rand.Rand

	resolver    *Resolver
	expeditions *ExpeditionManager

	armies []*FactionArmy
	index  map[uuid.UUID]*FactionArmy

	sinceCheck float64

	// ForceResponse makes every eligible faction respond on the next
	// scan, bypassing the probability roll. Deterministic-test hook.
	ForceResponse bool
}

// NewArmyManager wires an army manager to its collaborators.
func NewArmyManager(reg Registry, chronicle Chronicle, tuning Tuning, rng *rand.Rand) *ArmyManager {
	return &ArmyManager{
		reg:       reg,
		chronicle: chronicle,
		tuning:    tuning,
		rng:       rng,
		index:     make(map[uuid.UUID]*FactionArmy),
	}
}

// Bind attaches the resolver and expedition manager. Called once at setup.
func (m *ArmyManager) Bind(resolver *Resolver, expeditions *ExpeditionManager) {
	m.resolver = resolver
	m.expeditions = expeditions
}

// FactionArmy returns an army by id.
func (m *ArmyManager) FactionArmy(id uuid.UUID) (*FactionArmy, bool) {
	a, ok := m.index[id]
	return a, ok
}

// FactionArmies returns all tracked armies, optionally for one faction.
func (m *ArmyManager) FactionArmies(factionID ...string) []*FactionArmy {
	if len(factionID) == 0 {
		return append([]*FactionArmy(nil), m.armies...)
	}
	var out []*FactionArmy
	for _, a := range m.armies {
		if a.FactionID == factionID[0] {
			out = append(out, a)
		}
	}
	return out
}

// CreateFactionArmy raises an army directly, bypassing the threat scan.
// Warriors are drawn from the faction's settlements like a normal muster.
// Returns nil when the faction is unknown or can field no warriors.
func (m *ArmyManager) CreateFactionArmy(factionID, targetRegionID string) *FactionArmy {
	faction, ok := m.reg.Faction(factionID)
	if !ok {
		slog.Warn("army rejected: unknown faction", "faction", factionID)
		return nil
	}
	return m.muster(faction, targetRegionID)
}

// DisbandArmy flags an army for disbanding regardless of its state.
func (m *ArmyManager) DisbandArmy(id uuid.UUID) bool {
	a, ok := m.index[id]
	if !ok || a.Status == ArmyDisbanding {
		return false
	}
	m.beginDisband(a)
	return true
}

// Restore re-registers an army loaded from a snapshot.
func (m *ArmyManager) Restore(a *FactionArmy) {
	m.armies = append(m.armies, a)
	m.index[a.ID] = a
}

// ProcessTick runs the periodic threat scan and advances every army.
func (m *ArmyManager) ProcessTick(tickSize float64) {
	m.sinceCheck += tickSize
	if m.sinceCheck >= m.tuning.CheckIntervalDays {
		m.sinceCheck = 0
		m.scanThreats()
	}

	for _, a := range m.armies {
		m.tickArmy(a, tickSize)
	}
	m.prune(tickSize)
}

// ── Threat detection and response ────────────────────────────────────

func (m *ArmyManager) scanThreats() {
	if m.expeditions == nil {
		return
	}

	for _, e := range m.expeditions.Expeditions(OwnerPlayer) {
		if e.Status == StatusMustering || e.Status == StatusDisbanded {
			continue
		}
		region, ok := m.reg.Region(e.CurrentRegionID)
		if !ok {
			continue
		}
		// Factions always know their own ground, fog-of-war or not.
		region.Discovered = true

		m.considerResponses(e.CurrentRegionID, 0)
	}

	// Besieged settlements get a near-certain response from their owner.
	if m.resolver != nil {
		for _, s := range m.resolver.ActiveSieges(false) {
			sett, ok := m.reg.Settlement(s.SettlementID)
			if !ok || sett.FactionID == "" {
				continue
			}
			if faction, ok := m.reg.Faction(sett.FactionID); ok {
				m.considerFaction(faction, sett.RegionID, m.tuning.ResponseSiege)
			}
		}
	}
}

// considerResponses polls every faction against one threatened region.
// An override chance > 0 replaces the territory-based base chance.
func (m *ArmyManager) considerResponses(regionID string, override float64) {
	factions := m.reg.Factions()
	sort.Slice(factions, func(i, j int) bool { return factions[i].ID < factions[j].ID })
	for _, faction := range factions {
		m.considerFaction(faction, regionID, override)
	}
}

func (m *ArmyManager) considerFaction(faction *social.Faction, regionID string, override float64) {
	if m.activeArmyCount(faction.ID) >= m.armyCap(faction) {
		return
	}
	if m.hasArmyTargeting(faction.ID, regionID) {
		return
	}

	chance, ok := m.responseChance(faction, regionID, override)
	if !ok {
		return
	}
	if m.ForceResponse || m.rng.Float64() < chance {
		m.muster(faction, regionID)
	}
}

// responseChance computes a faction's probability of answering a threat
// in the given region. An override > 0 marks siege relief: the base
// chance is taken as-is and the manpower scale is skipped, since a
// besieged settlement is defended with whatever can be raised.
func (m *ArmyManager) responseChance(faction *social.Faction, regionID string, override float64) (float64, bool) {
	chance := override
	if chance == 0 {
		region, ok := m.reg.Region(regionID)
		if !ok {
			return 0, false
		}
		switch {
		case region.OwnerFactionID == faction.ID:
			chance = m.tuning.ResponseInTerritory
		case m.bordersTerritory(faction.ID, regionID):
			chance = m.tuning.ResponseAdjacent
		default:
			return 0, false
		}
	}

	available := m.availableWarriors(faction.ID)
	if available <= 0 {
		return 0, false
	}
	chance *= faction.Kind.ResponseModifier()
	if override == 0 {
		chance *= clamp(float64(available)/float64(m.tuning.WarriorsLowThreshold), 0.25, 1.25)
	}
	return clamp(chance, 0, m.tuning.ResponseCap), true
}

func (m *ArmyManager) armyCap(faction *social.Faction) int {
	if faction.MaxActiveArmies > 0 {
		return faction.MaxActiveArmies
	}
	return m.tuning.MaxArmiesPerFaction
}

func (m *ArmyManager) activeArmyCount(factionID string) int {
	count := 0
	for _, a := range m.armies {
		if a.FactionID == factionID && a.Status != ArmyDisbanding {
			count++
		}
	}
	return count
}

func (m *ArmyManager) hasArmyTargeting(factionID, regionID string) bool {
	for _, a := range m.armies {
		if a.FactionID == factionID && a.TargetRegionID == regionID && a.Status != ArmyDisbanding {
			return true
		}
	}
	return false
}

func (m *ArmyManager) bordersTerritory(factionID, regionID string) bool {
	for _, adj := range m.reg.AdjacentRegions(regionID) {
		if region, ok := m.reg.Region(adj); ok && region.OwnerFactionID == factionID {
			return true
		}
	}
	return false
}

func (m *ArmyManager) availableWarriors(factionID string) int {
	total := 0
	for _, sett := range m.reg.FactionSettlements(factionID) {
		total += sett.Military.Warriors
	}
	return total
}

// ── Mustering ────────────────────────────────────────────────────────

// muster raises an army for a faction against a target region, drawing
// 40–70% of each of the faction's settlements' warriors.
func (m *ArmyManager) muster(faction *social.Faction, targetRegionID string) *FactionArmy {
	settlements := m.reg.FactionSettlements(faction.ID)
	if len(settlements) == 0 {
		return nil
	}
	sort.Slice(settlements, func(i, j int) bool { return settlements[i].ID < settlements[j].ID })

	contributions := make(map[string]int)
	total := 0
	span := m.tuning.MusterFractionMax - m.tuning.MusterFractionMin
	for _, sett := range settlements {
		fraction := m.tuning.MusterFractionMin + m.rng.Float64()*span
		draw := int(float64(sett.Military.Warriors) * fraction)
		if draw <= 0 {
			continue
		}
		// Debit at the single point of truth; never below zero.
		if draw > sett.Military.Warriors {
			draw = sett.Military.Warriors
		}
		sett.Military.Warriors -= draw
		contributions[sett.ID] = draw
		total += draw
	}
	if total <= 0 {
		return nil
	}

	home := m.chooseHomeRegion(faction.ID, targetRegionID, settlements)

	a := &FactionArmy{
		ID:              uuid.New(),
		Name:            fmt.Sprintf("Host of %s", faction.Name),
		FactionID:       faction.ID,
		Warriors:        total,
		InitialWarriors: total,
		OriginRegionID:  home,
		CurrentRegionID: home,
		TargetRegionID:  targetRegionID,
		Contributions:   contributions,
	}

	switch {
	case home == targetRegionID:
		a.DaysUntilArrival = 1
		a.Status = ArmyDefending
	case m.regionsAdjacent(home, targetRegionID):
		a.DaysUntilArrival = 2
		a.Status = ArmyMarching
	default:
		a.DaysUntilArrival = 3
		a.Status = ArmyMarching
	}

	m.armies = append(m.armies, a)
	m.index[a.ID] = a

	m.chronicle.Record("army", "%s musters %d warriors against %s",
		a.Name, total, targetRegionID)
	return a
}

// chooseHomeRegion prefers the threatened region itself, then adjacent
// owned territory, then any settlement's region.
func (m *ArmyManager) chooseHomeRegion(factionID, targetRegionID string, settlements []*social.Settlement) string {
	if region, ok := m.reg.Region(targetRegionID); ok && region.OwnerFactionID == factionID {
		return targetRegionID
	}
	for _, adj := range m.reg.AdjacentRegions(targetRegionID) {
		if region, ok := m.reg.Region(adj); ok && region.OwnerFactionID == factionID {
			return adj
		}
	}
	return settlements[0].RegionID
}

func (m *ArmyManager) regionsAdjacent(aID, bID string) bool {
	for _, id := range m.reg.AdjacentRegions(aID) {
		if id == bID {
			return true
		}
	}
	return false
}

// ── Army lifecycle ───────────────────────────────────────────────────

func (m *ArmyManager) tickArmy(a *FactionArmy, tickSize float64) {
	if a.Status == ArmyDisbanding {
		return
	}

	a.DaysActive += tickSize
	if a.DaysActive > m.tuning.ArmyMaxDaysActive {
		m.chronicle.Record("army", "%s stands down after a long campaign", a.Name)
		m.beginDisband(a)
		return
	}

	switch a.Status {
	case ArmyMarching:
		a.DaysUntilArrival -= tickSize
		if a.DaysUntilArrival <= 0 {
			a.DaysUntilArrival = 0
			a.CurrentRegionID = a.TargetRegionID
			a.Status = ArmyDefending
			m.checkBattleTrigger(a)
		}
	case ArmyDefending:
		m.checkBattleTrigger(a)
	case ArmyBattling:
		m.pollBattle(a)
	}
}

// checkBattleTrigger opens a battle against co-located player forces.
// A besieging expedition is attacked (to break the siege); otherwise the
// army stands on the defensive.
func (m *ArmyManager) checkBattleTrigger(a *FactionArmy) {
	if m.resolver == nil || m.expeditions == nil {
		return
	}
	hostiles := m.expeditions.ActiveInRegion(a.CurrentRegionID, OwnerPlayer)
	if len(hostiles) == 0 {
		return
	}
	if m.resolver.HasActiveBattleIn(a.CurrentRegionID) {
		return
	}

	breakingSiege := false
	combatants := make([]Combatant, 0, len(hostiles))
	for _, e := range hostiles {
		combatants = append(combatants, e)
		if e.Status == StatusSieging {
			breakingSiege = true
		}
	}

	var battle *Battle
	if breakingSiege {
		battle = m.resolver.InitiateBattle(a.CurrentRegionID, []Combatant{a}, combatants)
		a.wasAttacker = true
	} else {
		battle = m.resolver.InitiateBattle(a.CurrentRegionID, combatants, []Combatant{a})
		a.wasAttacker = false
	}
	if battle == nil {
		return
	}
	a.Status = ArmyBattling
	a.BattleID = battle.ID
}

// pollBattle watches for the army's battle to conclude: winners return
// to the defensive, losers stand down.
func (m *ArmyManager) pollBattle(a *FactionArmy) {
	battle, ok := m.resolver.Battle(a.BattleID)
	if !ok {
		// Battle record gone; fall back to defending.
		a.Status = ArmyDefending
		a.BattleID = uuid.Nil
		return
	}
	if !battle.Concluded() {
		return
	}

	won := battle.Outcome.AttackerWon() == a.wasAttacker && battle.Outcome != OutcomeDraw
	a.BattleID = uuid.Nil
	if won && a.Warriors > 0 {
		a.Status = ArmyDefending
		return
	}
	m.beginDisband(a)
}

func (m *ArmyManager) beginDisband(a *FactionArmy) {
	a.Status = ArmyDisbanding
	a.sinceDisbanding = 0
}

// prune returns warriors and removes armies whose disband grace expired.
func (m *ArmyManager) prune(tickSize float64) {
	kept := m.armies[:0]
	for _, a := range m.armies {
		if a.Status == ArmyDisbanding {
			a.sinceDisbanding += tickSize
			if a.sinceDisbanding >= m.tuning.ArmyGraceDays {
				m.returnWarriors(a)
				delete(m.index, a.ID)
				continue
			}
		}
		kept = append(kept, a)
	}
	m.armies = kept
}

// returnWarriors sends an army's survivors back to its contributing
// settlements in proportion to what each gave. Remainders go to the
// largest contributor so no warrior is lost to rounding.
func (m *ArmyManager) returnWarriors(a *FactionArmy) {
	if a.Warriors <= 0 {
		return
	}

	type share struct {
		sett    *social.Settlement
		contrib int
	}
	var shares []share
	totalContrib := 0
	ids := make([]string, 0, len(a.Contributions))
	for id := range a.Contributions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if sett, ok := m.reg.Settlement(id); ok {
			shares = append(shares, share{sett, a.Contributions[id]})
			totalContrib += a.Contributions[id]
		}
	}
	if len(shares) == 0 {
		// No contributing settlement survives: fall back to any of the
		// faction's settlements.
		for _, sett := range m.reg.FactionSettlements(a.FactionID) {
			shares = append(shares, share{sett, 1})
			totalContrib++
		}
		if len(shares) == 0 {
			slog.Warn("army warriors lost: faction has no settlements",
				"army", a.Name, "warriors", a.Warriors)
			return
		}
	}

	remaining := a.Warriors
	largest := 0
	for i, sh := range shares {
		if sh.contrib > shares[largest].contrib {
			largest = i
		}
		portion := a.Warriors * sh.contrib / totalContrib
		sh.sett.Military.Warriors += portion
		remaining -= portion
	}
	if remaining > 0 {
		shares[largest].sett.Military.Warriors += remaining
	}
	a.Warriors = 0

	m.chronicle.Record("army", "%s disbands, warriors return to their halls", a.Name)
}
