package conflict

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

// Orders directs a started expedition at a region or a settlement. At
// least one target must be set; an explicit path is optional.
type Orders struct {
	TargetRegionID     string
	TargetSettlementID string
	Path               []string
}

// ExpeditionManager owns every active expedition and advances their
// state machines each tick.
type ExpeditionManager struct {
	reg       Registry
	ledger    Ledger
	chronicle Chronicle
	tuning    Tuning
	rng       *rand.Rand

	resolver *Resolver

	expeditions []*Expedition
	index       map[uuid.UUID]*Expedition
}

// NewExpeditionManager wires an expedition manager to its collaborators.
func NewExpeditionManager(reg Registry, ledger Ledger, chronicle Chronicle, tuning Tuning, rng *rand.Rand) *ExpeditionManager {
	return &ExpeditionManager{
		reg:       reg,
		ledger:    ledger,
		chronicle: chronicle,
		tuning:    tuning,
		rng:       rng,
		index:     make(map[uuid.UUID]*Expedition),
	}
}

// BindResolver attaches the conflict resolver. Called once during setup;
// the manager cannot start sieges without it.
func (m *ExpeditionManager) BindResolver(r *Resolver) { m.resolver = r }

var warBandNames = []string{
	"Wolves of the North", "Raven Banner", "Storm Riders", "Iron Wake",
	"Sons of the Fjord", "Grey Shields", "Oath of Ash", "Tide Reavers",
}

// CreatePlayerExpedition musters a new player war-band from the player
// settlement's warrior pool. Returns nil on invalid input or when the
// pool cannot cover the draw.
func (m *ExpeditionManager) CreatePlayerExpedition(warriors int, name string) *Expedition {
	if warriors <= 0 {
		slog.Warn("expedition rejected: no warriors requested")
		return nil
	}
	home := m.reg.PlayerSettlement()
	if home == nil {
		slog.Warn("expedition rejected: no player settlement")
		return nil
	}
	if _, ok := m.reg.Region(home.RegionID); !ok {
		slog.Warn("expedition rejected: home region missing", "region", home.RegionID)
		return nil
	}
	if !m.ledger.AddWarriors(home.ID, -warriors) {
		slog.Warn("expedition rejected: not enough warriors",
			"requested", warriors, "settlement", home.ID)
		return nil
	}

	if name == "" {
		name = warBandNames[m.rng.Intn(len(warBandNames))]
	}
	e := &Expedition{
		ID:               uuid.New(),
		Name:             name,
		HomeSettlementID: home.ID,
		Owner:            OwnerPlayer,
		Warriors:         warriors,
		InitialWarriors:  warriors,
		OriginRegionID:   home.RegionID,
		CurrentRegionID:  home.RegionID,
		Loot:             make(map[social.Resource]float64),
		Status:           StatusMustering,
	}
	e.recomputeStrength()
	m.add(e)

	m.chronicle.Record("expedition", "%s musters %d warriors at %s", e.Name, warriors, home.Name)
	return e
}

// Restore re-registers an expedition loaded from a snapshot.
func (m *ExpeditionManager) Restore(e *Expedition) {
	e.recomputeStrength()
	m.add(e)
}

func (m *ExpeditionManager) add(e *Expedition) {
	m.expeditions = append(m.expeditions, e)
	m.index[e.ID] = e
}

// Start sets an expedition's target and flips it to marching. Fails when
// no target is given or the expedition is unknown or already disbanded.
func (m *ExpeditionManager) Start(id uuid.UUID, orders Orders) bool {
	e, ok := m.index[id]
	if !ok || e.Status == StatusDisbanded {
		return false
	}
	if orders.TargetRegionID == "" && orders.TargetSettlementID == "" {
		slog.Warn("expedition start rejected: no target", "expedition", e.Name)
		return false
	}

	target := orders.TargetRegionID
	if orders.TargetSettlementID != "" {
		sett, ok := m.reg.Settlement(orders.TargetSettlementID)
		if !ok {
			slog.Warn("expedition start rejected: unknown settlement",
				"settlement", orders.TargetSettlementID)
			return false
		}
		e.TargetSettlementID = sett.ID
		target = sett.RegionID
	}
	if _, ok := m.reg.Region(target); !ok {
		slog.Warn("expedition start rejected: unknown region", "region", target)
		return false
	}

	e.TargetRegionID = target
	e.Path = append([]string(nil), orders.Path...)
	e.MoveProgress = 0
	// Orders given mid-muster are queued; tickMuster flips to marching once
	// the war-band is raised.
	if e.Status != StatusMustering || e.MusterProgress >= 100 {
		e.Status = StatusMarching
	}

	m.chronicle.Record("expedition", "%s sets out for %s", e.Name, target)
	return true
}

// Recall orders an expedition home immediately, whatever it was doing.
// A disbanded expedition cannot be recalled.
func (m *ExpeditionManager) Recall(id uuid.UUID) bool {
	e, ok := m.index[id]
	if !ok || e.Status == StatusDisbanded {
		return false
	}
	e.Status = StatusReturning
	e.TargetRegionID = e.OriginRegionID
	e.TargetSettlementID = ""
	e.Path = nil
	e.MoveProgress = 0
	m.chronicle.Record("expedition", "%s turns for home", e.Name)
	return true
}

// Disband returns an expedition's survivors, loot, and fame to its owner.
// Calling it twice is a no-op the second time.
func (m *ExpeditionManager) Disband(id uuid.UUID) bool {
	e, ok := m.index[id]
	if !ok || e.Status == StatusDisbanded {
		return false
	}

	survivors := e.Warriors
	if e.Owner == OwnerPlayer {
		if survivors > 0 {
			m.ledger.AddWarriors(e.HomeSettlementID, survivors)
		}
		if len(e.Loot) > 0 {
			m.ledger.AddResources(e.HomeSettlementID, e.Loot)
		}
		if e.Fame > 0 {
			m.ledger.AddFame(e.HomeSettlementID, e.Fame, e.Name)
		}
	}

	// The resolver may still hold this expedition as a combatant; once the
	// survivors are credited home, the record must field nothing.
	e.Warriors = 0
	e.recomputeStrength()

	e.Status = StatusDisbanded
	e.InBattle = false
	e.sinceDisband = 0
	m.chronicle.Record("expedition", "%s disbands: %d of %d warriors return",
		e.Name, survivors, e.InitialWarriors)
	return true
}

// Expedition returns an expedition by id. Disbanded records remain
// readable through the grace window.
func (m *ExpeditionManager) Expedition(id uuid.UUID) (*Expedition, bool) {
	e, ok := m.index[id]
	return e, ok
}

// Expeditions returns all tracked expeditions, optionally filtered by owner.
func (m *ExpeditionManager) Expeditions(owner ...OwnerKind) []*Expedition {
	if len(owner) == 0 {
		return append([]*Expedition(nil), m.expeditions...)
	}
	var out []*Expedition
	for _, e := range m.expeditions {
		if e.Owner == owner[0] {
			out = append(out, e)
		}
	}
	return out
}

// ActiveInRegion returns non-disbanded, non-mustering expeditions for one
// owner currently inside the given region.
func (m *ExpeditionManager) ActiveInRegion(regionID string, owner OwnerKind) []*Expedition {
	var out []*Expedition
	for _, e := range m.expeditions {
		if e.Owner != owner || e.CurrentRegionID != regionID {
			continue
		}
		if e.Status == StatusDisbanded || e.Status == StatusMustering {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SetInBattle flags or clears the combat overlay on an expedition.
func (m *ExpeditionManager) SetInBattle(id uuid.UUID, in bool) {
	if e, ok := m.index[id]; ok && e.Status != StatusDisbanded {
		e.InBattle = in
	}
}

// ProcessTick advances every expedition by tickSize days.
func (m *ExpeditionManager) ProcessTick(tickSize float64) {
	for _, e := range m.expeditions {
		m.tickExpedition(e, tickSize)
	}
	m.prune(tickSize)
}

func (m *ExpeditionManager) tickExpedition(e *Expedition, tickSize float64) {
	if e.Status == StatusDisbanded {
		return
	}
	// Combat suspends the home activity; it resumes once the resolver
	// clears the overlay.
	if e.InBattle {
		return
	}

	switch e.Status {
	case StatusMustering:
		m.tickMuster(e, tickSize)
	case StatusMarching:
		m.tickMovement(e, tickSize, false)
	case StatusRaiding:
		m.tickRaiding(e, tickSize)
	case StatusSieging:
		// Progress and casualties are the resolver's job; the expedition
		// just waits under the walls. A vanished siege means the resolver
		// already recalled or concluded us.
	case StatusReturning:
		m.tickMovement(e, tickSize, true)
	}
}

func (m *ExpeditionManager) tickMuster(e *Expedition, tickSize float64) {
	e.MusterProgress += tickSize / m.tuning.MusterDays * 100
	if e.MusterProgress < 100 {
		return
	}
	e.MusterProgress = 100
	// Orders may already be in: march as soon as the muster completes.
	if e.TargetRegionID != "" {
		e.Status = StatusMarching
		e.MoveProgress = 0
	}
}

// legDestination is the next region the expedition is walking toward.
func (e *Expedition) legDestination(homeward bool) string {
	if homeward {
		return e.OriginRegionID
	}
	if len(e.Path) > 0 {
		return e.Path[0]
	}
	return e.TargetRegionID
}

// legDays computes the travel days for one leg: base days scaled by the
// destination terrain's speed modifier, tripled when the hop is not
// between adjacent regions. Rounded to whole days, minimum one.
func (m *ExpeditionManager) legDays(fromID, toID string) float64 {
	dest, ok := m.reg.Region(toID)
	if !ok {
		return m.tuning.BaseMovementDays
	}
	days := math.Round(m.tuning.BaseMovementDays / dest.Type.SpeedModifier())
	if days < 1 {
		days = 1
	}
	if fromID != toID && !m.adjacent(fromID, toID) {
		days *= m.tuning.NonAdjacentPenalty
	}
	return days
}

func (m *ExpeditionManager) adjacent(aID, bID string) bool {
	for _, id := range m.reg.AdjacentRegions(aID) {
		if id == bID {
			return true
		}
	}
	return false
}

func (m *ExpeditionManager) tickMovement(e *Expedition, tickSize float64, homeward bool) {
	dest := e.legDestination(homeward)
	if dest == "" || dest == e.CurrentRegionID {
		m.arrive(e, homeward)
		return
	}
	if _, ok := m.reg.Region(dest); !ok {
		// Destination vanished. Head home rather than march into nothing.
		slog.Warn("expedition leg destination missing", "expedition", e.Name, "region", dest)
		if !homeward {
			m.Recall(e.ID)
		} else {
			m.Disband(e.ID)
		}
		return
	}

	days := m.legDays(e.CurrentRegionID, dest)
	e.MoveProgress += tickSize / days * 100
	if e.MoveProgress < 100 {
		return
	}

	e.CurrentRegionID = dest
	e.MoveProgress = 0
	if !homeward && len(e.Path) > 0 && e.Path[0] == dest {
		e.Path = e.Path[1:]
	}

	if !homeward && len(e.Path) > 0 {
		return // More waypoints: keep marching.
	}
	if e.CurrentRegionID == m.finalDestination(e, homeward) {
		m.arrive(e, homeward)
	}
}

func (m *ExpeditionManager) finalDestination(e *Expedition, homeward bool) string {
	if homeward {
		return e.OriginRegionID
	}
	return e.TargetRegionID
}

func (m *ExpeditionManager) arrive(e *Expedition, homeward bool) {
	if homeward {
		m.Disband(e.ID)
		return
	}

	if e.TargetSettlementID != "" {
		if sett, ok := m.reg.Settlement(e.TargetSettlementID); ok && sett.RegionID == e.CurrentRegionID {
			e.Status = StatusSieging
			e.SiegeProgress = 0
			if m.resolver != nil {
				m.resolver.InitiateSiege(sett.ID, e)
			}
			m.chronicle.Record("siege", "%s lays siege to %s", e.Name, sett.Name)
			return
		}
		// Settlement gone or moved out from under us: fall through to raiding.
		e.TargetSettlementID = ""
	}

	e.Status = StatusRaiding
	if region, ok := m.reg.Region(e.CurrentRegionID); ok {
		m.chronicle.Record("raid", "%s begins raiding %s", e.Name, region.Name)
	}
}

func (m *ExpeditionManager) tickRaiding(e *Expedition, tickSize float64) {
	region, ok := m.reg.Region(e.CurrentRegionID)
	if !ok {
		m.Recall(e.ID)
		return
	}

	// Plunder scales with strength, tick size, and the region's yields.
	for _, res := range social.RaidableResources {
		amount := e.Strength * m.tuning.RaidLootRate * tickSize *
			region.RaidModifier(string(res)) * (0.5 + m.rng.Float64())
		if amount > 0 {
			e.AddLoot(map[social.Resource]float64{res: amount})
		}
	}

	// Locals fight back now and then.
	if m.rng.Float64() < m.tuning.RetaliationChance*tickSize {
		losses := int(math.Round(float64(e.Warriors) * 0.05 * (1 + m.rng.Float64()*2)))
		if losses < 1 {
			losses = 1
		}
		applied := e.TakeCasualties(losses)
		if applied > 0 {
			m.chronicle.Record("raid", "%s loses %d warriors to local retaliation in %s",
				e.Name, applied, region.Name)
		}
	}

	// Mauled war-bands head home.
	if e.Casualties > e.Warriors/2 && e.Warriors > 0 {
		m.chronicle.Record("raid", "%s breaks off the raid after heavy losses", e.Name)
		m.Recall(e.ID)
		return
	}
	if e.Warriors == 0 {
		m.chronicle.Record("raid", "%s is wiped out in %s", e.Name, region.Name)
		m.Disband(e.ID)
		return
	}

	// A sated war-band starts thinking about home.
	if social.TotalLoot(e.Loot) > m.tuning.LootSatiation*float64(e.Warriors) {
		if m.rng.Float64() < m.tuning.ReturnChance*tickSize {
			m.chronicle.Record("raid", "%s heads home with full holds", e.Name)
			m.Recall(e.ID)
		}
	}
}

// prune drops disbanded expeditions once the grace window has passed.
func (m *ExpeditionManager) prune(tickSize float64) {
	kept := m.expeditions[:0]
	for _, e := range m.expeditions {
		if e.Status == StatusDisbanded {
			e.sinceDisband += tickSize
			if e.sinceDisband >= m.tuning.DisbandGraceDays {
				delete(m.index, e.ID)
				continue
			}
		}
		kept = append(kept, e)
	}
	m.expeditions = kept
}

// Summary returns a one-line description for logs and the API.
func (e *Expedition) Summary() string {
	return fmt.Sprintf("%s [%s] %d warriors in %s",
		e.Name, e.EffectiveStatus(), e.Warriors, e.CurrentRegionID)
}
