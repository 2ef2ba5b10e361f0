package conflict

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

// Resolver owns every active battle and siege and advances their phase
// state machines each tick. Conclusions are pushed back into the owning
// managers: losers are recalled, captured settlements change hands.
type Resolver struct {
	reg       Registry
	ledger    Ledger
	chronicle Chronicle
	tuning    Tuning
	rng       *rand.Rand

	expeditions *ExpeditionManager
	armies      *ArmyManager

	battles     []*Battle
	battleIndex map[uuid.UUID]*Battle
	sieges      []*Siege
	siegeIndex  map[uuid.UUID]*Siege

	day float64
}

// NewResolver wires a conflict resolver to its collaborators.
func NewResolver(reg Registry, ledger Ledger, chronicle Chronicle, tuning Tuning, rng *rand.Rand) *Resolver {
	return &Resolver{
		reg:         reg,
		ledger:      ledger,
		chronicle:   chronicle,
		tuning:      tuning,
		rng:         rng,
		battleIndex: make(map[uuid.UUID]*Battle),
		siegeIndex:  make(map[uuid.UUID]*Siege),
	}
}

// Bind attaches the expedition and army managers. Called once during setup.
func (r *Resolver) Bind(expeditions *ExpeditionManager, armies *ArmyManager) {
	r.expeditions = expeditions
	r.armies = armies
}

// InitiateBattle opens a battle between two non-empty sides in a region.
// Returns nil when either side is empty or the region already hosts an
// unconcluded battle.
func (r *Resolver) InitiateBattle(regionID string, attackers, defenders []Combatant) *Battle {
	if len(attackers) == 0 || len(defenders) == 0 {
		slog.Warn("battle rejected: empty side", "region", regionID)
		return nil
	}
	if r.HasActiveBattleIn(regionID) {
		return nil
	}

	regionName := regionID
	if region, ok := r.reg.Region(regionID); ok {
		regionName = region.Name
	}

	b := &Battle{
		ID:                    uuid.New(),
		RegionID:              regionID,
		RegionName:            regionName,
		StartDay:              r.day,
		Attackers:             attackers,
		Defenders:             defenders,
		Phase:                 PhaseDeployment,
		deployTurns:           float64(1 + r.rng.Intn(2)),
		skirmishTurns:         float64(3 + r.rng.Intn(3)),
		pursuitTurns:          float64(12 + r.rng.Intn(3)),
		AttackerStrength:      sideStrength(attackers),
		DefenderStrength:      sideStrength(defenders),
		attackerStartStrength: sideStrength(attackers),
		defenderStartStrength: sideStrength(defenders),
	}
	b.logf("Battle joined at %s", regionName)

	r.battles = append(r.battles, b)
	r.battleIndex[b.ID] = b
	r.setBattleOverlay(b, true)

	r.chronicle.Record("battle", "battle begins at %s: %d vs %d warriors",
		regionName, sideWarriors(attackers), sideWarriors(defenders))
	return b
}

func sideWarriors(side []Combatant) int {
	total := 0
	for _, c := range side {
		total += c.CombatWarriors()
	}
	return total
}

// setBattleOverlay flags expedition combatants as in combat; armies track
// their own battling status.
func (r *Resolver) setBattleOverlay(b *Battle, in bool) {
	for _, c := range append(append([]Combatant(nil), b.Attackers...), b.Defenders...) {
		if e, ok := c.(*Expedition); ok && r.expeditions != nil {
			r.expeditions.SetInBattle(e.ID, in)
		}
	}
}

// InitiateSiege opens a siege of a settlement by one attacking force.
// Defense strength is fixed at this moment and held for the whole siege.
func (r *Resolver) InitiateSiege(settlementID string, attacker Combatant) *Siege {
	sett, ok := r.reg.Settlement(settlementID)
	if !ok {
		slog.Warn("siege rejected: unknown settlement", "settlement", settlementID)
		return nil
	}
	if attacker == nil || attacker.CombatWarriors() <= 0 {
		slog.Warn("siege rejected: no attacking force", "settlement", settlementID)
		return nil
	}
	if existing := r.SiegeAgainst(settlementID); existing != nil {
		return existing
	}

	regionName := sett.RegionID
	if region, ok := r.reg.Region(sett.RegionID); ok {
		regionName = region.Name
	}

	s := &Siege{
		ID:              uuid.New(),
		SettlementID:    sett.ID,
		SettlementName:  sett.Name,
		RegionID:        sett.RegionID,
		RegionName:      regionName,
		StartDay:        r.day,
		AttackerID:      attacker.CombatantID(),
		attacker:        attacker,
		DefenseStrength: float64(sett.Military.Defenses)*r.tuning.SiegeDefenseMult + float64(sett.Military.Warriors),
		Phase:           SiegeEncirclement,
	}
	s.logf("%s encircles %s", attacker.CombatantName(), sett.Name)

	r.sieges = append(r.sieges, s)
	r.siegeIndex[s.ID] = s
	return s
}

// Battle returns a battle by id, concluded ones included while retained.
func (r *Resolver) Battle(id uuid.UUID) (*Battle, bool) {
	b, ok := r.battleIndex[id]
	return b, ok
}

// Siege returns a siege by id, concluded ones included while retained.
func (r *Resolver) Siege(id uuid.UUID) (*Siege, bool) {
	s, ok := r.siegeIndex[id]
	return s, ok
}

// ActiveBattles lists battles, optionally including concluded ones still
// inside the retention window.
func (r *Resolver) ActiveBattles(includeConcluded bool) []*Battle {
	var out []*Battle
	for _, b := range r.battles {
		if b.Concluded() && !includeConcluded {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ActiveSieges lists sieges, optionally including concluded ones still
// inside the retention window.
func (r *Resolver) ActiveSieges(includeConcluded bool) []*Siege {
	var out []*Siege
	for _, s := range r.sieges {
		if s.Concluded() && !includeConcluded {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasActiveBattleIn reports whether a region hosts an unconcluded battle.
func (r *Resolver) HasActiveBattleIn(regionID string) bool {
	for _, b := range r.battles {
		if b.RegionID == regionID && !b.Concluded() {
			return true
		}
	}
	return false
}

// SiegeAgainst returns the unconcluded siege of a settlement, if any.
func (r *Resolver) SiegeAgainst(settlementID string) *Siege {
	for _, s := range r.sieges {
		if s.SettlementID == settlementID && !s.Concluded() {
			return s
		}
	}
	return nil
}

// SiegeBy returns the unconcluded siege pressed by the given attacker.
func (r *Resolver) SiegeBy(attackerID uuid.UUID) *Siege {
	for _, s := range r.sieges {
		if s.AttackerID == attackerID && !s.Concluded() {
			return s
		}
	}
	return nil
}

// ProcessTick advances every battle and siege by tickSize days and drops
// concluded records that have aged past the retention window.
func (r *Resolver) ProcessTick(tickSize float64) {
	r.day += tickSize

	for _, b := range r.battles {
		if b.Concluded() {
			b.sinceConcluded += tickSize
			continue
		}
		r.tickBattle(b, tickSize)
	}
	for _, s := range r.sieges {
		if s.Concluded() {
			s.sinceConcluded += tickSize
			continue
		}
		r.tickSiege(s, tickSize)
	}

	r.gc()
}

func (r *Resolver) gc() {
	keptBattles := r.battles[:0]
	for _, b := range r.battles {
		if b.Concluded() && b.sinceConcluded >= r.tuning.RetentionDays {
			delete(r.battleIndex, b.ID)
			continue
		}
		keptBattles = append(keptBattles, b)
	}
	r.battles = keptBattles

	keptSieges := r.sieges[:0]
	for _, s := range r.sieges {
		if s.Concluded() && s.sinceConcluded >= r.tuning.RetentionDays {
			delete(r.siegeIndex, s.ID)
			continue
		}
		keptSieges = append(keptSieges, s)
	}
	r.sieges = keptSieges
}

// ── Battles ──────────────────────────────────────────────────────────

func (r *Resolver) tickBattle(b *Battle, tickSize float64) {
	b.Turn += tickSize

	r.applyBattleCasualties(b, tickSize)

	b.AttackerStrength = sideStrength(b.Attackers)
	b.DefenderStrength = sideStrength(b.Defenders)

	switch b.Phase {
	case PhaseDeployment:
		if b.Turn >= b.deployTurns {
			b.Phase = PhaseSkirmish
			b.logf("Skirmishers engage")
		}
	case PhaseSkirmish:
		if b.Turn >= b.skirmishTurns {
			b.Phase = PhaseMelee
			b.logf("The shield walls meet")
		}
	case PhaseMelee:
		ratio := strengthRatio(b.AttackerStrength, b.DefenderStrength)
		swing := (ratio-1)*50 + (r.rng.Float64()*40 - 20)
		b.Advantage = clamp(0.7*b.Advantage+swing, -100, 100)

		if math.Abs(b.Advantage) >= 70 {
			b.Phase = PhasePursuit
			if b.Advantage > 0 {
				b.logf("The defenders' line breaks")
			} else {
				b.logf("The attackers' line breaks")
			}
		} else if b.Turn >= 10 {
			// Grinding stalemate: call it from the melee.
			switch {
			case b.Advantage > 30:
				r.concludeBattle(b, OutcomeVictory)
			case b.Advantage < -30:
				r.concludeBattle(b, OutcomeDefeat)
			default:
				r.concludeBattle(b, OutcomeDraw)
			}
		}
	case PhasePursuit:
		if b.Turn >= b.pursuitTurns {
			switch {
			case b.Advantage >= 80:
				r.concludeBattle(b, OutcomeDecisiveVictory)
			case b.Advantage > 0:
				r.concludeBattle(b, OutcomeVictory)
			case b.Advantage > -80:
				r.concludeBattle(b, OutcomeDefeat)
			default:
				r.concludeBattle(b, OutcomeDevastatingDefeat)
			}
		}
	}
}

// phaseCasualtyRate is the base fraction of a side lost per day.
func phaseCasualtyRate(p BattlePhase) float64 {
	switch p {
	case PhaseDeployment:
		return 0.01
	case PhaseSkirmish:
		return 0.03
	case PhaseMelee:
		return 0.08
	case PhasePursuit:
		return 0.06
	default:
		return 0.02
	}
}

// applyBattleCasualties bleeds both sides, skewed by advantage: the side
// losing momentum bleeds proportionally more.
func (r *Resolver) applyBattleCasualties(b *Battle, tickSize float64) {
	base := phaseCasualtyRate(b.Phase)

	attMult := 1.0
	defMult := 1.0
	if b.Advantage > 0 {
		attMult = 1 - b.Advantage/200
		defMult = 1 + b.Advantage/100
	} else if b.Advantage < 0 {
		attMult = 1 + math.Abs(b.Advantage)/100
		defMult = 1 - math.Abs(b.Advantage)/200
	}

	attRate := base * attMult * (0.7 + r.rng.Float64()*0.6) * tickSize
	defRate := base * defMult * (0.7 + r.rng.Float64()*0.6) * tickSize

	b.AttackerLosses += applySideCasualties(b.Attackers, attRate)
	b.DefenderLosses += applySideCasualties(b.Defenders, defRate)
}

// applySideCasualties spreads a loss rate across a side's combatants in
// proportion to their warrior share.
func applySideCasualties(side []Combatant, rate float64) int {
	total := 0
	for _, c := range side {
		losses := int(math.Round(float64(c.CombatWarriors()) * rate))
		total += c.TakeCasualties(losses)
	}
	return total
}

func (r *Resolver) concludeBattle(b *Battle, outcome Outcome) {
	b.Phase = PhaseConcluded
	b.Outcome = outcome
	b.sinceConcluded = 0
	b.logf("The battle ends: %s", outcome)

	r.chronicle.Record("battle", "battle at %s concludes: %s (attackers lost %d, defenders lost %d)",
		b.RegionName, outcome, b.AttackerLosses, b.DefenderLosses)

	r.setBattleOverlay(b, false)

	if outcome == OutcomeDraw {
		// Both sides withdraw with a token of fame and no spoils.
		for _, c := range append(append([]Combatant(nil), b.Attackers...), b.Defenders...) {
			if e, ok := c.(*Expedition); ok && e.PlayerOwned() {
				e.Fame += 10
			}
		}
		r.recallSide(b.Attackers)
		r.recallSide(b.Defenders)
		return
	}

	winners, losers := b.Defenders, b.Attackers
	loserStart := b.attackerStartStrength
	if outcome.AttackerWon() {
		winners, losers = b.Attackers, b.Defenders
		loserStart = b.defenderStartStrength
	}

	fameBase := 30.0
	if outcome == OutcomeDecisiveVictory || outcome == OutcomeDevastatingDefeat {
		fameBase = 50.0
	}
	fame := fameBase * math.Sqrt(loserStart) / 5

	for _, c := range winners {
		if e, ok := c.(*Expedition); ok && e.PlayerOwned() {
			e.Fame += fame
		}
	}

	// Spoils go to victorious player attackers, funded by defender losses.
	if outcome.AttackerWon() {
		r.awardBattleLoot(b)
	}

	r.recallSide(losers)
}

// awardBattleLoot splits spoils among the winning side's player war-bands.
func (r *Resolver) awardBattleLoot(b *Battle) {
	var playerWinners []*Expedition
	for _, c := range b.Attackers {
		if e, ok := c.(*Expedition); ok && e.PlayerOwned() && e.Status != StatusDisbanded {
			playerWinners = append(playerWinners, e)
		}
	}
	if len(playerWinners) == 0 || b.DefenderLosses <= 0 {
		return
	}

	total := float64(b.DefenderLosses) * (1 + r.rng.Float64()*2)
	share := total / float64(len(playerWinners))
	for _, e := range playerWinners {
		e.AddLoot(map[social.Resource]float64{
			social.ResourceFood:  share * 0.5,
			social.ResourceWood:  share * 0.3,
			social.ResourceMetal: share * 0.2,
		})
	}
}

// recallSide sends a side's expeditions home. Armies notice the outcome
// themselves on their next tick.
func (r *Resolver) recallSide(side []Combatant) {
	if r.expeditions == nil {
		return
	}
	for _, c := range side {
		e, ok := c.(*Expedition)
		if !ok {
			continue
		}
		if e.Warriors == 0 {
			r.expeditions.Disband(e.ID)
			continue
		}
		r.expeditions.Recall(e.ID)
	}
}

// ── Sieges ───────────────────────────────────────────────────────────

func (r *Resolver) tickSiege(s *Siege, tickSize float64) {
	s.DaysActive += tickSize

	sett, ok := r.reg.Settlement(s.SettlementID)
	if !ok {
		r.abandonSiege(s, "the settlement is gone")
		return
	}
	if !r.attackerStillSieging(s) {
		r.abandonSiege(s, "the attackers have withdrawn")
		return
	}

	// An undefended settlement simply opens its gates.
	if s.DefenseStrength <= 0 {
		s.Progress = 100
		s.mirrorProgress()
		r.concludeSiegeVictory(s, sett)
		return
	}

	ratio := strengthRatio(s.attacker.CombatStrength(), s.DefenseStrength)
	s.Progress += clamp(ratio*5, 1, 10) * tickSize
	if s.Progress > 100 {
		s.Progress = 100
	}
	s.mirrorProgress()

	switch {
	case s.Progress >= 100:
		r.concludeSiegeVictory(s, sett)
		return
	case s.Progress >= 75 && s.Phase == SiegeBombardment:
		s.Phase = SiegeAssault
		s.logf("The final assault begins on %s", sett.Name)
	case s.Progress >= 25 && s.Phase == SiegeEncirclement:
		s.Phase = SiegeBombardment
		s.logf("Siege engines batter %s", sett.Name)
	}

	// Sorties and wall assaults bleed the attacker.
	if r.rng.Float64() < r.tuning.SiegeLossChance*tickSize {
		warriors := s.attacker.CombatWarriors()
		losses := int(math.Ceil(float64(warriors) * s.Phase.casualtyFactor() *
			(1 + s.DefenseStrength/100) * (0.7 + r.rng.Float64()*0.6)))
		applied := s.attacker.TakeCasualties(losses)
		s.Casualties += applied
		if applied > 0 {
			s.logf("%s loses %d warriors on the walls", s.attacker.CombatantName(), applied)
		}
	}

	if float64(s.Casualties) > 1.5*float64(s.attacker.CombatWarriors()) {
		r.abandonSiege(s, "losses are beyond bearing")
	}
}

// attackerStillSieging verifies the attacking force still exists and is
// still committed to this siege.
func (r *Resolver) attackerStillSieging(s *Siege) bool {
	if s.attacker == nil || s.attacker.CombatWarriors() <= 0 {
		return false
	}
	switch a := s.attacker.(type) {
	case *Expedition:
		return a.Status == StatusSieging
	case *FactionArmy:
		return a.Status != ArmyDisbanding
	default:
		return true
	}
}

func (r *Resolver) abandonSiege(s *Siege, reason string) {
	s.Phase = SiegeConcluded
	s.Outcome = SiegeAbandoned
	s.sinceConcluded = 0
	s.logf("The siege of %s is abandoned: %s", s.SettlementName, reason)
	r.chronicle.Record("siege", "siege of %s abandoned: %s", s.SettlementName, reason)

	if e, ok := s.attacker.(*Expedition); ok && r.expeditions != nil {
		if e.Warriors == 0 {
			r.expeditions.Disband(e.ID)
		} else if e.Status == StatusSieging {
			r.expeditions.Recall(e.ID)
		}
	}
}

func (r *Resolver) concludeSiegeVictory(s *Siege, sett *social.Settlement) {
	s.Phase = SiegeConcluded
	s.Outcome = SiegeVictory
	s.sinceConcluded = 0
	s.logf("%s falls to %s", sett.Name, s.attacker.CombatantName())
	r.chronicle.Record("siege", "%s falls to %s after %.0f days",
		sett.Name, s.attacker.CombatantName(), s.DaysActive)

	// The garrison is routed and the settlement changes hands.
	sett.Military.Warriors = 0
	newOwner := ""
	if a, ok := s.attacker.(*FactionArmy); ok {
		newOwner = a.FactionID
	}
	if s.attacker.PlayerOwned() || newOwner != "" {
		r.reg.TransferSettlement(sett.ID, newOwner)
	}

	if e, ok := s.attacker.(*Expedition); ok {
		if e.PlayerOwned() {
			e.Fame += 50 + float64(sett.Rank)*20
			e.AddLoot(sackLoot(sett, r.rng))
		}
		if r.expeditions != nil {
			r.expeditions.Recall(e.ID)
		}
	}
}

// sackLoot scales plunder with the settlement's population and rank.
// Silver appears at rank 2, gold at rank 4.
func sackLoot(sett *social.Settlement, rng *rand.Rand) map[social.Resource]float64 {
	scale := float64(sett.Population) * (1 + float64(sett.Rank)*0.5) * (0.8 + rng.Float64()*0.4)
	loot := map[social.Resource]float64{
		social.ResourceFood:  scale * 1.0,
		social.ResourceWood:  scale * 0.6,
		social.ResourceMetal: scale * 0.3,
	}
	if sett.Rank >= 2 {
		loot[social.ResourceSilver] = scale * 0.1
	}
	if sett.Rank >= 4 {
		loot[social.ResourceGold] = scale * 0.05
	}
	return loot
}
