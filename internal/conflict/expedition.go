package conflict

import (
	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

// ExpeditionStatus is the home state of an expedition's lifecycle.
type ExpeditionStatus uint8

const (
	StatusMustering ExpeditionStatus = iota
	StatusMarching
	StatusRaiding
	StatusSieging
	StatusBattling // Reported only; modeled as the InBattle overlay flag
	StatusReturning
	StatusDisbanded
)

func (s ExpeditionStatus) String() string {
	switch s {
	case StatusMustering:
		return "mustering"
	case StatusMarching:
		return "marching"
	case StatusRaiding:
		return "raiding"
	case StatusSieging:
		return "sieging"
	case StatusBattling:
		return "battling"
	case StatusReturning:
		return "returning"
	case StatusDisbanded:
		return "disbanded"
	default:
		return "unknown"
	}
}

// Expedition is a mobile war-band, player- or AI-owned.
type Expedition struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	HomeSettlementID string    `json:"home_settlement_id"`
	Owner            OwnerKind `json:"owner"`

	Warriors        int     `json:"warriors"`
	InitialWarriors int     `json:"initial_warriors"`
	Casualties      int     `json:"casualties"`
	Strength        float64 `json:"strength"`
	StrengthBonus   float64 `json:"strength_bonus"` // Additive per-warrior bonus from leadership etc.

	OriginRegionID     string   `json:"origin_region_id"`
	CurrentRegionID    string   `json:"current_region_id"`
	TargetRegionID     string   `json:"target_region_id,omitempty"`
	TargetSettlementID string   `json:"target_settlement_id,omitempty"`
	Path               []string `json:"path,omitempty"`

	MusterProgress float64 `json:"muster_progress"` // 0–100
	MoveProgress   float64 `json:"move_progress"`   // 0–100, resets per leg
	SiegeProgress  float64 `json:"siege_progress"`  // 0–100, persists while sieging

	Loot map[social.Resource]float64 `json:"loot"`
	Fame float64                     `json:"fame"`

	Status   ExpeditionStatus `json:"status"`
	InBattle bool             `json:"in_battle"`

	// Days since the expedition was flagged disbanded; pruned after the
	// configured grace period.
	sinceDisband float64
}

// EffectiveStatus folds the in-combat overlay into the reported status.
func (e *Expedition) EffectiveStatus() ExpeditionStatus {
	if e.InBattle && e.Status != StatusDisbanded {
		return StatusBattling
	}
	return e.Status
}

// recomputeStrength keeps strength a monotonic function of live warriors.
func (e *Expedition) recomputeStrength() {
	e.Strength = float64(e.Warriors) * (1 + e.StrengthBonus)
	if e.Strength < 0 {
		e.Strength = 0
	}
}

// CombatantID implements Combatant.
func (e *Expedition) CombatantID() uuid.UUID { return e.ID }

// CombatantName implements Combatant.
func (e *Expedition) CombatantName() string { return e.Name }

// CombatWarriors implements Combatant.
func (e *Expedition) CombatWarriors() int { return e.Warriors }

// CombatStrength implements Combatant.
func (e *Expedition) CombatStrength() float64 { return e.Strength }

// PlayerOwned implements Combatant.
func (e *Expedition) PlayerOwned() bool { return e.Owner == OwnerPlayer }

// TakeCasualties implements Combatant. Warriors never go negative and
// casualties never exceed the warriors raised at creation.
func (e *Expedition) TakeCasualties(n int) int {
	if n <= 0 || e.Warriors <= 0 {
		return 0
	}
	if n > e.Warriors {
		n = e.Warriors
	}
	e.Warriors -= n
	e.Casualties += n
	if e.Casualties > e.InitialWarriors {
		e.Casualties = e.InitialWarriors
	}
	e.recomputeStrength()
	return n
}

// AddLoot merges plunder into the expedition's carried loot.
func (e *Expedition) AddLoot(res map[social.Resource]float64) {
	if e.Loot == nil {
		e.Loot = make(map[social.Resource]float64)
	}
	for r, amt := range res {
		e.Loot[r] += amt
	}
}
