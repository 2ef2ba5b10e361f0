package conflict

import (
	"github.com/google/uuid"
)

// ArmyStatus is the lifecycle state of a faction army.
type ArmyStatus uint8

const (
	ArmyMustering ArmyStatus = iota
	ArmyMarching
	ArmyDefending
	ArmyBattling
	ArmyDisbanding
)

func (s ArmyStatus) String() string {
	switch s {
	case ArmyMustering:
		return "mustering"
	case ArmyMarching:
		return "marching"
	case ArmyDefending:
		return "defending"
	case ArmyBattling:
		return "battling"
	case ArmyDisbanding:
		return "disbanding"
	default:
		return "unknown"
	}
}

// FactionArmy is an AI faction's reactive field force. Strength is 1:1
// with warriors; the warriors are drawn from the faction's settlements
// at muster and returned on disband.
type FactionArmy struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FactionID string    `json:"faction_id"`

	Warriors        int `json:"warriors"`
	InitialWarriors int `json:"initial_warriors"`
	Casualties      int `json:"casualties"`

	OriginRegionID  string `json:"origin_region_id"`
	CurrentRegionID string `json:"current_region_id"`
	TargetRegionID  string `json:"target_region_id"`

	DaysUntilArrival float64 `json:"days_until_arrival"`
	DaysActive       float64 `json:"days_active"`

	Status ArmyStatus `json:"status"`

	// Battle bookkeeping while battling.
	BattleID    uuid.UUID `json:"battle_id,omitempty"`
	wasAttacker bool

	// Warriors drawn per contributing settlement, for proportional return.
	Contributions map[string]int `json:"contributions,omitempty"`

	sinceDisbanding float64
}

// CombatantID implements Combatant.
func (a *FactionArmy) CombatantID() uuid.UUID { return a.ID }

// CombatantName implements Combatant.
func (a *FactionArmy) CombatantName() string { return a.Name }

// CombatWarriors implements Combatant.
func (a *FactionArmy) CombatWarriors() int { return a.Warriors }

// CombatStrength implements Combatant.
func (a *FactionArmy) CombatStrength() float64 { return float64(a.Warriors) }

// PlayerOwned implements Combatant. Faction armies never are.
func (a *FactionArmy) PlayerOwned() bool { return false }

// TakeCasualties implements Combatant.
func (a *FactionArmy) TakeCasualties(n int) int {
	if n <= 0 || a.Warriors <= 0 {
		return 0
	}
	if n > a.Warriors {
		n = a.Warriors
	}
	a.Warriors -= n
	a.Casualties += n
	return n
}
