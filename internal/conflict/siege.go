package conflict

import (
	"fmt"

	"github.com/google/uuid"
)

// SiegePhase is the stage a siege has reached.
type SiegePhase uint8

const (
	SiegeEncirclement SiegePhase = iota
	SiegeBombardment
	SiegeAssault
	SiegeConcluded
)

func (p SiegePhase) String() string {
	switch p {
	case SiegeEncirclement:
		return "encirclement"
	case SiegeBombardment:
		return "bombardment"
	case SiegeAssault:
		return "assault"
	case SiegeConcluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// SiegeOutcome is the result of a concluded siege, attacker-relative.
type SiegeOutcome uint8

const (
	SiegeNone SiegeOutcome = iota
	SiegeVictory
	SiegeDefeat
	SiegeAbandoned
)

func (o SiegeOutcome) String() string {
	switch o {
	case SiegeVictory:
		return "victory"
	case SiegeDefeat:
		return "defeat"
	case SiegeAbandoned:
		return "abandoned"
	default:
		return "none"
	}
}

// Siege is one attacking force grinding down a settlement's static defense.
type Siege struct {
	ID             uuid.UUID `json:"id"`
	SettlementID   string    `json:"settlement_id"`
	SettlementName string    `json:"settlement_name"`
	RegionID       string    `json:"region_id"`
	RegionName     string    `json:"region_name"`
	StartDay       float64   `json:"start_day"`

	AttackerID uuid.UUID `json:"attacker_id"`
	attacker   Combatant

	// Fixed at creation: defense level × multiplier + defender warriors.
	DefenseStrength float64 `json:"defense_strength"`

	Progress   float64 `json:"progress"` // 0–100, never decreases while active
	DaysActive float64 `json:"days_active"`

	// Attacker casualties accumulated over this siege.
	Casualties int `json:"casualties"`

	Phase   SiegePhase   `json:"phase"`
	Outcome SiegeOutcome `json:"outcome"`

	Log []string `json:"log"`

	sinceConcluded float64
}

// Concluded reports whether the siege has finished.
func (s *Siege) Concluded() bool { return s.Phase == SiegeConcluded }

// mirrorProgress copies the siege's progress onto a besieging expedition
// so its own record reports it too.
func (s *Siege) mirrorProgress() {
	if e, ok := s.attacker.(*Expedition); ok {
		e.SiegeProgress = s.Progress
	}
}

func (s *Siege) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// phaseCasualtyFactor escalates assault losses as the siege tightens.
func (p SiegePhase) casualtyFactor() float64 {
	switch p {
	case SiegeEncirclement:
		return 0.01
	case SiegeBombardment:
		return 0.03
	case SiegeAssault:
		return 0.08
	default:
		return 0
	}
}
