package conflict

import (
	"fmt"

	"github.com/google/uuid"
)

// BattlePhase is the stage a field battle has reached. Phases only ever
// advance.
type BattlePhase uint8

const (
	PhaseDeployment BattlePhase = iota
	PhaseSkirmish
	PhaseMelee
	PhasePursuit
	PhaseConcluded
)

func (p BattlePhase) String() string {
	switch p {
	case PhaseDeployment:
		return "deployment"
	case PhaseSkirmish:
		return "skirmish"
	case PhaseMelee:
		return "melee"
	case PhasePursuit:
		return "pursuit"
	case PhaseConcluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// Outcome grades a concluded battle from the attacker's point of view.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeDecisiveVictory
	OutcomeVictory
	OutcomeDraw
	OutcomeDefeat
	OutcomeDevastatingDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDecisiveVictory:
		return "decisive_victory"
	case OutcomeVictory:
		return "victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeDevastatingDefeat:
		return "devastating_defeat"
	default:
		return "none"
	}
}

// AttackerWon reports whether the attacking side took the field.
func (o Outcome) AttackerWon() bool {
	return o == OutcomeDecisiveVictory || o == OutcomeVictory
}

// Battle is one multi-tick engagement between two sides in a region.
type Battle struct {
	ID         uuid.UUID `json:"id"`
	RegionID   string    `json:"region_id"`
	RegionName string    `json:"region_name"`
	StartDay   float64   `json:"start_day"`

	Attackers []Combatant `json:"-"`
	Defenders []Combatant `json:"-"`

	Phase BattlePhase `json:"phase"`
	Turn  float64     `json:"turn"`

	AttackerStrength float64 `json:"attacker_strength"`
	DefenderStrength float64 `json:"defender_strength"`
	AttackerLosses   int     `json:"attacker_losses"`
	DefenderLosses   int     `json:"defender_losses"`

	// Signed momentum in [-100, 100]; positive favors the attackers.
	Advantage float64 `json:"advantage"`

	Outcome Outcome `json:"outcome"`

	// Narrative lines for external consumption only.
	Log []string `json:"log"`

	// Randomized phase-change turns, fixed at creation.
	deployTurns   float64
	skirmishTurns float64
	pursuitTurns  float64

	// Opening strength of each side, for fame and outcome bookkeeping.
	attackerStartStrength float64
	defenderStartStrength float64

	sinceConcluded float64
}

// Concluded reports whether the battle has finished.
func (b *Battle) Concluded() bool { return b.Phase == PhaseConcluded }

// side sums the live strength of one side's combatants.
func sideStrength(side []Combatant) float64 {
	total := 0.0
	for _, c := range side {
		total += c.CombatStrength()
	}
	return total
}

// strengthRatio guards the attacker/defender division: a dead side reads
// as a very large ratio instead of dividing by zero.
func strengthRatio(attacker, defender float64) float64 {
	if defender <= 0 {
		return 10
	}
	return attacker / defender
}

func (b *Battle) logf(format string, args ...any) {
	b.Log = append(b.Log, fmt.Sprintf(format, args...))
}
