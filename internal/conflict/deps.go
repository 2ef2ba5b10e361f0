// Package conflict implements the military simulation core: expedition
// lifecycles, reactive faction armies, and multi-phase battle and siege
// resolution. All state lives in explicit manager structs wired together
// at construction; nothing here reaches for globals.
package conflict

import (
	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/world"
)

// Registry is the region/settlement lookup contract the core consumes.
// Lookups return ok=false for dangling references; callers treat that as
// a signal to no-op or force an early conclusion, never to panic.
type Registry interface {
	Region(id string) (*world.Region, bool)
	AdjacentRegions(id string) []string
	Settlement(id string) (*social.Settlement, bool)
	PlayerSettlement() *social.Settlement
	Faction(id string) (*social.Faction, bool)
	Factions() []*social.Faction
	FactionSettlements(factionID string) []*social.Settlement

	// TransferSettlement reassigns ownership after a successful siege.
	// Empty newFactionID hands the settlement to the player.
	TransferSettlement(settlementID, newFactionID string) bool
}

// Ledger credits and debits the player's warrior pool, stores, and renown.
// Warrior mutation here is the single point of truth: a debit that would
// go negative fails and returns false.
type Ledger interface {
	AddWarriors(settlementID string, delta int) bool
	AddResources(settlementID string, res map[social.Resource]float64)
	AddFame(settlementID string, amount float64, reason string)
}

// Chronicle records narrative events for external consumption. The
// simulation never reads them back.
type Chronicle interface {
	Record(category, format string, args ...any)
}

// OwnerKind distinguishes player-controlled forces from AI ones.
type OwnerKind uint8

const (
	OwnerPlayer OwnerKind = iota
	OwnerAI
)

func (k OwnerKind) String() string {
	if k == OwnerPlayer {
		return "player"
	}
	return "ai"
}

// Combatant is one force taking part in a battle: an expedition or a
// faction army. The resolver reads live strength through this interface
// and applies casualties back through it.
type Combatant interface {
	CombatantID() uuid.UUID
	CombatantName() string
	CombatWarriors() int
	CombatStrength() float64

	// TakeCasualties removes up to n warriors and returns how many were
	// actually removed (warriors never go negative).
	TakeCasualties(n int) int

	// PlayerOwned reports whether battle spoils and fame accrue to the player.
	PlayerOwned() bool
}
