package conflict

// Tuning collects every balance constant in the conflict core. A zero
// value is never used directly; call DefaultTuning and override fields
// from config.
type Tuning struct {
	// Expedition movement and raiding.
	BaseMovementDays   float64 `yaml:"base_movement_days"`   // Days per leg before terrain modifiers
	NonAdjacentPenalty float64 `yaml:"non_adjacent_penalty"` // Leg-day multiplier for non-adjacent hops
	MusterDays         float64 `yaml:"muster_days"`          // Days to raise a war-band
	RaidLootRate       float64 `yaml:"raid_loot_rate"`       // Loot per point of strength per day
	RetaliationChance  float64 `yaml:"retaliation_chance"`   // Chance per day of raid casualties
	LootSatiation      float64 `yaml:"loot_satiation"`       // Loot-per-warrior multiple that triggers return rolls
	ReturnChance       float64 `yaml:"return_chance"`        // Chance per day of heading home once sated
	DisbandGraceDays   float64 `yaml:"disband_grace_days"`   // Days a disbanded record stays queryable

	// Faction army response.
	CheckIntervalDays    float64 `yaml:"check_interval_days"`    // Days between threat scans
	ResponseInTerritory  float64 `yaml:"response_in_territory"`  // Base chance when threat is inside territory
	ResponseAdjacent     float64 `yaml:"response_adjacent"`      // Base chance when threat borders territory
	ResponseSiege        float64 `yaml:"response_siege"`         // Base chance when a faction settlement is besieged
	ResponseCap          float64 `yaml:"response_cap"`           // Absolute ceiling on response probability
	MaxArmiesPerFaction  int     `yaml:"max_armies_per_faction"` // Fallback when the faction sets no cap
	MusterFractionMin    float64 `yaml:"muster_fraction_min"`    // Low end of warriors drawn per settlement
	MusterFractionMax    float64 `yaml:"muster_fraction_max"`    // High end of warriors drawn per settlement
	WarriorsLowThreshold int     `yaml:"warriors_low_threshold"` // Available-warrior count for full response odds
	ArmyMaxDaysActive    float64 `yaml:"army_max_days_active"`   // Auto-disband ceiling
	ArmyGraceDays        float64 `yaml:"army_grace_days"`        // Days in disbanding before removal

	// Battle and siege resolution.
	RetentionDays    float64 `yaml:"retention_days"`     // Days concluded records stay queryable
	SiegeDefenseMult float64 `yaml:"siege_defense_mult"` // Defense strength per defense building level
	SiegeLossChance  float64 `yaml:"siege_loss_chance"`  // Chance per day of assault casualties
}

// DefaultTuning returns the shipped balance values.
func DefaultTuning() Tuning {
	return Tuning{
		BaseMovementDays:   5,
		NonAdjacentPenalty: 3.0,
		MusterDays:         2,
		RaidLootRate:       0.4,
		RetaliationChance:  0.05,
		LootSatiation:      20,
		ReturnChance:       0.20,
		DisbandGraceDays:   2,

		CheckIntervalDays:    2,
		ResponseInTerritory:  0.90,
		ResponseAdjacent:     0.45,
		ResponseSiege:        0.98,
		ResponseCap:          0.98,
		MaxArmiesPerFaction:  2,
		MusterFractionMin:    0.40,
		MusterFractionMax:    0.70,
		WarriorsLowThreshold: 50,
		ArmyMaxDaysActive:    30,
		ArmyGraceDays:        2,

		RetentionDays:    5,
		SiegeDefenseMult: 3,
		SiegeLossChance:  0.15,
	}
}
