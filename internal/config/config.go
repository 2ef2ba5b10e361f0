// YAML scenario loader for campaign setup and balance tuning.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/conflict"
)

// RegionDef describes one region in a scenario file.
type RegionDef struct {
	ID       string             `yaml:"id"`
	Name     string             `yaml:"name"`
	Type     string             `yaml:"type"` // plains|coastal|forest|fjord|mountain
	X        float64            `yaml:"x"`
	Y        float64            `yaml:"y"`
	Size     float64            `yaml:"size"`
	Landmass string             `yaml:"landmass"`
	Owner    string             `yaml:"owner,omitempty"` // faction id, empty = unclaimed
	Raids    map[string]float64 `yaml:"raid_modifiers,omitempty"`
}

// SettlementDef describes one settlement in a scenario file.
type SettlementDef struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Region     string `yaml:"region"`
	Faction    string `yaml:"faction,omitempty"` // empty = the player's
	Population int    `yaml:"population"`
	Rank       int    `yaml:"rank"`
	Warriors   int    `yaml:"warriors"`
	Defenses   int    `yaml:"defenses"`
}

// FactionDef describes one AI faction in a scenario file.
type FactionDef struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"` // norse|anglo|frankish
	MaxArmies int    `yaml:"max_armies"`
}

// WorldGen configures procedural map generation, used when the scenario
// lists no regions.
type WorldGen struct {
	Regions int     `yaml:"regions"`
	Spread  float64 `yaml:"spread"`
}

// Scenario is the root configuration for a campaign.
type Scenario struct {
	Seed     int64   `yaml:"seed"`
	TickDays float64 `yaml:"tick_days"`

	Regions     []RegionDef     `yaml:"regions"`
	Settlements []SettlementDef `yaml:"settlements"`
	Factions    []FactionDef    `yaml:"factions"`

	// The player's home settlement id.
	PlayerSettlement string `yaml:"player_settlement"`

	WorldGen WorldGen        `yaml:"worldgen"`
	Tuning   conflict.Tuning `yaml:"tuning"`
}

// Load reads, defaults, and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	cfg := &Scenario{Tuning: conflict.DefaultTuning()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a playable scenario without a file on disk.
func Default() *Scenario {
	cfg := &Scenario{Tuning: conflict.DefaultTuning()}
	cfg.applyDefaults()
	return cfg
}

func (c *Scenario) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.TickDays <= 0 {
		c.TickDays = 1
	}
	if c.WorldGen.Regions <= 0 {
		c.WorldGen.Regions = 24
	}
	if c.WorldGen.Spread <= 0 {
		c.WorldGen.Spread = 100
	}

	def := conflict.DefaultTuning()
	t := &c.Tuning
	if t.BaseMovementDays <= 0 {
		t.BaseMovementDays = def.BaseMovementDays
	}
	if t.NonAdjacentPenalty <= 0 {
		t.NonAdjacentPenalty = def.NonAdjacentPenalty
	}
	if t.MusterDays <= 0 {
		t.MusterDays = def.MusterDays
	}
	if t.RaidLootRate <= 0 {
		t.RaidLootRate = def.RaidLootRate
	}
	if t.RetaliationChance <= 0 {
		t.RetaliationChance = def.RetaliationChance
	}
	if t.LootSatiation <= 0 {
		t.LootSatiation = def.LootSatiation
	}
	if t.ReturnChance <= 0 {
		t.ReturnChance = def.ReturnChance
	}
	if t.DisbandGraceDays <= 0 {
		t.DisbandGraceDays = def.DisbandGraceDays
	}
	if t.CheckIntervalDays <= 0 {
		t.CheckIntervalDays = def.CheckIntervalDays
	}
	if t.ResponseInTerritory <= 0 {
		t.ResponseInTerritory = def.ResponseInTerritory
	}
	if t.ResponseAdjacent <= 0 {
		t.ResponseAdjacent = def.ResponseAdjacent
	}
	if t.ResponseSiege <= 0 {
		t.ResponseSiege = def.ResponseSiege
	}
	if t.ResponseCap <= 0 {
		t.ResponseCap = def.ResponseCap
	}
	if t.MaxArmiesPerFaction <= 0 {
		t.MaxArmiesPerFaction = def.MaxArmiesPerFaction
	}
	if t.MusterFractionMin <= 0 {
		t.MusterFractionMin = def.MusterFractionMin
	}
	if t.MusterFractionMax <= 0 {
		t.MusterFractionMax = def.MusterFractionMax
	}
	if t.WarriorsLowThreshold <= 0 {
		t.WarriorsLowThreshold = def.WarriorsLowThreshold
	}
	if t.ArmyMaxDaysActive <= 0 {
		t.ArmyMaxDaysActive = def.ArmyMaxDaysActive
	}
	if t.ArmyGraceDays <= 0 {
		t.ArmyGraceDays = def.ArmyGraceDays
	}
	if t.RetentionDays <= 0 {
		t.RetentionDays = def.RetentionDays
	}
	if t.SiegeDefenseMult <= 0 {
		t.SiegeDefenseMult = def.SiegeDefenseMult
	}
	if t.SiegeLossChance <= 0 {
		t.SiegeLossChance = def.SiegeLossChance
	}
}
