package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validScenario = `
seed: 7
regions:
  - {id: home, name: Ravenshore, type: coastal, x: 0, y: 0, size: 10}
  - {id: vale, name: Wealdham Vale, type: plains, x: 10, y: 0, size: 10, owner: wessex}
factions:
  - {id: wessex, name: Kingdom of Wessex, kind: anglo, max_armies: 2}
settlements:
  - {id: hold, name: Ravensfjord, region: home, population: 300, rank: 1, warriors: 120, defenses: 1}
  - {id: keep, name: Wealdham Keep, region: vale, faction: wessex, population: 500, rank: 2, warriors: 80, defenses: 2}
player_settlement: hold
tuning:
  base_movement_days: 6
`

func TestLoadValidScenario(t *testing.T) {
	cfg, err := Load(writeScenario(t, validScenario))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Seed)
	}
	if cfg.PlayerSettlement != "hold" {
		t.Errorf("player_settlement = %q, want hold", cfg.PlayerSettlement)
	}
	if len(cfg.Regions) != 2 || len(cfg.Settlements) != 2 || len(cfg.Factions) != 1 {
		t.Errorf("counts = %d/%d/%d regions/settlements/factions",
			len(cfg.Regions), len(cfg.Settlements), len(cfg.Factions))
	}

	// Explicit tuning overrides stick; everything else gets defaults.
	if cfg.Tuning.BaseMovementDays != 6 {
		t.Errorf("base_movement_days = %v, want the override 6", cfg.Tuning.BaseMovementDays)
	}
	if cfg.Tuning.MusterDays != 2 {
		t.Errorf("muster_days = %v, want default 2", cfg.Tuning.MusterDays)
	}
	if cfg.Tuning.ResponseInTerritory != 0.90 {
		t.Errorf("response_in_territory = %v, want default 0.90", cfg.Tuning.ResponseInTerritory)
	}
	if cfg.TickDays != 1 {
		t.Errorf("tick_days = %v, want default 1", cfg.TickDays)
	}
}

func TestLoadRejectsBadScenarios(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			"duplicate region id",
			`regions:
  - {id: home, name: A, type: plains, size: 10}
  - {id: home, name: B, type: plains, size: 10}`,
			"duplicate id",
		},
		{
			"unknown region type",
			`regions:
  - {id: home, name: A, type: swamp, size: 10}`,
			"unknown type",
		},
		{
			"settlement in unknown region",
			`regions:
  - {id: home, name: A, type: plains, size: 10}
settlements:
  - {id: hold, name: Hold, region: nowhere, population: 100}`,
			"unknown region",
		},
		{
			"settlement of unknown faction",
			`settlements:
  - {id: hold, name: Hold, region: home, faction: nobody, population: 100}`,
			"unknown faction",
		},
		{
			"negative warriors",
			`settlements:
  - {id: hold, name: Hold, region: home, population: 100, warriors: -5}`,
			"negative",
		},
		{
			"missing player settlement",
			`settlements:
  - {id: hold, name: Hold, region: home, population: 100}
player_settlement: other`,
			"no such settlement",
		},
		{
			"inverted muster fractions",
			`tuning:
  muster_fraction_min: 0.8
  muster_fraction_max: 0.5`,
			"muster_fraction_min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tt.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestDefaultIsPlayable(t *testing.T) {
	cfg := Default()
	if cfg.Seed == 0 || cfg.TickDays <= 0 {
		t.Errorf("defaults unset: seed=%d tick_days=%v", cfg.Seed, cfg.TickDays)
	}
	if cfg.WorldGen.Regions <= 0 || cfg.WorldGen.Spread <= 0 {
		t.Errorf("worldgen defaults unset: %+v", cfg.WorldGen)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default scenario invalid: %v", err)
	}
}
