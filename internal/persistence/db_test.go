package persistence

import (
	"path/filepath"
	"testing"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/config"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/conflict"
	"github.com/iLLituracy1/IbyllSaga-sub002/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func buildSim(t *testing.T) *engine.Simulation {
	t.Helper()
	sim, err := engine.BuildSimulation(config.Default())
	if err != nil {
		t.Fatalf("BuildSimulation: %v", err)
	}
	return sim
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if db.HasState() {
		t.Fatal("fresh database reports saved state")
	}

	sim := buildSim(t)
	e := sim.Expeditions.CreatePlayerExpedition(60, "Raven Banner")
	if e == nil {
		t.Fatal("expedition rejected")
	}
	sim.Expeditions.Start(e.ID, conflict.Orders{TargetRegionID: sim.PlayerSettlement().RegionID})
	for day := 0; day < 5; day++ {
		sim.Advance(1)
	}

	if err := db.SaveState(sim); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if !db.HasState() {
		t.Fatal("saved state not detected")
	}

	restored := buildSim(t)
	if err := db.LoadState(restored); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if restored.Day != sim.Day {
		t.Errorf("day = %v, want %v", restored.Day, sim.Day)
	}

	player := restored.PlayerSettlement()
	if player.Military.Warriors != sim.PlayerSettlement().Military.Warriors {
		t.Errorf("garrison = %d, want %d", player.Military.Warriors,
			sim.PlayerSettlement().Military.Warriors)
	}

	got, ok := restored.Expeditions.Expedition(e.ID)
	if !ok {
		t.Fatal("expedition missing after restore")
	}
	if got.Warriors != e.Warriors || got.Status != e.Status || got.CurrentRegionID != e.CurrentRegionID {
		t.Errorf("expedition diverged: %d/%v/%s, want %d/%v/%s",
			got.Warriors, got.Status, got.CurrentRegionID,
			e.Warriors, e.Status, e.CurrentRegionID)
	}
	if len(got.Loot) != len(e.Loot) {
		t.Errorf("loot kinds = %d, want %d", len(got.Loot), len(e.Loot))
	}
}

func TestDisbandedExpeditionsNotSaved(t *testing.T) {
	db := openTestDB(t)

	sim := buildSim(t)
	e := sim.Expeditions.CreatePlayerExpedition(40, "Short-lived")
	sim.Expeditions.Disband(e.ID)

	if err := db.SaveState(sim); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored := buildSim(t)
	if err := db.LoadState(restored); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if _, ok := restored.Expeditions.Expedition(e.ID); ok {
		t.Error("disbanded expedition should not survive a restore")
	}
}

func TestSaveStateOverwrites(t *testing.T) {
	db := openTestDB(t)
	sim := buildSim(t)

	if err := db.SaveState(sim); err != nil {
		t.Fatalf("first SaveState: %v", err)
	}
	sim.Advance(1)
	if err := db.SaveState(sim); err != nil {
		t.Fatalf("second SaveState: %v", err)
	}

	day, err := db.GetMeta("day")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if day != "1" {
		t.Errorf("saved day = %q, want 1", day)
	}
}
