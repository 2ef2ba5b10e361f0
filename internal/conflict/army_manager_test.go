package conflict

import (
	"testing"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

func TestForceResponseMustersArmy(t *testing.T) {
	tw := newTestWorld()
	expeditions, armies, resolver := newManagers(tw, 9)
	armies.ForceResponse = true

	garrison := tw.settlements["enemy_keep"].Military.Warriors
	raider := restoreExpedition(expeditions, OwnerPlayer, 100, "enemy", StatusRaiding)

	// One scan interval elapses; the faction must answer a raider inside
	// its own territory.
	armies.ProcessTick(DefaultTuning().CheckIntervalDays)

	hosts := armies.FactionArmies("wessex")
	if len(hosts) != 1 {
		t.Fatalf("armies mustered = %d, want 1", len(hosts))
	}
	a := hosts[0]

	if a.TargetRegionID != "enemy" {
		t.Errorf("target = %q, want enemy", a.TargetRegionID)
	}
	// Threat is in home territory: the host forms up on the spot.
	if a.CurrentRegionID != "enemy" {
		t.Errorf("home region = %q, want enemy", a.CurrentRegionID)
	}

	// The draw is 40–70% of the garrison and the books stay closed.
	if a.Warriors < int(0.4*float64(garrison)) || a.Warriors > int(0.7*float64(garrison))+1 {
		t.Errorf("draw = %d of %d, want 40-70%%", a.Warriors, garrison)
	}
	remaining := tw.settlements["enemy_keep"].Military.Warriors
	if remaining+a.Warriors != garrison {
		t.Errorf("warrior accounting broken: %d garrison + %d army != %d", remaining, a.Warriors, garrison)
	}

	// The same tick finds the raider and forces a battle.
	if a.Status != ArmyBattling {
		t.Errorf("status = %v, want battling with a raider on its ground", a.Status)
	}
	if !resolver.HasActiveBattleIn("enemy") {
		t.Error("no battle opened against the raider")
	}
	if !raider.InBattle {
		t.Error("raider not flagged as in battle")
	}
}

func TestNoSecondArmyForSameRegion(t *testing.T) {
	tw := newTestWorld()
	expeditions, armies, _ := newManagers(tw, 9)
	armies.ForceResponse = true
	// Plenty of warriors for two musters.
	tw.settlements["enemy_keep"].Military.Warriors = 500

	restoreExpedition(expeditions, OwnerPlayer, 100, "enemy", StatusRaiding)
	armies.ProcessTick(DefaultTuning().CheckIntervalDays)
	armies.ProcessTick(DefaultTuning().CheckIntervalDays)

	if n := len(armies.FactionArmies("wessex")); n != 1 {
		t.Errorf("armies targeting one region = %d, want 1", n)
	}
}

func TestArrivalTiers(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantDays   float64
		wantStatus ArmyStatus
	}{
		{"home territory", "enemy", 1, ArmyDefending},
		{"adjacent region", "plains", 2, ArmyMarching},
		{"distant region", "home", 3, ArmyMarching},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld()
			_, armies, _ := newManagers(tw, 9)

			a := armies.CreateFactionArmy("wessex", tt.target)
			if a == nil {
				t.Fatal("muster failed")
			}
			if a.DaysUntilArrival != tt.wantDays {
				t.Errorf("arrival = %v days, want %v", a.DaysUntilArrival, tt.wantDays)
			}
			if a.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", a.Status, tt.wantStatus)
			}
		})
	}
}

func TestSiegeReliefIgnoresManpowerScale(t *testing.T) {
	tw := newTestWorld()
	_, armies, _ := newManagers(tw, 9)
	tuning := DefaultTuning()

	// A keep stripped to a token garrison, far below the low-manpower
	// threshold.
	tw.settlements["enemy_keep"].Military.Warriors = 10
	wessex, _ := tw.Faction("wessex")

	relief, ok := armies.responseChance(wessex, "enemy", tuning.ResponseSiege)
	if !ok {
		t.Fatal("no siege relief chance computed")
	}
	if relief != tuning.ResponseSiege {
		t.Errorf("siege relief chance = %v, want %v regardless of manpower", relief, tuning.ResponseSiege)
	}

	// Open-field responses still scale down with what can be raised.
	inTerritory, ok := armies.responseChance(wessex, "enemy", 0)
	if !ok {
		t.Fatal("no in-territory chance computed")
	}
	if want := tuning.ResponseInTerritory * 0.25; inTerritory != want {
		t.Errorf("in-territory chance = %v, want %v at the manpower floor", inTerritory, want)
	}
}

func TestCreateFactionArmyUnknownFaction(t *testing.T) {
	tw := newTestWorld()
	_, armies, _ := newManagers(tw, 9)
	if a := armies.CreateFactionArmy("nobody", "enemy"); a != nil {
		t.Error("muster for an unknown faction should fail")
	}
}

func TestMarchingArmyArrives(t *testing.T) {
	tw := newTestWorld()
	_, armies, _ := newManagers(tw, 9)

	a := armies.CreateFactionArmy("wessex", "plains")
	if a.Status != ArmyMarching {
		t.Fatalf("status = %v, want marching", a.Status)
	}

	armies.ProcessTick(1)
	if a.Status != ArmyMarching {
		t.Fatalf("arrived a day early")
	}
	armies.ProcessTick(1)
	if a.Status != ArmyDefending || a.CurrentRegionID != "plains" {
		t.Errorf("status = %v in %q, want defending in plains", a.Status, a.CurrentRegionID)
	}
}

func TestDisbandReturnsWarriorsProportionally(t *testing.T) {
	tw := newTestWorld()
	tw.addSettlement(&social.Settlement{
		ID: "enemy_port", Name: "Wealdham Port", RegionID: "enemy", FactionID: "wessex",
		Population: 200, Rank: 1,
		Military:   social.Military{Warriors: 0},
	})
	tw.settlements["enemy_keep"].Military.Warriors = 0
	_, armies, _ := newManagers(tw, 9)

	a := &FactionArmy{
		ID:              uuid.New(),
		Name:            "Host of Wessex",
		FactionID:       "wessex",
		Warriors:        20, // 20 of the 40 raised survive
		InitialWarriors: 40,
		Casualties:      20,
		CurrentRegionID: "enemy",
		Status:          ArmyDefending,
		Contributions:   map[string]int{"enemy_keep": 30, "enemy_port": 10},
	}
	armies.Restore(a)

	armies.DisbandArmy(a.ID)
	armies.ProcessTick(DefaultTuning().ArmyGraceDays)

	keep := tw.settlements["enemy_keep"].Military.Warriors
	port := tw.settlements["enemy_port"].Military.Warriors
	if keep != 15 || port != 5 {
		t.Errorf("returned keep=%d port=%d, want 15/5 (proportional to 30/10)", keep, port)
	}
	if keep+port != 20 {
		t.Errorf("returned total = %d, want all 20 survivors", keep+port)
	}
	if n := len(armies.FactionArmies()); n != 0 {
		t.Errorf("armies tracked after prune = %d, want 0", n)
	}
}

func TestDisbandArmyTwiceNoOp(t *testing.T) {
	tw := newTestWorld()
	_, armies, _ := newManagers(tw, 9)

	a := armies.CreateFactionArmy("wessex", "enemy")
	if !armies.DisbandArmy(a.ID) {
		t.Fatal("DisbandArmy failed")
	}
	if armies.DisbandArmy(a.ID) {
		t.Error("second DisbandArmy should be a no-op")
	}
}

func TestArmyStandsDownAfterLongCampaign(t *testing.T) {
	tw := newTestWorld()
	_, armies, _ := newManagers(tw, 9)

	garrison := tw.settlements["enemy_keep"].Military.Warriors
	a := armies.CreateFactionArmy("wessex", "enemy")
	drawn := a.Warriors

	// The ceiling plus the disband grace empties the field.
	days := DefaultTuning().ArmyMaxDaysActive + DefaultTuning().ArmyGraceDays + 2
	for i := 0.0; i < days; i++ {
		armies.ProcessTick(1)
	}

	if n := len(armies.FactionArmies()); n != 0 {
		t.Fatalf("armies still fielded = %d, want 0", n)
	}
	if got := tw.settlements["enemy_keep"].Military.Warriors; got != garrison {
		t.Errorf("garrison = %d, want %d (all %d drawn warriors back)", got, garrison, drawn)
	}
}
