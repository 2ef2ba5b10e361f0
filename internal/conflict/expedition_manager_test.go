package conflict

import (
	"testing"

	"github.com/google/uuid"

	"github.com/iLLituracy1/IbyllSaga-sub002/internal/social"
)

func TestCreatePlayerExpedition(t *testing.T) {
	tests := []struct {
		name         string
		warriors     int
		wantCreated  bool
		wantGarrison int
	}{
		{"normal draw", 80, true, 120},
		{"zero warriors", 0, false, 200},
		{"negative warriors", -5, false, 200},
		{"more than garrison", 300, false, 200},
		{"entire garrison", 200, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := newTestWorld()
			expeditions, _, _ := newManagers(tw, 1)

			e := expeditions.CreatePlayerExpedition(tt.warriors, "Test Band")
			if (e != nil) != tt.wantCreated {
				t.Fatalf("created = %v, want %v", e != nil, tt.wantCreated)
			}
			if got := tw.settlements["player_hold"].Military.Warriors; got != tt.wantGarrison {
				t.Errorf("garrison = %d, want %d", got, tt.wantGarrison)
			}
			if e != nil {
				if e.Status != StatusMustering {
					t.Errorf("status = %v, want mustering", e.Status)
				}
				if e.Warriors != tt.warriors || e.InitialWarriors != tt.warriors {
					t.Errorf("warriors = %d/%d, want %d", e.Warriors, e.InitialWarriors, tt.warriors)
				}
			}
		})
	}
}

func TestOrdersQueuedDuringMuster(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(50, "Test Band")
	if !expeditions.Start(e.ID, Orders{TargetRegionID: "plains"}) {
		t.Fatal("Start failed")
	}
	if e.Status != StatusMustering {
		t.Fatalf("orders mid-muster flipped status to %v, want mustering", e.Status)
	}

	expeditions.ProcessTick(1)
	if e.Status != StatusMustering {
		t.Fatalf("status after 1 day = %v, want mustering", e.Status)
	}
	expeditions.ProcessTick(1)
	if e.Status != StatusMarching {
		t.Fatalf("status after full muster = %v, want marching", e.Status)
	}
}

func TestMarchArrivesOnSchedule(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(50, "Test Band")
	expeditions.Start(e.ID, Orders{TargetRegionID: "plains"})

	// 2 days muster, then round(5/1.2) = 4 days for the adjacent plains leg.
	for day := 1; day <= 5; day++ {
		expeditions.ProcessTick(1)
		if e.Status == StatusRaiding {
			t.Fatalf("arrived on day %d, want day 6", day)
		}
	}
	expeditions.ProcessTick(1)
	if e.Status != StatusRaiding {
		t.Fatalf("status on day 6 = %v, want raiding", e.Status)
	}
	if e.CurrentRegionID != "plains" {
		t.Errorf("region = %q, want plains", e.CurrentRegionID)
	}
}

func TestLegDays(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	tests := []struct {
		from, to string
		want     float64
	}{
		{"home", "plains", 4},  // round(5/1.2), adjacent
		{"home", "enemy", 12},  // 4 × 3, non-adjacent
		{"home", "far", 24},    // round(5/0.6) = 8, × 3 non-adjacent
		{"plains", "enemy", 4}, // adjacent plains hop
	}
	for _, tt := range tests {
		if got := expeditions.legDays(tt.from, tt.to); got != tt.want {
			t.Errorf("legDays(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRecallAndDisband(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(80, "Test Band")
	e.Fame = 40
	e.AddLoot(map[social.Resource]float64{social.ResourceFood: 100})
	e.TakeCasualties(30)

	if !expeditions.Disband(e.ID) {
		t.Fatal("Disband failed")
	}
	if expeditions.Disband(e.ID) {
		t.Error("second Disband should be a no-op")
	}
	if expeditions.Recall(e.ID) {
		t.Error("Recall of a disbanded expedition should fail")
	}

	home := tw.settlements["player_hold"]
	if home.Military.Warriors != 120+50 {
		t.Errorf("garrison = %d, want %d (survivors returned)", home.Military.Warriors, 170)
	}
	if home.Resources[social.ResourceFood] != 100 {
		t.Errorf("food = %v, want 100", home.Resources[social.ResourceFood])
	}
	if home.Fame != 40 {
		t.Errorf("fame = %v, want 40", home.Fame)
	}
}

func TestRecallUnknownExpedition(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)
	if expeditions.Recall(uuid.New()) {
		t.Error("Recall of an unknown id should fail")
	}
}

func TestDisbandedPrunedAfterGrace(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(50, "Test Band")
	expeditions.Disband(e.ID)

	if _, ok := expeditions.Expedition(e.ID); !ok {
		t.Fatal("disbanded record should stay queryable inside the grace window")
	}
	expeditions.ProcessTick(DefaultTuning().DisbandGraceDays)
	if _, ok := expeditions.Expedition(e.ID); ok {
		t.Error("record should be pruned after the grace window")
	}
	if n := len(expeditions.Expeditions()); n != 0 {
		t.Errorf("expeditions tracked = %d, want 0", n)
	}
}

func TestRaidingAccumulatesLoot(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(100, "Test Band")
	e.Status = StatusRaiding
	e.CurrentRegionID = "plains"

	expeditions.ProcessTick(1)
	if social.TotalLoot(e.Loot) <= 0 {
		t.Error("a day of raiding should yield loot")
	}
	for _, res := range social.RaidableResources {
		if e.Loot[res] <= 0 {
			t.Errorf("no %s plundered", res)
		}
	}
}

func TestHeavyLossesForceReturn(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 1)

	e := expeditions.CreatePlayerExpedition(100, "Test Band")
	e.Status = StatusRaiding
	e.CurrentRegionID = "plains"
	e.Casualties = 60 // beyond half the surviving warriors

	expeditions.ProcessTick(1)
	if e.Status != StatusReturning {
		t.Errorf("status = %v, want returning after heavy losses", e.Status)
	}
}

func TestSatedWarBandHeadsHome(t *testing.T) {
	tw := newTestWorld()
	expeditions, _, _ := newManagers(tw, 7)

	e := expeditions.CreatePlayerExpedition(100, "Test Band")
	e.Status = StatusRaiding
	e.CurrentRegionID = "plains"
	e.AddLoot(map[social.Resource]float64{social.ResourceFood: 10000})

	for day := 0; day < 200 && e.Status == StatusRaiding; day++ {
		expeditions.ProcessTick(1)
	}
	if e.Status != StatusReturning {
		t.Errorf("status = %v, want returning once sated", e.Status)
	}
}
