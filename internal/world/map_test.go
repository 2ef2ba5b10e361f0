package world

import (
	"sort"
	"testing"
)

func chainMap() *Map {
	m := NewMap()
	m.Set(&Region{ID: "a", Name: "A", Position: Position{X: 0}, Size: 10, Landmass: "mainland"})
	m.Set(&Region{ID: "b", Name: "B", Position: Position{X: 10}, Size: 10, Landmass: "mainland"})
	m.Set(&Region{ID: "c", Name: "C", Position: Position{X: 20}, Size: 10, Landmass: "mainland"})
	m.Set(&Region{ID: "isle", Name: "Isle", Position: Position{X: 10, Y: 5}, Size: 10, Landmass: "island"})
	return m
}

func TestAdjacency(t *testing.T) {
	m := chainMap()

	tests := []struct {
		a, b string
		want bool
	}{
		{"a", "b", true},  // 10 apart, threshold (10+10)×0.75 = 15
		{"b", "c", true},
		{"a", "c", false}, // 20 apart
		{"a", "a", false}, // never self-adjacent
		{"b", "isle", false}, // close, but a different landmass
		{"a", "ghost", false},
	}
	for _, tt := range tests {
		if got := m.Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("Adjacent(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := m.Adjacent(tt.b, tt.a); got != tt.want {
			t.Errorf("Adjacent(%s, %s) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestAdjacentRegionsSorted(t *testing.T) {
	m := chainMap()
	got := m.AdjacentRegions("b")
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("AdjacentRegions(b) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AdjacentRegions(b) = %v, want %v", got, want)
		}
	}
}

func TestSortedRegionsOrder(t *testing.T) {
	m := chainMap()
	regions := m.SortedRegions()
	if len(regions) != 4 {
		t.Fatalf("regions = %d, want 4", len(regions))
	}
	ids := make([]string, len(regions))
	for i, r := range regions {
		ids[i] = r.ID
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("SortedRegions not sorted: %v", ids)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42

	a := Generate(cfg)
	b := Generate(cfg)

	if a.RegionCount() != cfg.Regions || a.RegionCount() != b.RegionCount() {
		t.Fatalf("region counts: %d and %d, want %d", a.RegionCount(), b.RegionCount(), cfg.Regions)
	}
	for id, ra := range a.Regions {
		rb := b.Get(id)
		if rb == nil {
			t.Fatalf("region %s missing from second map", id)
		}
		if ra.Name != rb.Name || ra.Type != rb.Type || ra.Position != rb.Position || ra.Size != rb.Size {
			t.Errorf("region %s diverged between runs", id)
		}
	}
}

func TestDeriveType(t *testing.T) {
	cfg := DefaultGenConfig()
	tests := []struct {
		elev, moist float64
		want        RegionType
	}{
		{0.1, 0.5, RegionCoastal},
		{0.9, 0.2, RegionMountain},
		{0.6, 0.7, RegionFjord},
		{0.4, 0.7, RegionForest},
		{0.4, 0.2, RegionPlains},
	}
	for _, tt := range tests {
		if got := deriveType(tt.elev, tt.moist, cfg); got != tt.want {
			t.Errorf("deriveType(%v, %v) = %v, want %v", tt.elev, tt.moist, got, tt.want)
		}
	}
}

func TestRegionRaidModifierOverride(t *testing.T) {
	r := &Region{
		ID: "r", Type: RegionForest,
		ResourceModifiers: map[string]float64{"wood": 3.0},
	}
	if got := r.RaidModifier("wood"); got != 3.0 {
		t.Errorf("explicit modifier = %v, want 3.0", got)
	}
	if got := r.RaidModifier("food"); got != 0.8 {
		t.Errorf("type fallback = %v, want forest food 0.8", got)
	}
	if got := r.RaidModifier("silver"); got != 1.0 {
		t.Errorf("unknown resource = %v, want neutral 1.0", got)
	}
}

func TestSpeedModifierLegDaysShape(t *testing.T) {
	// Faster terrain must never yield a slower leg.
	order := []RegionType{RegionMountain, RegionFjord, RegionForest, RegionCoastal, RegionPlains}
	prev := 0.0
	for _, rt := range order {
		mod := rt.SpeedModifier()
		if mod <= prev {
			t.Errorf("%s modifier %v not above %v", TypeName(rt), mod, prev)
		}
		prev = mod
	}
}
