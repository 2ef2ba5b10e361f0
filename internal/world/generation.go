// Procedural map generation using layered simplex noise.
// Samples elevation and moisture at candidate sites, then derives a
// region type for each. Used when a scenario file lists no regions.
package world

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Regions     int     // Number of regions to place
	Seed        int64   // Random seed (0 = random)
	Spread      float64 // Map extent in map units
	CoastLevel  float64 // Elevation below which regions become coastal
	MountainLvl float64 // Elevation above which regions become mountain
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Regions:     24,
		Seed:        0,
		Spread:      100,
		CoastLevel:  0.30,
		MountainLvl: 0.72,
	}
}

// Generate creates a campaign map with procedurally placed regions.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 2))

	m := NewMap()

	for i := 0; i < cfg.Regions; i++ {
		pos := Position{
			X: rng.Float64() * cfg.Spread,
			Y: rng.Float64() * cfg.Spread,
		}

		elev := octaveNoise(elevNoise, pos.X, pos.Y, 4, 0.05, 0.5)
		moist := octaveNoise(moistNoise, pos.X, pos.Y, 3, 0.04, 0.5)

		// Pull elevation down near the map edge so the rim reads as coastline.
		cx := pos.X - cfg.Spread/2
		cy := pos.Y - cfg.Spread/2
		edge := math.Sqrt(cx*cx+cy*cy) / (cfg.Spread / 2)
		elev *= 1.0 - math.Pow(clampUnit(edge), 3)

		r := &Region{
			ID:       fmt.Sprintf("region_%d", i+1),
			Name:     regionName(rng, deriveType(elev, moist, cfg)),
			Type:     deriveType(elev, moist, cfg),
			Position: pos,
			Size:     8 + rng.Float64()*8,
			Landmass: "mainland",
		}
		m.Set(r)
	}

	return m
}

// deriveType determines a region type from elevation and moisture.
func deriveType(elev, moist float64, cfg GenConfig) RegionType {
	switch {
	case elev < cfg.CoastLevel:
		return RegionCoastal
	case elev > cfg.MountainLvl:
		return RegionMountain
	case elev > 0.55 && moist > 0.5:
		return RegionFjord
	case moist > 0.5:
		return RegionForest
	default:
		return RegionPlains
	}
}

var regionNameRoots = map[RegionType][]string{
	RegionPlains:   {"Heathmoor", "Grenmark", "Osfield", "Wealdham Vale"},
	RegionCoastal:  {"Saltstrand", "Hvitsand", "Gullwick Shore", "Skerry Coast"},
	RegionForest:   {"Myrkwood", "Eldenholt", "Thornwald", "Ashdown Forest"},
	RegionFjord:    {"Ravenfjord", "Isenfjord", "Stormcleft", "Greyfjord"},
	RegionMountain: {"Jotun Heights", "Ironfell", "Hrimpeak", "Stonegard"},
}

func regionName(rng *rand.Rand, t RegionType) string {
	roots := regionNameRoots[t]
	return roots[rng.Intn(len(roots))]
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TypeCounts returns a summary of region type distribution.
func TypeCounts(m *Map) map[RegionType]int {
	counts := make(map[RegionType]int)
	for _, r := range m.Regions {
		counts[r.Type]++
	}
	return counts
}
