package social

// Resource enumerates the stockpiled goods a war-band can carry home.
type Resource string

const (
	ResourceFood   Resource = "food"
	ResourceWood   Resource = "wood"
	ResourceStone  Resource = "stone"
	ResourceMetal  Resource = "metal"
	ResourceSilver Resource = "silver"
	ResourceGold   Resource = "gold"
)

// RaidableResources are the kinds a raiding party can strip from open
// country. Silver and gold only come from sacked settlements.
var RaidableResources = []Resource{ResourceFood, ResourceWood, ResourceMetal}

// TotalLoot sums a loot map into a single carried-weight figure.
func TotalLoot(loot map[Resource]float64) float64 {
	total := 0.0
	for _, amt := range loot {
		total += amt
	}
	return total
}
