package social

// FactionKind categorizes how readily a faction takes the field.
type FactionKind uint8

const (
	FactionNorse    FactionKind = iota // Raider culture — eager to respond
	FactionAnglo                       // Settled kingdoms — measured response
	FactionFrankish                    // Continental powers — slow but heavy
)

// Faction is an AI-controlled power holding settlements and territory.
type Faction struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Kind FactionKind `json:"kind"`

	// Hard cap on simultaneously fielded armies.
	MaxActiveArmies int `json:"max_active_armies"`
}

// ResponseModifier scales a faction's chance of mobilizing against a
// detected threat.
func (k FactionKind) ResponseModifier() float64 {
	switch k {
	case FactionNorse:
		return 1.1
	case FactionAnglo:
		return 1.0
	case FactionFrankish:
		return 0.85
	default:
		return 1.0
	}
}

// KindName returns a human-readable name for a faction kind.
func KindName(k FactionKind) string {
	switch k {
	case FactionNorse:
		return "Norse"
	case FactionAnglo:
		return "Anglo"
	case FactionFrankish:
		return "Frankish"
	default:
		return "Unknown"
	}
}

// ParseFactionKind maps a config string to a FactionKind.
func ParseFactionKind(s string) (FactionKind, bool) {
	switch s {
	case "norse":
		return FactionNorse, true
	case "anglo":
		return FactionAnglo, true
	case "frankish":
		return FactionFrankish, true
	default:
		return FactionAnglo, false
	}
}
