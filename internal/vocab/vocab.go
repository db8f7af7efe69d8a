package vocab

import "strings"

// Unknown is the lenient-mode substitute for a color or vehicle type that has
// no canonical match.
const Unknown = "unknown"

// Colors is the closed set of accepted vehicle colors.
var Colors = []string{
	"Red", "Blue", "Green", "Yellow", "Black",
	"White", "Gray", "Silver", "Brown", "Orange",
}

// VehicleTypes is the closed set of accepted vehicle body types.
var VehicleTypes = []string{
	"Sedan", "SUV", "Pickup", "Truck", "Bus", "Motorcycle",
}

var colorSynonyms = map[string]string{
	"grey":      "Gray",
	"charcoal":  "Gray",
	"navy":      "Blue",
	"dark blue": "Blue",
	"maroon":    "Red",
	"crimson":   "Red",
	"burgundy":  "Red",
	"lime":      "Green",
	"olive":     "Green",
	"beige":     "Brown",
	"tan":       "Brown",
	"cream":     "White",
	"ivory":     "White",
	"gold":      "Yellow",
}

var typeSynonyms = map[string]string{
	"car":          "Sedan",
	"saloon":       "Sedan",
	"hatchback":    "Sedan",
	"crossover":    "SUV",
	"jeep":         "SUV",
	"pickup truck": "Pickup",
	"pick-up":      "Pickup",
	"lorry":        "Truck",
	"semi":         "Truck",
	"coach":        "Bus",
	"minibus":      "Bus",
	"motorbike":    "Motorcycle",
	"bike":         "Motorcycle",
	"scooter":      "Motorcycle",
}

var (
	colorIndex = buildIndex(Colors)
	typeIndex  = buildIndex(VehicleTypes)
)

func buildIndex(values []string) map[string]string {
	idx := make(map[string]string, len(values))
	for _, v := range values {
		idx[strings.ToLower(v)] = v
	}
	return idx
}

// Color maps free text to a canonical color. Exact case-insensitive vocabulary
// matches win over synonyms.
func Color(raw string) (string, bool) {
	return lookup(raw, colorIndex, colorSynonyms)
}

// VehicleType maps free text to a canonical vehicle type.
func VehicleType(raw string) (string, bool) {
	return lookup(raw, typeIndex, typeSynonyms)
}

// IsColorWord reports whether raw resolves to any canonical color. The
// fallback text extractor uses it to recognize color-bearing lines.
func IsColorWord(raw string) bool {
	_, ok := Color(raw)
	return ok
}

// IsTypeWord reports whether raw resolves to any canonical vehicle type.
func IsTypeWord(raw string) bool {
	_, ok := VehicleType(raw)
	return ok
}

func lookup(raw string, index, synonyms map[string]string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	if canonical, ok := index[key]; ok {
		return canonical, true
	}
	if canonical, ok := synonyms[key]; ok {
		return canonical, true
	}
	return "", false
}
