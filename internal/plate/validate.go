package plate

import (
	"regexp"
	"strings"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

const (
	minPlateLength = 2
	maxPlateLength = 15
)

// Sentinel words models emit when no plate is visible in the image.
var sentinelWords = map[string]struct{}{
	"NOT":      {},
	"FOUND":    {},
	"NONE":     {},
	"NULL":     {},
	"UNKNOWN":  {},
	"NOTFOUND": {},
}

// exclusionRule identifies text that looks like a plate but is date, time or
// camera-telemetry noise. Kept as one table so the rule set and its tests stay
// in one place.
type exclusionRule struct {
	name       string
	re         *regexp.Regexp
	strictOnly bool
}

var exclusionRules = []exclusionRule{
	{name: "iso_date", re: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)},
	{name: "clock_time", re: regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)},
	{name: "camera_id", re: regexp.MustCompile(`^CAM\d+$`)},
	{name: "telemetry_prefix", re: regexp.MustCompile(`^(VEHICLE|NONVEHICLE|PERSON)`)},
	// Strict mode assumes real plates mix letters and digits; a string of
	// digits and dashes is treated as a timestamp remnant.
	{name: "digits_and_dashes", re: regexp.MustCompile(`^[0-9-]+$`), strictOnly: true},
}

var alphanumericRe = regexp.MustCompile(`[A-Z0-9]`)

// Validate checks a normalized plate string. The returned reason is
// informational only; rejected candidates are simply dropped.
func Validate(normalized string, policy detection.ValidationPolicy) (bool, string) {
	length := len([]rune(normalized))
	if length < minPlateLength || length > maxPlateLength {
		return false, "length out of bounds"
	}
	if !alphanumericRe.MatchString(normalized) {
		return false, "no alphanumeric characters"
	}
	// Normalization turns "NOT FOUND" into "NOT-FOUND"; match sentinels on
	// the dash-stripped form as well.
	if _, ok := sentinelWords[normalized]; ok {
		return false, "sentinel word"
	}
	if _, ok := sentinelWords[strings.ReplaceAll(normalized, "-", "")]; ok {
		return false, "sentinel word"
	}
	for _, rule := range exclusionRules {
		if rule.strictOnly && policy != detection.PolicyStrict {
			continue
		}
		if rule.re.MatchString(normalized) {
			return false, "excluded: " + rule.name
		}
	}
	return true, ""
}
