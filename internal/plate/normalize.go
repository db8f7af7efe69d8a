package plate

import (
	"regexp"
	"strings"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

var (
	// Dot-like separators and dashes the camera overlays and models emit in
	// place of a plain dash: bullet, middle dot, period, en dash, em dash.
	separatorRe = regexp.MustCompile(`[\x{2022}\x{00B7}.\x{2013}\x{2014}]+|\s+`)
	dashRunRe   = regexp.MustCompile(`-{2,}`)
	strictSetRe = regexp.MustCompile(`[^A-Z0-9-]`)
)

// Normalize rewrites raw plate text into its canonical dash-separated form.
// Idempotent: normalizing an already-normalized plate yields the same string.
func Normalize(raw string, policy detection.ValidationPolicy) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = separatorRe.ReplaceAllString(normalized, "-")
	if policy == detection.PolicyStrict {
		normalized = strictSetRe.ReplaceAllString(normalized, "")
	}
	normalized = dashRunRe.ReplaceAllString(normalized, "-")
	normalized = strings.Trim(normalized, "-")
	return normalized
}
