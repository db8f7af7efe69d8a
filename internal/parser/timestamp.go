package parser

import (
	"regexp"
	"strconv"
	"time"
)

// Traffic camera overlays stamp frames as DD/MM/YYYY HH:MM:SS. Day-first
// ordering is what the observed cameras emit; do not generalize to MM/DD
// without re-confirming against real output.
var timestampShapeRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2}):(\d{2})`)

// ExtractTimestamp pulls a camera timestamp out of free-text metadata.
// Returns nil when no timestamp-shaped substring is present. Out-of-range
// components follow time.Date rollover semantics.
func ExtractTimestamp(metadata string) *time.Time {
	groups := timestampShapeRe.FindStringSubmatch(metadata)
	if groups == nil {
		return nil
	}

	parts := make([]int, 6)
	for i := range parts {
		n, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return nil
		}
		parts[i] = n
	}

	day, month, year := parts[0], parts[1], parts[2]
	hour, minute, second := parts[3], parts[4], parts[5]

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return &ts
}
