package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
	"github.com/basharagb/images-Plate-Recognitions/internal/vocab"
)

// Extract pulls detection candidates out of a raw model response. It never
// returns an error: when the structured parse is impossible it reports
// parseFailed=true and falls back to line-oriented keyword extraction, so one
// malformed response degrades instead of discarding the whole image.
func Extract(raw string) (candidates []detection.Candidate, parseFailed bool) {
	payload := isolatePayload(stripCodeFences(raw))

	if payload != "" {
		if parsed, ok := parseStructured(payload); ok {
			return parsed, false
		}
	}

	return extractFromLines(raw), true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// isolatePayload cuts the substring from the first opening bracket to the
// matching last closing bracket, discarding surrounding prose.
func isolatePayload(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start, closing := objStart, "}"
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start, closing = arrStart, "]"
	}
	if start < 0 {
		return ""
	}

	end := strings.LastIndex(s, closing)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func parseStructured(payload string) ([]detection.Candidate, bool) {
	var list []map[string]any
	if err := json.Unmarshal([]byte(payload), &list); err == nil {
		return candidatesFromMaps(list), true
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, false
	}

	// A single object either wraps the vehicle list or is one vehicle itself.
	for _, key := range []string{"vehicles", "detections", "results"} {
		nested, ok := obj[key].([]any)
		if !ok {
			continue
		}
		maps := make([]map[string]any, 0, len(nested))
		for _, item := range nested {
			if m, ok := item.(map[string]any); ok {
				maps = append(maps, m)
			}
		}
		return candidatesFromMaps(maps), true
	}

	return candidatesFromMaps([]map[string]any{obj}), true
}

func candidatesFromMaps(maps []map[string]any) []detection.Candidate {
	candidates := make([]detection.Candidate, 0, len(maps))
	for _, m := range maps {
		c := detection.Candidate{
			PlateText:     firstString(m, "plate_number", "plateNumber", "plate", "license_plate", "licensePlate"),
			ColorText:     firstString(m, "color", "vehicle_color", "vehicleColor"),
			TypeText:      firstString(m, "type", "vehicle_type", "vehicleType"),
			ConfidenceRaw: firstNumber(m, "confidence_score", "confidenceScore", "confidence"),
			TimestampText: firstString(m, "timestamp", "camera_metadata", "cameraMetadata"),
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstNumber(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return &n
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

var (
	plateValueRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \x{2022}\x{00B7}.:\-]{0,19}$`)
	plateTokenRe = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9\x{2022}\x{00B7}.:\-]+`)
	numberRe     = regexp.MustCompile(`\d+(\.\d+)?`)
)

// extractFromLines is the lossy best-effort fallback: it scans for
// keyword-adjacent values and assembles candidates positionally. A "plate"
// line opens a new candidate; color, type, confidence and timestamp lines
// attach to the most recent one.
func extractFromLines(raw string) []detection.Candidate {
	var candidates []detection.Candidate

	current := func() *detection.Candidate {
		if len(candidates) == 0 {
			candidates = append(candidates, detection.Candidate{})
		}
		return &candidates[len(candidates)-1]
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "plate"):
			if token := plateValueFromLine(line); token != "" {
				candidates = append(candidates, detection.Candidate{PlateText: token})
			}
		case strings.Contains(lower, "color"):
			if word := recognizedWord(line, vocab.IsColorWord); word != "" {
				current().ColorText = word
			}
		case strings.Contains(lower, "type"):
			if word := recognizedWord(line, vocab.IsTypeWord); word != "" {
				current().TypeText = word
			}
		case strings.Contains(lower, "confidence"):
			if match := numberRe.FindString(line); match != "" {
				if f, err := strconv.ParseFloat(match, 64); err == nil {
					current().ConfidenceRaw = &f
				}
			}
		case timestampShapeRe.MatchString(line):
			current().TimestampText = line
		}
	}

	// Keyword lines that never produced a value leave an empty shell behind.
	filtered := candidates[:0]
	for _, c := range candidates {
		if c != (detection.Candidate{}) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// plateValueFromLine requires a digit in the extracted value; otherwise a
// prose line like "plate not visible" would be swallowed whole as a plate.
func plateValueFromLine(line string) string {
	value := line
	if idx := strings.Index(line, ":"); idx >= 0 && idx < len(line)-1 {
		value = line[idx+1:]
		if v := strings.Trim(strings.TrimSpace(value), `"',`); plateValueRe.MatchString(v) && containsDigit(v) {
			return v
		}
	}
	for _, token := range plateTokenRe.FindAllString(value, -1) {
		if !containsDigit(token) {
			continue
		}
		return token
	}
	return ""
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func recognizedWord(line string, recognize func(string) bool) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		if value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"',`); recognize(value) {
			return value
		}
	}
	for _, word := range strings.Fields(line) {
		word = strings.Trim(word, `"',.;:`)
		if recognize(word) {
			return word
		}
	}
	return ""
}
