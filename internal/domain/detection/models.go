package detection

import (
	"fmt"
	"time"
)

// ValidationPolicy selects how strictly model output is interpreted.
type ValidationPolicy string

const (
	// PolicyLenient accepts candidates with only a plate and substitutes
	// "unknown" for color/type that cannot be canonicalized.
	PolicyLenient ValidationPolicy = "lenient"
	// PolicyStrict requires all fields, restricts plates to A-Z0-9- and
	// rejects candidates whose color/type has no canonical match.
	PolicyStrict ValidationPolicy = "strict"
	// PolicyTrafficCamera requires all fields like strict but keeps plate
	// characters as the camera overlay printed them.
	PolicyTrafficCamera ValidationPolicy = "traffic_camera"
)

func ParsePolicy(s string) (ValidationPolicy, error) {
	switch ValidationPolicy(s) {
	case PolicyLenient, PolicyStrict, PolicyTrafficCamera:
		return ValidationPolicy(s), nil
	}
	return "", fmt.Errorf("unknown validation policy %q", s)
}

func (p ValidationPolicy) Valid() bool {
	switch p {
	case PolicyLenient, PolicyStrict, PolicyTrafficCamera:
		return true
	}
	return false
}

// Candidate is one vehicle record extracted from raw model text before any
// validation. Every field may be empty.
type Candidate struct {
	PlateText     string   `json:"plate_text,omitempty"`
	ColorText     string   `json:"color_text,omitempty"`
	TypeText      string   `json:"type_text,omitempty"`
	ConfidenceRaw *float64 `json:"confidence_raw,omitempty"`
	TimestampText string   `json:"timestamp_text,omitempty"`
}

// ValidatedDetection carries only canonical data: the plate has passed
// normalization and validation, color and vehicle type are vocabulary values
// (or the lenient "unknown" sentinel), confidence is clamped to [0,100].
type ValidatedDetection struct {
	PlateNumber     string     `json:"plate_number"`
	Color           string     `json:"color"`
	VehicleType     string     `json:"vehicle_type"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// ItemResult is the outcome of interpreting one raw model response. A response
// with zero accepted candidates is Success=false, which is an expected outcome
// and not an error.
type ItemResult struct {
	Success     bool                 `json:"success"`
	Detections  []ValidatedDetection `json:"detections"`
	ParseFailed bool                 `json:"parse_failed,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// BatchResult aggregates a sequence of item results. AverageConfidence is the
// mean over only the detections that carried a confidence value; it is nil
// when none did.
type BatchResult struct {
	TotalItems               int      `json:"total_items"`
	SuccessCount             int      `json:"success_count"`
	TotalDetections          int      `json:"total_detections"`
	AverageDetectionsPerItem float64  `json:"average_detections_per_item"`
	AverageConfidence        *float64 `json:"average_confidence,omitempty"`
	TimestampsExtracted      int      `json:"timestamps_extracted"`
}
