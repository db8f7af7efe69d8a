package service

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

func newTestService() *DetectionService {
	return NewDetectionService(zerolog.Nop())
}

func TestInterpretUnknownPolicy(t *testing.T) {
	svc := newTestService()
	_, err := svc.Interpret("[]", detection.ValidationPolicy("enhanced"))
	if err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestInterpretAcceptsValidCandidate(t *testing.T) {
	svc := newTestService()
	raw := `[{"plate_number": "AB 123", "color": "grey", "type": "lorry", "confidence_score": 95}]`

	result, err := svc.Interpret(raw, detection.PolicyStrict)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if len(result.Detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(result.Detections))
	}

	d := result.Detections[0]
	if d.PlateNumber != "AB-123" {
		t.Errorf("plate = %q, want %q", d.PlateNumber, "AB-123")
	}
	if d.Color != "Gray" {
		t.Errorf("color = %q, want %q", d.Color, "Gray")
	}
	if d.VehicleType != "Truck" {
		t.Errorf("type = %q, want %q", d.VehicleType, "Truck")
	}
	if d.ConfidenceScore == nil || *d.ConfidenceScore != 95 {
		t.Errorf("confidence = %v, want 95", d.ConfidenceScore)
	}
}

func TestInterpretPolicyDivergence(t *testing.T) {
	// "turquoise" has no canonical match: lenient substitutes "unknown",
	// strict and traffic_camera reject the candidate.
	raw := `[{"plate_number": "AB-123", "color": "turquoise", "type": "car"}]`
	svc := newTestService()

	lenient, err := svc.Interpret(raw, detection.PolicyLenient)
	if err != nil {
		t.Fatalf("Interpret(lenient) error = %v", err)
	}
	if !lenient.Success || len(lenient.Detections) != 1 {
		t.Fatalf("lenient result = %+v, want one detection", lenient)
	}
	if lenient.Detections[0].Color != "unknown" {
		t.Errorf("lenient color = %q, want %q", lenient.Detections[0].Color, "unknown")
	}
	if lenient.Detections[0].VehicleType != "Sedan" {
		t.Errorf("lenient type = %q, want %q", lenient.Detections[0].VehicleType, "Sedan")
	}

	for _, policy := range []detection.ValidationPolicy{detection.PolicyStrict, detection.PolicyTrafficCamera} {
		result, err := svc.Interpret(raw, policy)
		if err != nil {
			t.Fatalf("Interpret(%s) error = %v", policy, err)
		}
		if result.Success || len(result.Detections) != 0 {
			t.Errorf("%s result = %+v, want rejection", policy, result)
		}
	}
}

func TestInterpretMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		policy  detection.ValidationPolicy
		success bool
	}{
		{
			name:    "lenient requires only plate",
			raw:     `[{"plate_number": "AB-123"}]`,
			policy:  detection.PolicyLenient,
			success: true,
		},
		{
			name:    "strict requires color and type",
			raw:     `[{"plate_number": "AB-123"}]`,
			policy:  detection.PolicyStrict,
			success: false,
		},
		{
			name:    "traffic camera requires color and type",
			raw:     `[{"plate_number": "AB-123", "color": "Blue"}]`,
			policy:  detection.PolicyTrafficCamera,
			success: false,
		},
		{
			name:    "missing plate rejected everywhere",
			raw:     `[{"color": "Blue", "type": "Sedan"}]`,
			policy:  detection.PolicyLenient,
			success: false,
		},
	}

	svc := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Interpret(tt.raw, tt.policy)
			if err != nil {
				t.Fatalf("Interpret() error = %v", err)
			}
			if result.Success != tt.success {
				t.Errorf("success = %v, want %v (%+v)", result.Success, tt.success, result)
			}
		})
	}
}

func TestInterpretRejectsExcludedPlates(t *testing.T) {
	raw := `[
		{"plate_number": "2023-12-25", "color": "Blue", "type": "Sedan"},
		{"plate_number": "CAM001", "color": "Blue", "type": "Sedan"},
		{"plate_number": "NOT FOUND", "color": "Blue", "type": "Sedan"}
	]`

	svc := newTestService()
	result, err := svc.Interpret(raw, detection.PolicyTrafficCamera)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if result.Success {
		t.Errorf("expected all candidates rejected, got %+v", result.Detections)
	}
}

func TestInterpretClampsConfidence(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{
			name:     "above range",
			raw:      `[{"plate_number": "AB-123", "color": "Blue", "type": "Sedan", "confidence_score": 150}]`,
			expected: 100,
		},
		{
			name:     "below range",
			raw:      `[{"plate_number": "AB-123", "color": "Blue", "type": "Sedan", "confidence_score": -5}]`,
			expected: 0,
		},
		{
			name:     "in range untouched",
			raw:      `[{"plate_number": "AB-123", "color": "Blue", "type": "Sedan", "confidence_score": 87.5}]`,
			expected: 87.5,
		},
	}

	svc := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Interpret(tt.raw, detection.PolicyStrict)
			if err != nil {
				t.Fatalf("Interpret() error = %v", err)
			}
			if len(result.Detections) != 1 {
				t.Fatalf("got %d detections, want 1", len(result.Detections))
			}
			score := result.Detections[0].ConfidenceScore
			if score == nil || *score != tt.expected {
				t.Errorf("confidence = %v, want %v", score, tt.expected)
			}
		})
	}
}

func TestInterpretAttachesTimestamp(t *testing.T) {
	raw := `[{"plate_number": "AB-123", "color": "Blue", "type": "Sedan",
		"camera_metadata": "Vehicle:1576 NonVehicle:0 Person:0 22/09/2025 15:55:54"}]`

	svc := newTestService()
	result, err := svc.Interpret(raw, detection.PolicyTrafficCamera)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if len(result.Detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(result.Detections))
	}

	ts := result.Detections[0].Timestamp
	if ts == nil {
		t.Fatal("timestamp not attached")
	}
	if ts.Year() != 2025 || ts.Month().String() != "September" || ts.Day() != 22 {
		t.Errorf("timestamp date = %v, want 22 September 2025", ts)
	}
	if ts.Hour() != 15 || ts.Minute() != 55 || ts.Second() != 54 {
		t.Errorf("timestamp time = %v, want 15:55:54", ts)
	}
}

func TestInterpretEmptyResultIsNotAnError(t *testing.T) {
	svc := newTestService()
	result, err := svc.Interpret("complete nonsense with no data", detection.PolicyLenient)
	if err != nil {
		t.Fatalf("Interpret() error = %v, want nil", err)
	}
	if result.Success {
		t.Error("expected Success=false for empty result")
	}
	if len(result.Detections) != 0 {
		t.Errorf("got %d detections, want 0", len(result.Detections))
	}
}
