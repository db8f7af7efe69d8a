package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
	"github.com/basharagb/images-Plate-Recognitions/internal/parser"
	"github.com/basharagb/images-Plate-Recognitions/internal/plate"
	"github.com/basharagb/images-Plate-Recognitions/internal/vocab"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownPolicy = errors.New("unknown validation policy")
)

// DetectionService turns one raw model response into validated detections.
// The pipeline is pure and stateless; it is safe to call concurrently.
type DetectionService struct {
	log zerolog.Logger
}

func NewDetectionService(log zerolog.Logger) *DetectionService {
	return &DetectionService{log: log}
}

// Interpret runs the full candidate pipeline over one raw response. Malformed
// input never produces an error; zero accepted candidates is reported as
// Success=false. The only error case is an unrecognized policy, which is a
// caller bug.
func (s *DetectionService) Interpret(raw string, policy detection.ValidationPolicy) (detection.ItemResult, error) {
	if !policy.Valid() {
		return detection.ItemResult{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	candidates, parseFailed := parser.Extract(raw)
	if parseFailed {
		s.log.Debug().
			Int("fallback_candidates", len(candidates)).
			Msg("structured parse failed, used line extraction")
	}

	detections := make([]detection.ValidatedDetection, 0, len(candidates))
	for _, candidate := range candidates {
		validated, ok, reason := s.validateCandidate(candidate, policy)
		if !ok {
			s.log.Debug().
				Str("plate_text", candidate.PlateText).
				Str("policy", string(policy)).
				Str("reason", reason).
				Msg("candidate rejected")
			continue
		}
		detections = append(detections, validated)
	}

	return detection.ItemResult{
		Success:     len(detections) > 0,
		Detections:  detections,
		ParseFailed: parseFailed,
	}, nil
}

func (s *DetectionService) validateCandidate(c detection.Candidate, policy detection.ValidationPolicy) (detection.ValidatedDetection, bool, string) {
	if c.PlateText == "" {
		return detection.ValidatedDetection{}, false, "missing plate"
	}
	if policy != detection.PolicyLenient && (c.ColorText == "" || c.TypeText == "") {
		return detection.ValidatedDetection{}, false, "missing color or type"
	}

	normalized := plate.Normalize(c.PlateText, policy)
	if valid, reason := plate.Validate(normalized, policy); !valid {
		return detection.ValidatedDetection{}, false, reason
	}

	color, ok := vocab.Color(c.ColorText)
	if !ok {
		if policy != detection.PolicyLenient {
			return detection.ValidatedDetection{}, false, "color has no canonical match"
		}
		color = vocab.Unknown
	}

	vehicleType, ok := vocab.VehicleType(c.TypeText)
	if !ok {
		if policy != detection.PolicyLenient {
			return detection.ValidatedDetection{}, false, "type has no canonical match"
		}
		vehicleType = vocab.Unknown
	}

	validated := detection.ValidatedDetection{
		PlateNumber: normalized,
		Color:       color,
		VehicleType: vehicleType,
	}
	if c.ConfidenceRaw != nil {
		score := clamp(*c.ConfidenceRaw, 0, 100)
		validated.ConfidenceScore = &score
	}
	if c.TimestampText != "" {
		validated.Timestamp = parser.ExtractTimestamp(c.TimestampText)
	}

	return validated, true, ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
