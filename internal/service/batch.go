package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

// BatchProcessor runs the interpretation pipeline over a sequence of raw
// responses. Items are processed strictly in order with a pacing delay between
// them so upstream model rate limits are not overrun; the delay is
// configuration, zero in tests.
type BatchProcessor struct {
	svc   *DetectionService
	delay time.Duration
	log   zerolog.Logger
}

func NewBatchProcessor(svc *DetectionService, delay time.Duration, log zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{
		svc:   svc,
		delay: delay,
		log:   log,
	}
}

// Process interprets every raw response and returns per-item results in input
// order, 1:1, plus aggregate statistics. One bad item never aborts the batch.
// Cancelling the context stops the batch between items; results collected so
// far are returned along with ctx.Err().
func (b *BatchProcessor) Process(ctx context.Context, raws []string, policy detection.ValidationPolicy) ([]detection.ItemResult, detection.BatchResult, error) {
	if !policy.Valid() {
		return nil, detection.BatchResult{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	results := make([]detection.ItemResult, 0, len(raws))
	for i, raw := range raws {
		if i > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				return results, Summarize(results), ctx.Err()
			case <-time.After(b.delay):
			}
		} else if err := ctx.Err(); err != nil {
			return results, Summarize(results), err
		}

		result := b.processOne(raw, policy)
		results = append(results, result)

		b.log.Debug().
			Int("item", i).
			Bool("success", result.Success).
			Int("detections", len(result.Detections)).
			Msg("batch item processed")
	}

	summary := Summarize(results)
	b.log.Info().
		Int("total_items", summary.TotalItems).
		Int("success_count", summary.SuccessCount).
		Int("total_detections", summary.TotalDetections).
		Msg("batch completed")

	return results, summary, nil
}

// processOne shields the batch from a panicking item: the panic is captured
// into a failed-item result instead of unwinding the whole run.
func (b *BatchProcessor) processOne(raw string, policy detection.ValidationPolicy) (result detection.ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("recovered panic while processing batch item")
			result = detection.ItemResult{
				Success:    false,
				Detections: []detection.ValidatedDetection{},
				Error:      fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	result, err := b.svc.Interpret(raw, policy)
	if err != nil {
		return detection.ItemResult{
			Success:    false,
			Detections: []detection.ValidatedDetection{},
			Error:      err.Error(),
		}
	}
	return result
}

// Summarize folds per-item results into batch statistics. Average confidence
// is computed over only the detections that carried a confidence value.
func Summarize(results []detection.ItemResult) detection.BatchResult {
	summary := detection.BatchResult{TotalItems: len(results)}

	var confidenceSum float64
	var confidenceCount int
	for _, r := range results {
		if r.Success {
			summary.SuccessCount++
		}
		summary.TotalDetections += len(r.Detections)
		for _, d := range r.Detections {
			if d.ConfidenceScore != nil {
				confidenceSum += *d.ConfidenceScore
				confidenceCount++
			}
			if d.Timestamp != nil {
				summary.TimestampsExtracted++
			}
		}
	}

	if summary.TotalItems > 0 {
		summary.AverageDetectionsPerItem = float64(summary.TotalDetections) / float64(summary.TotalItems)
	}
	if confidenceCount > 0 {
		avg := confidenceSum / float64(confidenceCount)
		summary.AverageConfidence = &avg
	}

	return summary
}
