package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

func newTestBatch() *BatchProcessor {
	return NewBatchProcessor(newTestService(), 0, zerolog.Nop())
}

func TestProcessOrderingAndIsolation(t *testing.T) {
	raws := []string{
		`[{"plate_number": "AA-11", "color": "Red", "type": "Sedan"}]`,
		`this response is completely malformed`,
		`[{"plate_number": "CC-33", "color": "Blue", "type": "Bus"}]`,
	}

	results, summary, err := newTestBatch().Process(context.Background(), raws, detection.PolicyStrict)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if !results[0].Success || results[0].Detections[0].PlateNumber != "AA-11" {
		t.Errorf("result 0 = %+v, want AA-11 accepted", results[0])
	}
	if results[1].Success || len(results[1].Detections) != 0 {
		t.Errorf("result 1 = %+v, want failure with no detections", results[1])
	}
	if !results[2].Success || results[2].Detections[0].PlateNumber != "CC-33" {
		t.Errorf("result 2 = %+v, want CC-33 accepted", results[2])
	}

	if summary.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", summary.TotalItems)
	}
	if summary.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", summary.SuccessCount)
	}
	if summary.TotalDetections != 2 {
		t.Errorf("TotalDetections = %d, want 2", summary.TotalDetections)
	}
}

func TestProcessUnknownPolicy(t *testing.T) {
	_, _, err := newTestBatch().Process(context.Background(), []string{"[]"}, detection.ValidationPolicy("legacy"))
	if err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	results, summary, err := newTestBatch().Process(context.Background(), nil, detection.PolicyLenient)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if summary.TotalItems != 0 || summary.AverageDetectionsPerItem != 0 {
		t.Errorf("summary = %+v, want zeroes", summary)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatchProcessor(newTestService(), time.Millisecond, zerolog.Nop())
	raws := []string{
		`[{"plate_number": "AA-11", "color": "Red", "type": "Sedan"}]`,
		`[{"plate_number": "BB-22", "color": "Blue", "type": "Bus"}]`,
	}

	results, _, err := b.Process(ctx, raws, detection.PolicyStrict)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(results) >= len(raws) {
		t.Errorf("got %d results, want fewer than %d", len(results), len(raws))
	}
}

func TestSummarizeConfidenceOverBearersOnly(t *testing.T) {
	c95, c88 := 95.0, 88.0
	results := []detection.ItemResult{
		{
			Success: true,
			Detections: []detection.ValidatedDetection{
				{PlateNumber: "AA-11", Color: "Red", VehicleType: "Sedan", ConfidenceScore: &c95},
				{PlateNumber: "BB-22", Color: "Blue", VehicleType: "Bus", ConfidenceScore: &c88},
			},
		},
		{
			Success: true,
			Detections: []detection.ValidatedDetection{
				{PlateNumber: "CC-33", Color: "White", VehicleType: "Truck"},
			},
		},
	}

	summary := Summarize(results)
	if summary.AverageConfidence == nil {
		t.Fatal("AverageConfidence = nil, want (95+88)/2")
	}
	if *summary.AverageConfidence != (95.0+88.0)/2 {
		t.Errorf("AverageConfidence = %v, want %v", *summary.AverageConfidence, (95.0+88.0)/2)
	}
	if summary.TotalDetections != 3 {
		t.Errorf("TotalDetections = %d, want 3", summary.TotalDetections)
	}
	if summary.AverageDetectionsPerItem != 1.5 {
		t.Errorf("AverageDetectionsPerItem = %v, want 1.5", summary.AverageDetectionsPerItem)
	}
}

func TestSummarizeNoConfidenceBearers(t *testing.T) {
	ts := time.Date(2025, time.September, 22, 15, 55, 54, 0, time.UTC)
	results := []detection.ItemResult{
		{
			Success: true,
			Detections: []detection.ValidatedDetection{
				{PlateNumber: "AA-11", Color: "Red", VehicleType: "Sedan", Timestamp: &ts},
			},
		},
		{Success: false, Detections: []detection.ValidatedDetection{}},
	}

	summary := Summarize(results)
	if summary.AverageConfidence != nil {
		t.Errorf("AverageConfidence = %v, want nil", *summary.AverageConfidence)
	}
	if summary.TimestampsExtracted != 1 {
		t.Errorf("TimestampsExtracted = %d, want 1", summary.TimestampsExtracted)
	}
	if summary.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", summary.SuccessCount)
	}
}
