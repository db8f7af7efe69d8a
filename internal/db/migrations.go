package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

	// Validated detections produced by the interpretation pipeline. The
	// source candidate is kept as JSONB for auditing what the model said.
	`CREATE TABLE IF NOT EXISTS vehicle_detections (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		batch_run_id    UUID,
		plate_number    TEXT NOT NULL,
		color           TEXT NOT NULL,
		vehicle_type    TEXT NOT NULL,
		confidence      NUMERIC(5,2),
		detected_at     TIMESTAMPTZ,
		policy          TEXT NOT NULL,
		source          JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_detections_plate_number ON vehicle_detections(plate_number);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_detections_detected_at ON vehicle_detections(detected_at);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_detections_batch_run_id ON vehicle_detections(batch_run_id) WHERE batch_run_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_detections_plate_time ON vehicle_detections(plate_number, detected_at DESC);`,

	// One row per batch orchestration run with its aggregate statistics.
	`CREATE TABLE IF NOT EXISTS recognition_batches (
		id                      UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		policy                  TEXT NOT NULL,
		total_items             INT NOT NULL,
		success_count           INT NOT NULL,
		total_detections        INT NOT NULL,
		average_detections      NUMERIC(8,3) NOT NULL DEFAULT 0,
		average_confidence      NUMERIC(5,2),
		timestamps_extracted    INT NOT NULL DEFAULT 0,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_recognition_batches_created_at ON recognition_batches(created_at);`,
}

func runMigrations(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
