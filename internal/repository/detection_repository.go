package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

type DetectionRepository struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

func (VehicleDetection) TableName() string {
	return "vehicle_detections"
}

func (RecognitionBatch) TableName() string {
	return "recognition_batches"
}

type VehicleDetection struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	BatchRunID  *uuid.UUID `gorm:"type:uuid"`
	PlateNumber string     `gorm:"not null"`
	Color       string     `gorm:"not null"`
	VehicleType string     `gorm:"not null"`
	Confidence  *float64
	DetectedAt  *time.Time
	Policy      string         `gorm:"not null"`
	Source      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
}

type RecognitionBatch struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Policy              string    `gorm:"not null"`
	TotalItems          int       `gorm:"not null"`
	SuccessCount        int       `gorm:"not null"`
	TotalDetections     int       `gorm:"not null"`
	AverageDetections   float64   `gorm:"column:average_detections"`
	AverageConfidence   *float64
	TimestampsExtracted int
	CreatedAt           time.Time
}

// SaveDetections persists validated detections together with the raw model
// response they were interpreted from. batchRunID is nil for single-item
// calls.
func (r *DetectionRepository) SaveDetections(
	ctx context.Context,
	policy detection.ValidationPolicy,
	batchRunID *uuid.UUID,
	detections []detection.ValidatedDetection,
	rawResponse string,
) error {
	if len(detections) == 0 {
		return nil
	}

	var source datatypes.JSON
	if rawResponse != "" {
		raw, err := json.Marshal(map[string]string{"raw_response": rawResponse})
		if err != nil {
			return fmt.Errorf("marshal detection source: %w", err)
		}
		source = datatypes.JSON(raw)
	}

	rows := make([]VehicleDetection, 0, len(detections))
	for _, d := range detections {
		rows = append(rows, VehicleDetection{
			ID:          uuid.New(),
			BatchRunID:  batchRunID,
			PlateNumber: d.PlateNumber,
			Color:       d.Color,
			VehicleType: d.VehicleType,
			Confidence:  d.ConfidenceScore,
			DetectedAt:  d.Timestamp,
			Policy:      string(policy),
			Source:      source,
			CreatedAt:   time.Now(),
		})
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save detections: %w", err)
	}
	return nil
}

// CreateBatchRun records the aggregate statistics of one batch run.
func (r *DetectionRepository) CreateBatchRun(ctx context.Context, policy detection.ValidationPolicy, summary detection.BatchResult) (uuid.UUID, error) {
	row := RecognitionBatch{
		ID:                  uuid.New(),
		Policy:              string(policy),
		TotalItems:          summary.TotalItems,
		SuccessCount:        summary.SuccessCount,
		TotalDetections:     summary.TotalDetections,
		AverageDetections:   summary.AverageDetectionsPerItem,
		AverageConfidence:   summary.AverageConfidence,
		TimestampsExtracted: summary.TimestampsExtracted,
		CreatedAt:           time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create batch run: %w", err)
	}
	return row.ID, nil
}

// FindDetections lists stored detections newest first, optionally filtered by
// plate and detection-time window.
func (r *DetectionRepository) FindDetections(ctx context.Context, plateNumber *string, from, to *time.Time, limit, offset int) ([]VehicleDetection, error) {
	query := r.db.WithContext(ctx).Model(&VehicleDetection{})

	if plateNumber != nil {
		query = query.Where("plate_number = ?", *plateNumber)
	}
	if from != nil {
		query = query.Where("detected_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("detected_at <= ?", *to)
	}

	query = query.Order("created_at DESC")

	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []VehicleDetection
	err := query.Find(&rows).Error
	return rows, err
}

// GetBatchRun loads one batch run by ID.
func (r *DetectionRepository) GetBatchRun(ctx context.Context, id uuid.UUID) (*RecognitionBatch, error) {
	var row RecognitionBatch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
