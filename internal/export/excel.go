package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/basharagb/images-Plate-Recognitions/internal/repository"
)

const sheetName = "Detections"

var headers = []string{
	"Plate Number", "Color", "Vehicle Type", "Confidence",
	"Detected At", "Policy", "Created At",
}

// DetectionsWorkbook builds an xlsx workbook with one row per stored
// detection. The caller owns closing the returned file.
func DetectionsWorkbook(rows []repository.VehicleDetection) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.PlateNumber,
			row.Color,
			row.VehicleType,
			optionalFloat(row.Confidence),
			optionalTime(row.DetectedAt),
			row.Policy,
			row.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalTime(v *time.Time) interface{} {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}
