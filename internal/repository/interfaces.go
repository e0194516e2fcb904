package repository

import (
	"context"
	"time"

	"go-vehicle-inspector/internal/analyzer"
)

// AnalysisRecord is one stored analysis outcome.
type AnalysisRecord struct {
	ID           int64                  `json:"id"`
	Filename     string                 `json:"filename"`
	Color        analyzer.ColorLabel    `json:"color"`
	LaplacianVar float64                `json:"laplacian_variance"`
	Blurry       bool                   `json:"blurry"`
	Plates       []analyzer.PlateRegion `json:"number_plates"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AnalysisRepository persists analysis history across requests. The
// analyzer itself stays stateless; history exists purely for review.
type AnalysisRepository interface {
	// Save stores a record with its plates and returns the new ID.
	Save(ctx context.Context, record *AnalysisRecord) (int64, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]AnalysisRecord, error)

	// ByID returns one record or ErrAnalysisNotFound.
	ByID(ctx context.Context, id int64) (*AnalysisRecord, error)
}
