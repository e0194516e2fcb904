package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-vehicle-inspector/internal/analyzer"
	"go-vehicle-inspector/internal/repository"
)

// AnalysisRepository implements repository.AnalysisRepository for
// SQLite.
type AnalysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a SQLite-backed analysis repository.
func NewAnalysisRepository(db *DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save stores the record and its plates in one transaction.
func (r *AnalysisRepository) Save(ctx context.Context, record *repository.AnalysisRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO analyses (filename, color, laplacian_var, blurry)
		VALUES (?, ?, ?, ?)
	`, record.Filename, string(record.Color), record.LaplacianVar, record.Blurry)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read analysis id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plates (analysis_id, x, y, width, height, area, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare plate insert: %w", err)
	}
	defer stmt.Close()

	for _, plate := range record.Plates {
		if _, err := stmt.ExecContext(ctx, id, plate.X, plate.Y, plate.Width, plate.Height, plate.Area, plate.Text); err != nil {
			return 0, fmt.Errorf("failed to insert plate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first, with their plates.
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]repository.AnalysisRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, filename, color, laplacian_var, blurry, created_at
		FROM analyses ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []repository.AnalysisRecord
	for rows.Next() {
		var rec repository.AnalysisRecord
		var color string
		if err := rows.Scan(&rec.ID, &rec.Filename, &color, &rec.LaplacianVar, &rec.Blurry, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		rec.Color = analyzer.ColorLabel(color)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	for i := range records {
		plates, err := r.platesFor(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Plates = plates
	}
	return records, nil
}

// ByID returns one record or repository.ErrAnalysisNotFound.
func (r *AnalysisRepository) ByID(ctx context.Context, id int64) (*repository.AnalysisRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var rec repository.AnalysisRecord
	var color string
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, filename, color, laplacian_var, blurry, created_at
		FROM analyses WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Filename, &color, &rec.LaplacianVar, &rec.Blurry, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}
	rec.Color = analyzer.ColorLabel(color)

	plates, err := r.platesFor(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Plates = plates
	return &rec, nil
}

func (r *AnalysisRepository) platesFor(ctx context.Context, analysisID int64) ([]analyzer.PlateRegion, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT x, y, width, height, area, text
		FROM plates WHERE analysis_id = ? ORDER BY id
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plates: %w", err)
	}
	defer rows.Close()

	plates := []analyzer.PlateRegion{}
	for rows.Next() {
		var p analyzer.PlateRegion
		if err := rows.Scan(&p.X, &p.Y, &p.Width, &p.Height, &p.Area, &p.Text); err != nil {
			return nil, fmt.Errorf("failed to scan plate: %w", err)
		}
		plates = append(plates, p)
	}
	return plates, rows.Err()
}
