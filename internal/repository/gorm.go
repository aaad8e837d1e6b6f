package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormTimingRepository implements TimingRepository using GORM, dialect
// chosen by NewGormDB at construction time.
type GormTimingRepository struct {
	db *gorm.DB
}

// NewGormTimingRepository creates a new GormTimingRepository.
func NewGormTimingRepository(db *gorm.DB) *GormTimingRepository {
	return &GormTimingRepository{db: db}
}

// SaveRun persists one completed run's aggregated timings and validation
// outcome.
func (r *GormTimingRepository) SaveRun(ctx context.Context, rec *RunRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// GetRunByUUID retrieves a previously saved run by its UUID.
func (r *GormTimingRepository) GetRunByUUID(ctx context.Context, runUUID string) (*RunRecord, error) {
	var rec RunRecord

	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run not found: %s", runUUID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &rec, nil
}

// ListRunsByTopology retrieves the most recent runs for a given process
// count and element count, newest first.
func (r *GormTimingRepository) ListRunsByTopology(ctx context.Context, processes, elements, limit int) ([]*RunRecord, error) {
	var recs []*RunRecord

	err := r.db.WithContext(ctx).
		Where("processes = ? AND elements = ?", processes, elements).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	return recs, nil
}
