package counter

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetNextValue(ctx context.Context, counterType string, year int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// GetNextValue hands out the next serial for a counter type within a
// year. The upsert is atomic so concurrent onboarding never observes
// the same serial twice.
func (r *repository) GetNextValue(ctx context.Context, counterType string, year int) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO yearly_counters (counter_type, year, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (counter_type, year) DO UPDATE
		SET last_value = yearly_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, counterType, year).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
