package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldside/rightsdesk/internal/pricetier/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByTier(ctx context.Context, tier domain.Tier) (*domain.TierConfig, error) {
	var cfg domain.TierConfig
	err := r.db.WithContext(ctx).First(&cfg, "tier = ?", tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) List(ctx context.Context) ([]domain.TierConfig, error) {
	var rows []domain.TierConfig
	err := r.db.WithContext(ctx).
		Order("max_price_cents DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, cfg *domain.TierConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tier"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"min_price_cents", "base_price_cents", "max_price_cents", "updated_at",
			}),
		}).
		Create(cfg).Error
}
