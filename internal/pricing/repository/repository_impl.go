package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/internal/pricing/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByEventID(ctx context.Context, eventID snowflake.ID) (*domain.EventPricing, error) {
	var row domain.EventPricing
	err := r.db.WithContext(ctx).First(&row, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context) ([]domain.EventPricing, error) {
	var rows []domain.EventPricing
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListHistory(ctx context.Context, limit int) ([]domain.PricingHistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.PricingHistoryEntry{}).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []domain.PricingHistoryEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListHistoryForEvent(ctx context.Context, eventPricingID snowflake.ID, limit int) ([]domain.PricingHistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.PricingHistoryEntry{}).
		Where("event_pricing_id = ?", eventPricingID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []domain.PricingHistoryEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
