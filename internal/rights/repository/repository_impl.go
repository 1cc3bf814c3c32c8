package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/internal/rights/domain"
	"github.com/fieldside/rightsdesk/pkg/db/option"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, re *domain.RightsEvent) error {
	return r.db.WithContext(ctx).Create(re).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.RightsEvent, error) {
	var re domain.RightsEvent
	err := r.db.WithContext(ctx).First(&re, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListRequest) ([]domain.RightsEvent, error) {
	query := r.db.WithContext(ctx).Model(&domain.RightsEvent{})
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.BroadcasterID != "" {
		query = query.Where("broadcaster_id = ?", filter.BroadcasterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"status":     true,
	})).Apply(query)

	var rows []domain.RightsEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListActiveExclusiveForEvents(ctx context.Context, eventIDs []snowflake.ID, excludeBroadcasterID, excludeRightID snowflake.ID) ([]domain.RightsEvent, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Model(&domain.RightsEvent{}).
		Where("event_id IN ?", eventIDs).
		Where("status = ?", domain.StatusActive).
		Where("exclusivity = ?", domain.ExclusivityExclusive)
	if excludeBroadcasterID != 0 {
		query = query.Where("broadcaster_id <> ?", excludeBroadcasterID)
	}
	if excludeRightID != 0 {
		query = query.Where("id <> ?", excludeRightID)
	}

	var rows []domain.RightsEvent
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, re *domain.RightsEvent) error {
	return r.db.WithContext(ctx).Save(re).Error
}
