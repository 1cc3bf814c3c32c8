package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) broadcasterdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *broadcasterdomain.Broadcaster) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*broadcasterdomain.Broadcaster, error) {
	var b broadcasterdomain.Broadcaster
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, broadcasterdomain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []snowflake.ID) ([]broadcasterdomain.Broadcaster, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []broadcasterdomain.Broadcaster
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) List(ctx context.Context, filter broadcasterdomain.ListRequest) ([]broadcasterdomain.Broadcaster, error) {
	var items []broadcasterdomain.Broadcaster
	stmt := r.db.WithContext(ctx).Model(&broadcasterdomain.Broadcaster{})

	if status := strings.TrimSpace(filter.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, b *broadcasterdomain.Broadcaster) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE broadcasters
		 SET name = ?, legal_name = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name,
		b.LegalName,
		b.Status,
		b.UpdatedAt,
		b.ID,
	).Error
}
