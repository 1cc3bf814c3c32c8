package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"github.com/fieldside/rightsdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) packagedomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *packagedomain.RightsPackage) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*packagedomain.RightsPackage, error) {
	var p packagedomain.RightsPackage
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, packagedomain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter packagedomain.ListRequest) ([]packagedomain.RightsPackage, error) {
	var items []packagedomain.RightsPackage
	stmt := r.db.WithContext(ctx).Model(&packagedomain.RightsPackage{})

	if v := strings.TrimSpace(filter.BroadcasterID); v != "" {
		stmt = stmt.Where("broadcaster_id = ?", v)
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		stmt = stmt.Where("status = ?", v)
	}
	if v := strings.TrimSpace(filter.ScopeType); v != "" {
		stmt = stmt.Where("scope_type = ?", v)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"start_at":   true,
		"end_at":     true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListActiveAt(ctx context.Context, at time.Time) ([]packagedomain.RightsPackage, error) {
	var items []packagedomain.RightsPackage
	err := r.db.WithContext(ctx).
		Where("status = ?", packagedomain.StatusActive).
		Where("start_at <= ? AND end_at >= ?", at, at).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, p *packagedomain.RightsPackage) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE rights_packages
		 SET name = ?, status = ?, start_at = ?, end_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Status,
		p.StartAt,
		p.EndAt,
		p.UpdatedAt,
		p.ID,
	).Error
}
