package repository

import (
	"context"
	"strings"

	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) territorydomain.Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, region string) ([]territorydomain.Territory, error) {
	var items []territorydomain.Territory
	stmt := r.db.WithContext(ctx).Model(&territorydomain.Territory{})
	if region = strings.TrimSpace(region); region != "" {
		stmt = stmt.Where("region = ?", region)
	}
	if err := stmt.Order("code ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByCodes(ctx context.Context, codes []string) ([]territorydomain.Territory, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var items []territorydomain.Territory
	err := r.db.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Regions(ctx context.Context) ([]string, error) {
	var regions []string
	err := r.db.WithContext(ctx).
		Model(&territorydomain.Territory{}).
		Distinct("region").
		Order("region ASC").
		Pluck("region", &regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}
