package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	"github.com/fieldside/rightsdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) eventdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *eventdomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*eventdomain.Event, error) {
	var e eventdomain.Event
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventdomain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []snowflake.ID) ([]eventdomain.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []eventdomain.Event
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) List(ctx context.Context, filter eventdomain.ListRequest) ([]eventdomain.Event, error) {
	var items []eventdomain.Event
	stmt := r.db.WithContext(ctx).Model(&eventdomain.Event{})

	if sportID := strings.TrimSpace(filter.SportID); sportID != "" {
		stmt = stmt.Where("sport_id = ?", sportID)
	}
	if leagueID := strings.TrimSpace(filter.LeagueID); leagueID != "" {
		stmt = stmt.Where("league_id = ?", leagueID)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"start_at":   true,
		"title":      true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, e *eventdomain.Event) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE events
		 SET title = ?, sport_id = ?, league_id = ?, season = ?, start_at = ?, updated_at = ?
		 WHERE id = ?`,
		e.Title,
		e.SportID,
		e.LeagueID,
		e.Season,
		e.StartAt,
		e.UpdatedAt,
		e.ID,
	).Error
}
