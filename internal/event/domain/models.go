package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Event is a catalog entry for a broadcastable sports event. Rights
// grants and pricing rows hang off its ID; conflict payloads and
// suggestion queries read its sport/league/date.
type Event struct {
	ID       snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title    string        `gorm:"type:text;not null" json:"title"`
	SportID  snowflake.ID  `gorm:"not null;index" json:"sportId"`
	LeagueID *snowflake.ID `gorm:"index" json:"leagueId,omitempty"`
	Season   *string       `gorm:"type:text" json:"season,omitempty"`
	StartAt  time.Time     `gorm:"not null;index" json:"startAt"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

type Repository interface {
	Create(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id snowflake.ID) (*Event, error)
	FindByIDs(ctx context.Context, ids []snowflake.ID) ([]Event, error)
	List(ctx context.Context, filter ListRequest) ([]Event, error)
	Update(ctx context.Context, e *Event) error
}

type ListRequest struct {
	SportID  string `form:"sportId"`
	LeagueID string `form:"leagueId"`
	SortBy   string `form:"sort_by"`
	OrderBy  string `form:"order_by"`
}

type CreateRequest struct {
	Title    string    `json:"title"`
	SportID  string    `json:"sportId"`
	LeagueID *string   `json:"leagueId"`
	Season   *string   `json:"season"`
	StartAt  time.Time `json:"startAt"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, req ListRequest) ([]Event, error)
}

var (
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidSport   = errors.New("invalid_sport")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidStartAt = errors.New("invalid_start_at")
	ErrNotFound       = errors.New("event_not_found")
)
