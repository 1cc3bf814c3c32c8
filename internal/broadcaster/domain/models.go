package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BroadcasterStatus is the lifecycle state of a broadcaster account.
// Status transitions are independent of rights: suspending a broadcaster
// keeps its existing grants in the store, it only stops new suggestions.
type BroadcasterStatus string

const (
	StatusPending   BroadcasterStatus = "pending"
	StatusActive    BroadcasterStatus = "active"
	StatusSuspended BroadcasterStatus = "suspended"
)

var allowedTransitions = map[BroadcasterStatus][]BroadcasterStatus{
	StatusPending:   {StatusActive},
	StatusActive:    {StatusSuspended},
	StatusSuspended: {StatusActive},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to BroadcasterStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s BroadcasterStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	default:
		return false
	}
}

type Broadcaster struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	LegalName *string           `gorm:"type:text" json:"legalName,omitempty"`
	Status    BroadcasterStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Broadcaster) TableName() string { return "broadcasters" }

type Repository interface {
	Create(ctx context.Context, b *Broadcaster) error
	FindByID(ctx context.Context, id snowflake.ID) (*Broadcaster, error)
	FindByIDs(ctx context.Context, ids []snowflake.ID) ([]Broadcaster, error)
	List(ctx context.Context, filter ListRequest) ([]Broadcaster, error)
	Update(ctx context.Context, b *Broadcaster) error
}

type ListRequest struct {
	Status  string `form:"status"`
	SortBy  string `form:"sort_by"`
	OrderBy string `form:"order_by"`
}

type CreateRequest struct {
	Name      string  `json:"name"`
	LegalName *string `json:"legalName"`
}

type UpdateRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name"`
	LegalName *string `json:"legalName"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Broadcaster, error)
	Get(ctx context.Context, id string) (*Broadcaster, error)
	List(ctx context.Context, req ListRequest) ([]Broadcaster, error)
	Update(ctx context.Context, req UpdateRequest) (*Broadcaster, error)
	Transition(ctx context.Context, id string, to BroadcasterStatus) (*Broadcaster, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotFound          = errors.New("broadcaster_not_found")
)
