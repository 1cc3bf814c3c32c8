package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ScopeType is the contractual breadth of a rights package.
type ScopeType string

const (
	ScopeSport       ScopeType = "sport"
	ScopeCompetition ScopeType = "competition"
	ScopeSeason      ScopeType = "season"
)

func ValidScopeType(s ScopeType) bool {
	switch s {
	case ScopeSport, ScopeCompetition, ScopeSeason:
		return true
	default:
		return false
	}
}

// PackageStatus forms the package lifecycle: draft -> active -> expired.
type PackageStatus string

const (
	StatusDraft   PackageStatus = "draft"
	StatusActive  PackageStatus = "active"
	StatusExpired PackageStatus = "expired"
)

var allowedTransitions = map[PackageStatus][]PackageStatus{
	StatusDraft:  {StatusActive},
	StatusActive: {StatusExpired},
}

func CanTransition(from, to PackageStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RightsPackage is the contractual envelope a broadcaster's per-event
// grants derive from. Validity window is [StartAt, EndAt] inclusive.
type RightsPackage struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	BroadcasterID snowflake.ID  `gorm:"not null;index" json:"broadcasterId"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	ScopeType     ScopeType     `gorm:"column:scope_type;type:text;not null" json:"scopeType"`
	SportID       *snowflake.ID `gorm:"index" json:"sportId,omitempty"`
	LeagueID      *snowflake.ID `gorm:"index" json:"leagueId,omitempty"`
	Season        *string       `gorm:"type:text" json:"season,omitempty"`
	StartAt       time.Time     `gorm:"not null;index" json:"startAt"`
	EndAt         time.Time     `gorm:"not null;index" json:"endAt"`

	IsExclusiveDefault bool                        `gorm:"column:is_exclusive_default;not null;default:false" json:"isExclusiveDefault"`
	TerritoriesDefault datatypes.JSONSlice[string] `gorm:"column:territories_default" json:"territoriesDefault"`
	Status             PackageStatus               `gorm:"type:text;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (RightsPackage) TableName() string { return "rights_packages" }

// CoversDate reports whether the package window contains the given instant.
func (p *RightsPackage) CoversDate(at time.Time) bool {
	return !at.Before(p.StartAt) && !at.After(p.EndAt)
}

type Repository interface {
	Create(ctx context.Context, p *RightsPackage) error
	FindByID(ctx context.Context, id snowflake.ID) (*RightsPackage, error)
	List(ctx context.Context, filter ListRequest) ([]RightsPackage, error)
	// ListActiveAt returns active packages whose validity window contains at.
	ListActiveAt(ctx context.Context, at time.Time) ([]RightsPackage, error)
	Update(ctx context.Context, p *RightsPackage) error
}

type ListRequest struct {
	BroadcasterID string `form:"broadcasterId"`
	Status        string `form:"status"`
	ScopeType     string `form:"scopeType"`
	SortBy        string `form:"sort_by"`
	OrderBy       string `form:"order_by"`
}

type CreateRequest struct {
	BroadcasterID      string    `json:"broadcasterId"`
	Name               string    `json:"name"`
	ScopeType          ScopeType `json:"scopeType"`
	SportID            *string   `json:"sportId"`
	LeagueID           *string   `json:"leagueId"`
	Season             *string   `json:"season"`
	StartAt            time.Time `json:"startAt"`
	EndAt              time.Time `json:"endAt"`
	IsExclusiveDefault bool      `json:"isExclusiveDefault"`
	TerritoriesDefault []string  `json:"territoriesDefault"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RightsPackage, error)
	Get(ctx context.Context, id string) (*RightsPackage, error)
	List(ctx context.Context, req ListRequest) ([]RightsPackage, error)
	Activate(ctx context.Context, id string) (*RightsPackage, error)
	Expire(ctx context.Context, id string) (*RightsPackage, error)
}

// TerritoryValidator normalizes and checks territory codes against the
// catalog. Satisfied by the territory service.
type TerritoryValidator interface {
	ValidateCodes(ctx context.Context, codes []string) ([]string, error)
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidBroadcaster = errors.New("invalid_broadcaster")
	ErrInvalidScopeType   = errors.New("invalid_scope_type")
	ErrMissingScopeField  = errors.New("missing_scope_field")
	ErrInvalidWindow      = errors.New("invalid_validity_window")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrNotFound           = errors.New("rights_package_not_found")
)
