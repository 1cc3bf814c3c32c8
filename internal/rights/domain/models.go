package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Exclusivity string

const (
	ExclusivityExclusive    Exclusivity = "exclusive"
	ExclusivityShared       Exclusivity = "shared"
	ExclusivityNonExclusive Exclusivity = "non_exclusive"
)

func ValidExclusivity(e Exclusivity) bool {
	switch e {
	case ExclusivityExclusive, ExclusivityShared, ExclusivityNonExclusive:
		return true
	default:
		return false
	}
}

type Platform string

const (
	PlatformOTT    Platform = "ott"
	PlatformLinear Platform = "linear"
	PlatformBoth   Platform = "both"
)

func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformOTT, PlatformLinear, PlatformBoth:
		return true
	default:
		return false
	}
}

// GrantStatus forms the grant lifecycle. Active grants are revoked
// (soft), never hard-deleted, so history stays queryable.
type GrantStatus string

const (
	StatusDraft   GrantStatus = "draft"
	StatusActive  GrantStatus = "active"
	StatusExpired GrantStatus = "expired"
	StatusRevoked GrantStatus = "revoked"
)

var allowedTransitions = map[GrantStatus][]GrantStatus{
	StatusDraft:  {StatusActive},
	StatusActive: {StatusExpired, StatusRevoked},
}

func CanTransition(from, to GrantStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RightsEvent is a per-event grant of broadcast rights.
type RightsEvent struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	EventID       snowflake.ID  `gorm:"not null;index" json:"eventId"`
	BroadcasterID snowflake.ID  `gorm:"not null;index" json:"broadcasterId"`
	PackageID     *snowflake.ID `gorm:"index" json:"packageId"`

	RightsLive        bool `gorm:"column:rights_live;not null;default:false" json:"rightsLive"`
	RightsReplay      bool `gorm:"column:rights_replay;not null;default:false" json:"rightsReplay"`
	RightsHighlights  bool `gorm:"column:rights_highlights;not null;default:false" json:"rightsHighlights"`
	ReplayWindowHours *int `gorm:"column:replay_window_hours" json:"replayWindowHours"`

	TerritoriesAllowed datatypes.JSONSlice[string] `gorm:"column:territories_allowed" json:"territoriesAllowed"`
	TerritoriesBlocked datatypes.JSONSlice[string] `gorm:"column:territories_blocked" json:"territoriesBlocked"`

	Exclusivity Exclusivity `gorm:"type:text;not null;index" json:"exclusivity"`
	Platform    Platform    `gorm:"type:text;not null" json:"platform"`
	Status      GrantStatus `gorm:"type:text;not null;index" json:"status"`

	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revokedAt,omitempty"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expiresAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (RightsEvent) TableName() string { return "rights_events" }

// EffectiveTerritories resolves the grant's coverage: blocked codes are
// excluded regardless of the allow list.
func (r *RightsEvent) EffectiveTerritories() []string {
	if len(r.TerritoriesAllowed) == 0 {
		return nil
	}
	blocked := make(map[string]struct{}, len(r.TerritoriesBlocked))
	for _, code := range r.TerritoriesBlocked {
		blocked[code] = struct{}{}
	}
	out := make([]string, 0, len(r.TerritoriesAllowed))
	for _, code := range r.TerritoriesAllowed {
		if _, ok := blocked[code]; ok {
			continue
		}
		out = append(out, code)
	}
	return out
}

// Conflict describes an existing active exclusive grant whose allow-list
// overlaps a candidate's territories. Conflicts are advisory: the engine
// surfaces them, callers decide whether to proceed.
type Conflict struct {
	RightID         snowflake.ID `json:"rightId"`
	EventID         snowflake.ID `json:"eventId"`
	EventTitle      string       `json:"eventTitle"`
	BroadcasterID   snowflake.ID `json:"broadcasterId"`
	BroadcasterName string       `json:"broadcasterName"`
	Territories     []string     `json:"territories"`
}

type FindConflictsRequest struct {
	EventIDs             []string
	Territories          []string
	Exclusivity          Exclusivity
	ExcludeBroadcasterID string
	ExcludeRightID       string
}

type ListRequest struct {
	EventID       string `form:"eventId"`
	BroadcasterID string `form:"broadcasterId"`
	Status        string `form:"status"`
	SortBy        string `form:"sort_by"`
	OrderBy       string `form:"order_by"`
}

type CreateRequest struct {
	EventID            string      `json:"eventId"`
	BroadcasterID      string      `json:"broadcasterId"`
	PackageID          *string     `json:"packageId"`
	RightsLive         bool        `json:"rightsLive"`
	RightsReplay       bool        `json:"rightsReplay"`
	RightsHighlights   bool        `json:"rightsHighlights"`
	ReplayWindowHours  *int        `json:"replayWindowHours"`
	TerritoriesAllowed []string    `json:"territoriesAllowed"`
	TerritoriesBlocked []string    `json:"territoriesBlocked"`
	Exclusivity        Exclusivity `json:"exclusivity"`
	Platform           Platform    `json:"platform"`
}

type Repository interface {
	Create(ctx context.Context, r *RightsEvent) error
	FindByID(ctx context.Context, id snowflake.ID) (*RightsEvent, error)
	List(ctx context.Context, filter ListRequest) ([]RightsEvent, error)
	// ListActiveExclusiveForEvents returns active exclusive grants for the
	// given events, excluding the named broadcaster and right.
	ListActiveExclusiveForEvents(ctx context.Context, eventIDs []snowflake.ID, excludeBroadcasterID, excludeRightID snowflake.ID) ([]RightsEvent, error)
	Update(ctx context.Context, r *RightsEvent) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RightsEvent, error)
	Get(ctx context.Context, id string) (*RightsEvent, error)
	List(ctx context.Context, req ListRequest) ([]RightsEvent, error)
	Activate(ctx context.Context, id string) (*RightsEvent, error)
	Expire(ctx context.Context, id string) (*RightsEvent, error)
	Revoke(ctx context.Context, id string) (*RightsEvent, error)
	FindConflicts(ctx context.Context, req FindConflictsRequest) ([]Conflict, error)
}

// TerritoryValidator normalizes and checks territory codes against the
// catalog. Satisfied by the territory service.
type TerritoryValidator interface {
	ValidateCodes(ctx context.Context, codes []string) ([]string, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidEvent         = errors.New("invalid_event")
	ErrInvalidBroadcaster   = errors.New("invalid_broadcaster")
	ErrInvalidExclusivity   = errors.New("invalid_exclusivity")
	ErrInvalidPlatform      = errors.New("invalid_platform")
	ErrInvalidReplayWindow  = errors.New("invalid_replay_window")
	ErrPackageMismatch      = errors.New("package_broadcaster_mismatch")
	ErrInvalidTransition    = errors.New("invalid_status_transition")
	ErrNotFound             = errors.New("rights_event_not_found")
)
