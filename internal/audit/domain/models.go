package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/pkg/db/pagination"
)

// Target types recorded in the audit trail.
const (
	TargetRights      = "rights"
	TargetPackage     = "rights_package"
	TargetBroadcaster = "broadcaster"
	TargetEvent       = "event"
	TargetPricing     = "pricing"
	TargetPriceTier   = "price_tier"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    *string           `gorm:"column:actor_id" json:"actor_id"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	TargetType string            `gorm:"column:target_type;type:text;not null;index" json:"target_type"`
	TargetID   *string           `gorm:"column:target_id;index" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	IPAddress  *string           `gorm:"column:ip_address" json:"ip_address"`
	UserAgent  *string           `gorm:"column:user_agent" json:"user_agent"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

type Service interface {
	Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
