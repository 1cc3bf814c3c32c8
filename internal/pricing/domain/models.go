package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
)

type ChangeType string

const (
	ChangeInitial   ChangeType = "initial"
	ChangeAutomatic ChangeType = "automatic"
	ChangeManual    ChangeType = "manual"
)

// EventPricing is the single pricing row for an event. Computed values come
// from the upstream signal; manual values only apply while IsManualOverride
// is set.
type EventPricing struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID snowflake.ID `gorm:"not null;uniqueIndex" json:"eventId"`

	ComputedTier       pricetierdomain.Tier  `gorm:"column:computed_tier;type:text" json:"computedTier"`
	ComputedPriceCents int64                 `gorm:"column:computed_price_cents;not null;default:0" json:"computedPriceCents"`
	ManualTier         *pricetierdomain.Tier `gorm:"column:manual_tier;type:text" json:"manualTier,omitempty"`
	ManualPriceCents   *int64                `gorm:"column:manual_price_cents" json:"manualPriceCents,omitempty"`
	IsManualOverride   bool                  `gorm:"column:is_manual_override;not null;default:false" json:"isManualOverride"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (EventPricing) TableName() string { return "event_pricings" }

// PricingHistoryEntry is one immutable line of the pricing audit trail.
// Entries are only ever appended.
type PricingHistoryEntry struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	EventPricingID snowflake.ID `gorm:"not null;index" json:"eventPricingId"`

	PreviousPriceCents *int64                `gorm:"column:previous_price_cents" json:"previousPriceCents,omitempty"`
	NewPriceCents      *int64                `gorm:"column:new_price_cents" json:"newPriceCents,omitempty"`
	PreviousTier       *pricetierdomain.Tier `gorm:"column:previous_tier;type:text" json:"previousTier,omitempty"`
	NewTier            *pricetierdomain.Tier `gorm:"column:new_tier;type:text" json:"newTier,omitempty"`
	ChangeType         ChangeType            `gorm:"column:change_type;type:text;not null" json:"changeType"`
	ChangedBy          *string               `gorm:"column:changed_by" json:"changedBy,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (PricingHistoryEntry) TableName() string { return "pricing_history_entries" }

// EffectivePricing is what downstream consumers see: manual values when
// overridden, computed otherwise, platform defaults when neither is set.
type EffectivePricing struct {
	EventID          snowflake.ID         `json:"eventId"`
	Tier             pricetierdomain.Tier `json:"tier"`
	PriceCents       int64                `json:"priceCents"`
	IsManualOverride bool                 `json:"isManualOverride"`
}

// Resolve computes the effective tier and price for a pricing row. A nil
// row and unset fields fall back to the platform defaults. A computed
// price of zero means "not yet computed".
func Resolve(row *EventPricing, defaultTier pricetierdomain.Tier, defaultPriceCents int64) (pricetierdomain.Tier, int64) {
	if row == nil {
		return defaultTier, defaultPriceCents
	}

	tier := row.ComputedTier
	price := row.ComputedPriceCents
	if row.IsManualOverride {
		if row.ManualTier != nil {
			tier = *row.ManualTier
		}
		if row.ManualPriceCents != nil {
			price = *row.ManualPriceCents
		}
	}
	if tier == "" {
		tier = defaultTier
	}
	if price <= 0 {
		price = defaultPriceCents
	}
	return tier, price
}

type SetOverrideRequest struct {
	EventID          string
	IsManualOverride bool
	ManualTier       *pricetierdomain.Tier
	ManualPriceCents *int64
}

type Repository interface {
	FindByEventID(ctx context.Context, eventID snowflake.ID) (*EventPricing, error)
	List(ctx context.Context) ([]EventPricing, error)
	ListHistory(ctx context.Context, limit int) ([]PricingHistoryEntry, error)
	ListHistoryForEvent(ctx context.Context, eventPricingID snowflake.ID, limit int) ([]PricingHistoryEntry, error)
}

type Service interface {
	Get(ctx context.Context, eventID string) (*EventPricing, error)
	List(ctx context.Context) ([]EventPricing, error)
	Effective(ctx context.Context, eventID string) (*EffectivePricing, error)
	SetOverride(ctx context.Context, req SetOverrideRequest) (*EventPricing, error)
	RevertToComputed(ctx context.Context, eventID string) (*EventPricing, error)
	Recompute(ctx context.Context, eventID string) (*EventPricing, error)
	ListHistory(ctx context.Context, limit int) ([]PricingHistoryEntry, error)
}

// SignalClient is the upstream pricing advisory. Implementations clamp the
// returned price to the platform band before handing it back.
type SignalClient interface {
	Suggest(ctx context.Context, req SignalRequest) (*SignalResult, error)
}

type SignalRequest struct {
	EventID  snowflake.ID
	SportID  snowflake.ID
	LeagueID *snowflake.ID
	Season   *string
	StartAt  time.Time
}

type SignalResult struct {
	Tier       pricetierdomain.Tier
	PriceCents int64
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidEvent      = errors.New("invalid_event")
	ErrInvalidTier       = errors.New("invalid_tier")
	ErrPriceOutOfBand    = errors.New("price_out_of_band")
	ErrNotFound          = errors.New("event_pricing_not_found")
	ErrRateLimited       = errors.New("recompute_rate_limited")
	ErrRecomputeInFlight = errors.New("recompute_in_flight")
	ErrSignalUnavailable = errors.New("pricing_signal_unavailable")
)
