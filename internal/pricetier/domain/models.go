package domain

import (
	"context"
	"errors"
	"time"
)

type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

func ValidTier(t Tier) bool {
	switch t {
	case TierGold, TierSilver, TierBronze:
		return true
	default:
		return false
	}
}

// TierConfig is the price band for one tier. Prices are integer cents.
type TierConfig struct {
	Tier           Tier  `gorm:"primaryKey;type:text" json:"tier"`
	MinPriceCents  int64 `gorm:"column:min_price_cents;not null" json:"minPriceCents"`
	BasePriceCents int64 `gorm:"column:base_price_cents;not null" json:"basePriceCents"`
	MaxPriceCents  int64 `gorm:"column:max_price_cents;not null" json:"maxPriceCents"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (TierConfig) TableName() string { return "pricing_tier_configs" }

// Validate enforces min <= base <= max and non-negative prices.
func (c *TierConfig) Validate() error {
	if !ValidTier(c.Tier) {
		return ErrInvalidTier
	}
	if c.MinPriceCents < 0 {
		return ErrInvalidBand
	}
	if c.MinPriceCents > c.BasePriceCents || c.BasePriceCents > c.MaxPriceCents {
		return ErrInvalidBand
	}
	return nil
}

// Contains reports whether a price falls inside the band, inclusive.
func (c *TierConfig) Contains(priceCents int64) bool {
	return priceCents >= c.MinPriceCents && priceCents <= c.MaxPriceCents
}

type UpsertRequest struct {
	Tier           Tier  `json:"tier"`
	MinPriceCents  int64 `json:"minPriceCents"`
	BasePriceCents int64 `json:"basePriceCents"`
	MaxPriceCents  int64 `json:"maxPriceCents"`
}

type Repository interface {
	FindByTier(ctx context.Context, tier Tier) (*TierConfig, error)
	List(ctx context.Context) ([]TierConfig, error)
	Upsert(ctx context.Context, c *TierConfig) error
}

type Service interface {
	Get(ctx context.Context, tier Tier) (*TierConfig, error)
	List(ctx context.Context) ([]TierConfig, error)
	Upsert(ctx context.Context, req UpsertRequest) (*TierConfig, error)
}

var (
	ErrInvalidTier = errors.New("invalid_tier")
	ErrInvalidBand = errors.New("invalid_price_band")
	ErrNotFound    = errors.New("tier_config_not_found")
)
