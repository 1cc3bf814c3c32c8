package seed

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

// Reference data loaded on startup. Idempotent: existing rows are left
// untouched, so operator edits to tier bands survive restarts.

var defaultTerritories = []territorydomain.Territory{
	{Code: "GB", Region: "Europe"},
	{Code: "IE", Region: "Europe"},
	{Code: "FR", Region: "Europe"},
	{Code: "DE", Region: "Europe"},
	{Code: "ES", Region: "Europe"},
	{Code: "IT", Region: "Europe"},
	{Code: "NL", Region: "Europe"},
	{Code: "BE", Region: "Europe"},
	{Code: "PT", Region: "Europe"},
	{Code: "SE", Region: "Europe"},
	{Code: "NO", Region: "Europe"},
	{Code: "DK", Region: "Europe"},
	{Code: "PL", Region: "Europe"},
	{Code: "US", Region: "Americas"},
	{Code: "CA", Region: "Americas"},
	{Code: "MX", Region: "Americas"},
	{Code: "BR", Region: "Americas"},
	{Code: "AR", Region: "Americas"},
	{Code: "JP", Region: "Asia-Pacific"},
	{Code: "KR", Region: "Asia-Pacific"},
	{Code: "CN", Region: "Asia-Pacific"},
	{Code: "IN", Region: "Asia-Pacific"},
	{Code: "AU", Region: "Asia-Pacific"},
	{Code: "NZ", Region: "Asia-Pacific"},
	{Code: "ZA", Region: "Africa"},
	{Code: "NG", Region: "Africa"},
	{Code: "EG", Region: "Africa"},
	{Code: "SA", Region: "Middle East"},
	{Code: "AE", Region: "Middle East"},
	{Code: "QA", Region: "Middle East"},
}

var defaultTierConfigs = []pricetierdomain.TierConfig{
	{Tier: pricetierdomain.TierGold, MinPriceCents: 299, BasePriceCents: 399, MaxPriceCents: 500},
	{Tier: pricetierdomain.TierSilver, MinPriceCents: 199, BasePriceCents: 249, MaxPriceCents: 399},
	{Tier: pricetierdomain.TierBronze, MinPriceCents: 99, BasePriceCents: 129, MaxPriceCents: 249},
}

// EnsureReferenceData seeds the territory catalog and default tier bands.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, territory := range defaultTerritories {
			if err := tx.Where(territorydomain.Territory{Code: territory.Code}).
				FirstOrCreate(&territory).Error; err != nil {
				return err
			}
		}
		for _, cfg := range defaultTierConfigs {
			cfg.CreatedAt = now
			cfg.UpdatedAt = now
			if err := tx.Where(pricetierdomain.TierConfig{Tier: cfg.Tier}).
				FirstOrCreate(&cfg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
