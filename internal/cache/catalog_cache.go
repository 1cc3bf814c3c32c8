package cache

import (
	"time"

	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

const (
	defaultTierTTL      = 45 * time.Second
	defaultTerritoryTTL = 10 * time.Minute
)

// CatalogCache stores hot-path reference lookups: tier bands are read on
// every pricing mutation, territories on every grant validation.
type CatalogCache interface {
	GetTierConfig(tier pricetierdomain.Tier) (*pricetierdomain.TierConfig, bool)
	SetTierConfig(cfg *pricetierdomain.TierConfig)
	InvalidateTier(tier pricetierdomain.Tier)
	GetTerritories(region string) ([]territorydomain.Territory, bool)
	SetTerritories(region string, territories []territorydomain.Territory)
}

type catalogCache struct {
	tiers       Cache[pricetierdomain.Tier, *pricetierdomain.TierConfig]
	territories Cache[string, []territorydomain.Territory]

	tierTTL      time.Duration
	territoryTTL time.Duration
}

func NewCatalogCache() CatalogCache {
	return &catalogCache{
		tiers:        NewTTLCache[pricetierdomain.Tier, *pricetierdomain.TierConfig](),
		territories:  NewTTLCache[string, []territorydomain.Territory](),
		tierTTL:      defaultTierTTL,
		territoryTTL: defaultTerritoryTTL,
	}
}

func (c *catalogCache) GetTierConfig(tier pricetierdomain.Tier) (*pricetierdomain.TierConfig, bool) {
	return c.tiers.Get(tier)
}

func (c *catalogCache) SetTierConfig(cfg *pricetierdomain.TierConfig) {
	if cfg == nil {
		return
	}
	c.tiers.Set(cfg.Tier, cfg, c.tierTTL)
}

func (c *catalogCache) InvalidateTier(tier pricetierdomain.Tier) {
	c.tiers.Delete(tier)
}

func (c *catalogCache) GetTerritories(region string) ([]territorydomain.Territory, bool) {
	return c.territories.Get(region)
}

func (c *catalogCache) SetTerritories(region string, territories []territorydomain.Territory) {
	if len(territories) == 0 {
		return
	}
	c.territories.Set(region, territories, c.territoryTTL)
}
