package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
)

func TestResolveFallbacks(t *testing.T) {
	defaultTier := pricetierdomain.TierBronze
	const defaultPrice = int64(99)

	tier, price := Resolve(nil, defaultTier, defaultPrice)
	assert.Equal(t, defaultTier, tier)
	assert.Equal(t, defaultPrice, price)

	// row exists but nothing computed yet
	tier, price = Resolve(&EventPricing{}, defaultTier, defaultPrice)
	assert.Equal(t, defaultTier, tier)
	assert.Equal(t, defaultPrice, price)

	computed := &EventPricing{ComputedTier: pricetierdomain.TierGold, ComputedPriceCents: 399}
	tier, price = Resolve(computed, defaultTier, defaultPrice)
	assert.Equal(t, pricetierdomain.TierGold, tier)
	assert.Equal(t, int64(399), price)
}

func TestResolveManualOverride(t *testing.T) {
	manualTier := pricetierdomain.TierSilver
	manualPrice := int64(249)
	row := &EventPricing{
		ComputedTier:       pricetierdomain.TierGold,
		ComputedPriceCents: 399,
		ManualTier:         &manualTier,
		ManualPriceCents:   &manualPrice,
		IsManualOverride:   true,
	}

	tier, price := Resolve(row, pricetierdomain.TierBronze, 99)
	assert.Equal(t, pricetierdomain.TierSilver, tier)
	assert.Equal(t, int64(249), price)

	// manual values are ignored while the override flag is off
	row.IsManualOverride = false
	tier, price = Resolve(row, pricetierdomain.TierBronze, 99)
	assert.Equal(t, pricetierdomain.TierGold, tier)
	assert.Equal(t, int64(399), price)
}

func TestResolvePartialOverrideFallsThrough(t *testing.T) {
	manualPrice := int64(180)
	row := &EventPricing{
		ComputedTier:       pricetierdomain.TierSilver,
		ComputedPriceCents: 200,
		ManualPriceCents:   &manualPrice,
		IsManualOverride:   true,
	}

	tier, price := Resolve(row, pricetierdomain.TierBronze, 99)
	assert.Equal(t, pricetierdomain.TierSilver, tier)
	assert.Equal(t, int64(180), price)
}
