package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierConfigValidate(t *testing.T) {
	valid := &TierConfig{Tier: TierGold, MinPriceCents: 299, BasePriceCents: 399, MaxPriceCents: 500}
	assert.NoError(t, valid.Validate())

	inverted := &TierConfig{Tier: TierGold, MinPriceCents: 500, BasePriceCents: 399, MaxPriceCents: 299}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidBand)

	baseAboveMax := &TierConfig{Tier: TierSilver, MinPriceCents: 100, BasePriceCents: 600, MaxPriceCents: 500}
	assert.ErrorIs(t, baseAboveMax.Validate(), ErrInvalidBand)

	negative := &TierConfig{Tier: TierBronze, MinPriceCents: -1, BasePriceCents: 0, MaxPriceCents: 10}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidBand)

	unknown := &TierConfig{Tier: Tier("platinum"), MinPriceCents: 1, BasePriceCents: 2, MaxPriceCents: 3}
	assert.ErrorIs(t, unknown.Validate(), ErrInvalidTier)
}

func TestTierConfigContainsInclusive(t *testing.T) {
	band := &TierConfig{Tier: TierBronze, MinPriceCents: 99, BasePriceCents: 129, MaxPriceCents: 249}

	assert.True(t, band.Contains(99))
	assert.True(t, band.Contains(249))
	assert.True(t, band.Contains(150))
	assert.False(t, band.Contains(98))
	assert.False(t, band.Contains(250))
}
