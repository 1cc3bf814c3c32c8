package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrantTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusActive))
	assert.True(t, CanTransition(StatusActive, StatusExpired))
	assert.True(t, CanTransition(StatusActive, StatusRevoked))

	// expired and revoked are terminal
	assert.False(t, CanTransition(StatusExpired, StatusActive))
	assert.False(t, CanTransition(StatusRevoked, StatusActive))
	assert.False(t, CanTransition(StatusDraft, StatusExpired))
	assert.False(t, CanTransition(StatusDraft, StatusRevoked))
}

func TestEffectiveTerritories(t *testing.T) {
	grant := &RightsEvent{
		TerritoriesAllowed: []string{"FR", "BE", "DE"},
		TerritoriesBlocked: []string{"BE"},
	}
	assert.Equal(t, []string{"FR", "DE"}, grant.EffectiveTerritories())

	empty := &RightsEvent{TerritoriesBlocked: []string{"FR"}}
	assert.Nil(t, empty.EffectiveTerritories())
}
