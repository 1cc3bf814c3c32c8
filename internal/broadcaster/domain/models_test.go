package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusActive))
	assert.True(t, CanTransition(StatusActive, StatusSuspended))
	assert.True(t, CanTransition(StatusSuspended, StatusActive))

	// pending can only activate, and suspension is never terminal
	assert.False(t, CanTransition(StatusPending, StatusSuspended))
	assert.False(t, CanTransition(StatusActive, StatusPending))
	assert.False(t, CanTransition(StatusSuspended, StatusPending))
	assert.False(t, CanTransition(StatusActive, StatusActive))
}
