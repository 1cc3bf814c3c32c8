package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from PackageStatus
		to   PackageStatus
		want bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusActive, StatusExpired, true},
		{StatusDraft, StatusExpired, false},
		{StatusActive, StatusDraft, false},
		{StatusExpired, StatusActive, false},
		{StatusExpired, StatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCoversDateInclusiveBounds(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	pkg := &RightsPackage{StartAt: start, EndAt: end}

	assert.True(t, pkg.CoversDate(start))
	assert.True(t, pkg.CoversDate(end))
	assert.True(t, pkg.CoversDate(start.AddDate(0, 0, 15)))
	assert.False(t, pkg.CoversDate(start.Add(-time.Second)))
	assert.False(t, pkg.CoversDate(end.Add(time.Second)))
}

func TestValidScopeType(t *testing.T) {
	assert.True(t, ValidScopeType(ScopeSport))
	assert.True(t, ValidScopeType(ScopeCompetition))
	assert.True(t, ValidScopeType(ScopeSeason))
	assert.False(t, ValidScopeType("tournament"))
	assert.False(t, ValidScopeType(""))
}
