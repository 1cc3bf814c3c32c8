package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "fr", want: "FR"},
		{in: "FR", want: "FR"},
		{in: "gB", want: "GB"},
		{in: "f", wantErr: true},
		{in: "fra", wantErr: true},
		{in: "f1", wantErr: true},
		{in: "", wantErr: true},
		{in: "??", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeCode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidTerritoryCode, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeCodesDeduplicates(t *testing.T) {
	got, err := NormalizeCodes([]string{"fr", "FR", "be", "fR", "DE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "BE", "DE"}, got)
}

func TestNormalizeCodesRejectsMalformed(t *testing.T) {
	_, err := NormalizeCodes([]string{"FR", "xyz"})
	assert.ErrorIs(t, err, ErrInvalidTerritoryCode)
}
