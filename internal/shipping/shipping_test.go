package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestThresholdPolicyCost(t *testing.T) {
	policy, err := NewThresholdPolicy(Settings{
		FreeShippingThreshold: dec("2000"),
		FlatRate:              dec("99"),
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		subtotal string
		want     string
	}{
		{"below threshold pays flat rate", "1999", "99"},
		{"just below threshold", "1999.99", "99"},
		{"exactly at threshold ships free", "2000", "0"},
		{"above threshold ships free", "5000", "0"},
		{"empty cart pays flat rate", "0", "99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Cost(dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNewThresholdPolicyRejectsNegativeSettings(t *testing.T) {
	_, err := NewThresholdPolicy(Settings{FreeShippingThreshold: dec("-1"), FlatRate: dec("99")})
	assert.Error(t, err)

	_, err = NewThresholdPolicy(Settings{FreeShippingThreshold: dec("2000"), FlatRate: dec("-1")})
	assert.Error(t, err)
}
