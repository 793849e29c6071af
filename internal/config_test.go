package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, uint16(3000), cfg.Port)
	assert.Equal(t, "vesta", cfg.Metrics.Namespace)
	assert.Equal(t, "2000", cfg.Shipping.FreeThreshold.String())
	assert.Equal(t, "99", cfg.Shipping.FlatRate.String())
}

func TestNewConfigRejectsOutOfRangePort(t *testing.T) {
	tests := []struct {
		name string
		port string
		want uint16
	}{
		{name: "above uint16 range falls back", port: "70000", want: 3000},
		{name: "zero falls back", port: "0", want: 3000},
		{name: "max valid port kept", port: "65535", want: 65535},
		{name: "typical port kept", port: "8080", want: 8080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			cfg, err := NewConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Port)
		})
	}
}

func TestNewConfigFallsBackOnInvalidEnvAndLogLevel(t *testing.T) {
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
}
