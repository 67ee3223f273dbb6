package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gotest.tools/v3/assert"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.NilError(t, Load())

	assert.Equal(t, ":8080", APIAddr())
	assert.Equal(t, ":3000", DashboardAddr())
	assert.Equal(t, "builtin", CatalogSource())
	assert.Equal(t, "flat", SavingsPolicy())
	assert.Equal(t, 500.0, UnitSaving())
	assert.Equal(t, 12.5, UnitROI())
	assert.Equal(t, 30*time.Minute, SessionIdleTTL())
	assert.Equal(t, 15, TelemetryDays())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), TelemetryStart())
	assert.Equal(t, 5.0, EnergyUnitRate())
	assert.Equal(t, 0.8, CarbonFactor())
	assert.Equal(t, "none", EventsBackend())
	assert.Equal(t, "solar/recommendations", MQTTTopic())
	assert.Equal(t, false, UseCloudServices())
	assert.Equal(t, zerolog.InfoLevel, LogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SAVINGS_POLICY", "Projected")
	t.Setenv("UNIT_ROI", "10")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")

	assert.NilError(t, Load())

	assert.Equal(t, "projected", SavingsPolicy())
	assert.Equal(t, 10.0, UnitROI())
	assert.Equal(t, 5*time.Minute, SessionIdleTTL())
	assert.Equal(t, zerolog.DebugLevel, LogLevel())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad start date", "TELEMETRY_START", "01/01/2025"},
		{"zero days", "TELEMETRY_DAYS", "0"},
		{"zero ttl", "SESSION_IDLE_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(tt.key, tt.val)

			assert.Assert(t, Load() != nil)
		})
	}
}

func TestLogLevelFallback(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LOG_LEVEL", "loud")

	assert.NilError(t, Load())
	assert.Equal(t, zerolog.InfoLevel, LogLevel())
}
