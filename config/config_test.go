package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estatesim/server/internal/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, 5250, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Simulation.Consumers)
	assert.Equal(t, 10, cfg.Simulation.Years)
	assert.Equal(t, 2024, cfg.Simulation.ReferenceYear)
	assert.InDelta(t, 0.2, cfg.Simulation.DownPaymentRate, 1e-9)
	assert.InDelta(t, 0.3, cfg.Simulation.SavingRate, 1e-9)
	assert.InDelta(t, 0.05, cfg.Simulation.InterestRate, 1e-9)
	assert.Equal(t, 100, cfg.BatchPersistence.BatchSize)
	assert.Equal(t, 3, cfg.BatchPersistence.MaxRetries)

	// The default mechanism must parse
	mechanism, err := models.ParseClearingMechanism(cfg.Simulation.Mechanism)
	assert.NoError(t, err)
	assert.Equal(t, models.MechanismIncomeDescending, mechanism)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SIM_CONSUMERS", "25")
	t.Setenv("SIM_YEARS", "5")
	t.Setenv("SIM_MECHANISM", "random")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, 25, cfg.Simulation.Consumers)
	assert.Equal(t, 5, cfg.Simulation.Years)
	assert.Equal(t, "random", cfg.Simulation.Mechanism)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("SIM_CONSUMERS", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}
