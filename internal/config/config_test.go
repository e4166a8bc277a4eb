package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/facemoji")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "mock", cfg.ProviderType)
	assert.Equal(t, 30, cfg.TargetFPS)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Load()
	assert.Error(t, err)
}

func TestFrameInterval(t *testing.T) {
	cfg := &Config{TargetFPS: 30}
	assert.Equal(t, time.Second/30, cfg.FrameInterval())

	// Zero fps falls back to the default rate
	cfg = &Config{}
	assert.Equal(t, time.Second/30, cfg.FrameInterval())

	cfg = &Config{TargetFPS: 10}
	assert.Equal(t, 100*time.Millisecond, cfg.FrameInterval())
}
