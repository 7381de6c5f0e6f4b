package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data/vugru.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VUGRU_ADDR", ":9999")
	t.Setenv("VUGRU_TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("VUGRU_TOKEN_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
