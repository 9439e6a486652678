package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 10*time.Minute, cfg.Game.DisconnectGrace)
	assert.Equal(t, 2*time.Hour, cfg.Game.RoomTTL)
	assert.Equal(t, 10*time.Minute, cfg.Game.RoomEmptyTTL)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("DISCONNECT_GRACE", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 90*time.Second, cfg.Game.DisconnectGrace)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "etcd")

	_, err := Load()
	assert.Error(t, err)
}
