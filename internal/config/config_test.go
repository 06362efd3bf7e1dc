package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://project.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, 15*time.Second, cfg.Supabase.HTTPTimeout)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "development", cfg.LogMode)
	assert.True(t, cfg.LogRedact)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:5173/reset-password", cfg.PasswordResetURL())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("ENV", "production")
	t.Setenv("BASE_URL", "https://mag.example.edu/")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "production", cfg.LogMode)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://mag.example.edu/reset-password", cfg.PasswordResetURL())
}

func TestLoadDatabaseURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/unimag")

	url, err := LoadDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/unimag", url)

	t.Setenv("DATABASE_URL", "")
	_, err = LoadDatabaseURL()
	assert.Error(t, err)
}
