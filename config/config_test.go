package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGO_DB", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "chapter_directory", cfg.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NotNil(t, cfg.Logger)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("MONGO_MAX_POOL_SIZE", "12")
	t.Setenv("JWT_REFRESH_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsRelease())
	assert.Equal(t, uint64(12), cfg.MongoMaxPoolSize)
	assert.Equal(t, 2*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MONGO_MAX_POOL_SIZE", "lots")
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")

	cfg := Load()

	assert.Equal(t, uint64(50), cfg.MongoMaxPoolSize)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(false, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(true, "nonsense")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestValidateRejectsDevSecretsInRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	assert.ErrorIs(t, Load().Validate(), ErrInsecureSecrets)

	t.Setenv("JWT_ACCESS_SECRET", "a-real-access-secret")
	assert.ErrorIs(t, Load().Validate(), ErrInsecureSecrets)

	t.Setenv("JWT_REFRESH_SECRET", "a-real-refresh-secret")
	assert.NoError(t, Load().Validate())
}

func TestValidateAllowsDevSecretsOutsideRelease(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	assert.NoError(t, Load().Validate())
}
