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

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "account-service", cfg.TokenIssuer)
	assert.Equal(t, 720*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int64(100000000), cfg.MaxUploadBytes)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDRESS", ":9090")
	t.Setenv("TOKEN_SIGN_KEY", "super-secret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "super-secret", cfg.TokenSignKey)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
