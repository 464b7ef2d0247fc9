package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/bookly"
	"github.com/goliatone/bookly/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, time.Hour, cfg.GetAccessTokenTTL())
	assert.Equal(t, 48*time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, "email-configuration", cfg.GetActionTokenSalt())
	assert.Equal(t, time.Hour, cfg.GetActionTokenMaxAge())
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, "bookly", cfg.GetIssuer())
	assert.Equal(t, []string{"bookly"}, cfg.GetAudience())
	assert.Equal(t, "localhost:8000", cfg.GetDomain())

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, 64, cfg.MailQueueSize)
	assert.True(t, cfg.Database.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadRequiresSigningKey(t *testing.T) {
	// t.Setenv registers the restore, Unsetenv makes the key truly absent
	t.Setenv("JWT_SECRET", "placeholder")
	os.Unsetenv("JWT_SECRET")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DOMAIN", "books.example.com")
	t.Setenv("ADDR", ":9000")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("JWT_AUDIENCE", "bookly,mobile")
	t.Setenv("DATABASE_URL", "postgres://app:app@db:5432/app")
	t.Setenv("DATABASE_RUN_MIGRATIONS_ON_START", "false")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("SMTP_HOST", "mail.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "books.example.com", cfg.GetDomain())
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, []string{"bookly", "mobile"}, cfg.GetAudience())
	assert.Equal(t, "postgres://app:app@db:5432/app", cfg.Database.URL)
	assert.False(t, cfg.Database.RunMigrationsOnStart)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
}

func TestAppConfigSatisfiesAuthConfig(t *testing.T) {
	var _ bookly.Config = (*config.AppConfig)(nil)
}
