package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresBackend(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://ooru.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingBackendConfig)

	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	_, err = LoadConfig()
	assert.ErrorIs(t, err, ErrMissingBackendConfig)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://ooru.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("CHECKOUT_DELAY", "0s")
	t.Setenv("FLUSH_INTERVAL", "soon")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("CLOUDINARY_URL", "")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Duration(0), cfg.CheckoutDelay)
	assert.Equal(t, 30*time.Second, cfg.FlushInterval)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.MailEnabled())
	assert.False(t, cfg.CloudinaryEnabled())
	assert.Same(t, cfg, AppConfig)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{DBUser: "ooru", DBPassword: "secret", DBHost: "db", DBPort: "5432", DBName: "shop", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://ooru:secret@db:5432/shop?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://pooler/shop"
	assert.Equal(t, "postgres://pooler/shop", cfg.DSN())
}
