package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnv lists every variable the tests touch. Empty values count as
// unset for viper, so t.Setenv(k, "") clears a key for the test.
var managedEnv = []string{
	"SHOP_APP_NAME",
	"SHOP_APP_ENV",
	"SHOP_APP_PORT",
	"SHOP_DATABASE_HOST",
	"SHOP_DATABASE_PORT",
	"SHOP_DATABASE_PASSWORD",
	"SHOP_DATABASE_SSLMODE",
	"SHOP_DATABASE_MAX_OPEN_CONNS",
	"SHOP_DATABASE_MAX_IDLE_CONNS",
	"SHOP_STRIPE_SECRET_KEY",
	"SHOP_STRIPE_PUBLISHABLE_KEY",
	"SHOP_STRIPE_CURRENCY",
	"SHOP_SUPABASE_JWT_SECRET",
	"SHOP_COOKIE_SECURE",
	"SHOP_COOKIE_SAME_SITE",
	"SHOP_STORAGE_ENABLED",
	"SHOP_STORAGE_ENDPOINT",
	"SHOP_STORAGE_ACCESS_KEY_ID",
	"SHOP_STORAGE_SECRET_ACCESS_KEY",
	"SHOP_TELEMETRY_SAMPLING_RATIO",
	"SHOP_REDIS_ENABLED",
	"SHOP_CACHE_ENABLED",
	"SHOP_CACHE_L2_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func setStripeKeys(t *testing.T) {
	t.Helper()
	t.Setenv("SHOP_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("SHOP_STRIPE_PUBLISHABLE_KEY", "pk_test_123")
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "jack-mack-shop", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 2, cfg.Database.MaxIdleConns)
		assert.Equal(t, "gbp", cfg.Stripe.Currency)
		assert.Equal(t, "authenticated", cfg.Supabase.JWTAudience)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
		assert.Equal(t, 30*time.Second, cfg.Session.HeartbeatInterval)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Cache.L1TTL)
		assert.Equal(t, "shop:catalog:", cfg.Cache.KeyPrefix)
		assert.Equal(t, time.Minute, cfg.HTTP.CheckoutRateWindow)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)
		t.Setenv("SHOP_APP_NAME", "shop-test")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_HOST", "db.example.supabase.co")
		t.Setenv("SHOP_DATABASE_PORT", "6543")
		t.Setenv("SHOP_STRIPE_CURRENCY", "eur")
		t.Setenv("SHOP_REDIS_ENABLED", "true")
		t.Setenv("SHOP_CACHE_ENABLED", "true")
		t.Setenv("SHOP_CACHE_L2_TTL", "90s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shop-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.example.supabase.co", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
		assert.Equal(t, "pk_test_123", cfg.Stripe.PublishableKey)
		assert.Equal(t, "eur", cfg.Stripe.Currency)
		assert.True(t, cfg.Redis.Enabled)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, 90*time.Second, cfg.Cache.L2TTL)
	})

	t.Run("fails fast without stripe secret key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_STRIPE_PUBLISHABLE_KEY", "pk_test_123")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe.secret_key is required")
	})

	t.Run("fails fast without stripe publishable key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_STRIPE_SECRET_KEY", "sk_test_123")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe.publishable_key is required")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("storage requires endpoint and credentials", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)
		t.Setenv("SHOP_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.endpoint")

		t.Setenv("SHOP_STORAGE_ENDPOINT", "https://xyz.supabase.co/storage/v1/s3")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage credentials")
	})

	t.Run("same_site none requires secure cookies", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)
		t.Setenv("SHOP_COOKIE_SAME_SITE", "none")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cookie.same_site=none")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		setStripeKeys(t)
		t.Setenv("SHOP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_APP_ENV", "production")
		t.Setenv("SHOP_STRIPE_SECRET_KEY", "sk_live_123")
		t.Setenv("SHOP_STRIPE_PUBLISHABLE_KEY", "pk_live_123")
		t.Setenv("SHOP_SUPABASE_JWT_SECRET", "super-secret-jwt-token-with-at-least-32-characters")
		t.Setenv("SHOP_DATABASE_PASSWORD", "secure-password")
		t.Setenv("SHOP_DATABASE_SSLMODE", "require")
		t.Setenv("SHOP_COOKIE_SECURE", "true")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"requires jwt secret", "SHOP_SUPABASE_JWT_SECRET", "", "supabase.jwt_secret is required in production"},
		{"requires database password", "SHOP_DATABASE_PASSWORD", "", "database.password is required in production"},
		{"requires ssl", "SHOP_DATABASE_SSLMODE", "disable", "database.sslmode cannot be 'disable' in production"},
		{"requires secure cookies", "SHOP_COOKIE_SECURE", "false", "cookie.secure must be true in production"},
		{"rejects test stripe key", "SHOP_STRIPE_SECRET_KEY", "sk_test_123", "must be a live key"},
		{"rejects restricted test stripe key", "SHOP_STRIPE_SECRET_KEY", "rk_test_123", "must be a live key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidProductionBase(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOP_DATABASE_HOST", "db.internal")

	t.Run("does not require payment keys", func(t *testing.T) {
		_, err := Load()
		require.Error(t, err)

		db, err := LoadDatabase()
		require.NoError(t, err)
		assert.Equal(t, "db.internal", db.Host)
		assert.Equal(t, 5432, db.Port)
		assert.Equal(t, "migrations", db.MigrationsPath)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "db.example.supabase.co",
			Port:     5432,
			User:     "postgres",
			Password: "secret",
			DBName:   "postgres",
			SSLMode:  "require",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "db.example.supabase.co:5432")
		assert.Contains(t, dsn, "sslmode=require")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
