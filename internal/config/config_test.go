package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "SERVER_PORT", "SECRET_KEY", "SESSION_TTL", "DB_DRIVER",
		"DATABASE_URL", "ADMIN_PASSWORD", "KAFKA_BROKERS", "ES_URL", "S3_BUCKET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "storefront.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, "/static/images", cfg.UploadURL)
	assert.Nil(t, cfg.KafkaBrokers)

	assert.Equal(t, DevSecretKey, cfg.SecretKey)
	assert.True(t, cfg.DevSecret)
	assert.True(t, cfg.DevAdminPassword)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SECRET_KEY", "real-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "real-secret", cfg.SecretKey)
	assert.False(t, cfg.DevSecret)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_ProductionRequiresAdminPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SECRET_KEY", "real-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
}

func TestLoad_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a"}, CSV("a"))
	assert.Equal(t, []string{"a", "b"}, CSV(" a ,, b "))
}
