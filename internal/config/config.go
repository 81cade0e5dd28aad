package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Development-only fallbacks. Load refuses them when APP_ENV=production.
const (
	DevSecretKey     = "dev-insecure-secret-key"
	DevAdminPassword = "admin"
)

var ErrMissingSecret = errors.New("SECRET_KEY must be set in production")

type Config struct {
	Env        string `env:"APP_ENV,default=development"`
	ServerPort int    `env:"SERVER_PORT,default=8080"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	SecretKey    string        `env:"SECRET_KEY"`
	SessionTTL   time.Duration `env:"SESSION_TTL,default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,default=false"`

	DBDriver    string `env:"DB_DRIVER,default=sqlite"`
	DatabaseURL string `env:"DATABASE_URL,default=storefront.db"`
	DBLogLevel  string `env:"DB_LOG_LEVEL,default=warn"`

	StaticDir     string `env:"STATIC_DIR,default=static"`
	UploadDir     string `env:"UPLOAD_DIR,default=static/images"`
	UploadURL     string `env:"UPLOAD_URL,default=/static/images"`
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE,default=10M"`

	AdminEmail    string `env:"ADMIN_EMAIL,default=admin@site.com"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	KafkaBrokersRaw string `env:"KAFKA_BROKERS"`
	KafkaBrokers    []string

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX,default=products"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION,default=eu-central-1"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3KeyPrefix       string `env:"S3_KEY_PREFIX,default=images/"`
	S3PublicURL       string `env:"S3_PUBLIC_URL"`

	// Set when a development fallback replaced a missing value.
	DevSecret        bool
	DevAdminPassword bool
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("dotenv_not_loaded", "reason", "using process environment", "error", err)
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	return cfg, cfg.finish()
}

func (c *Config) finish() error {
	c.KafkaBrokers = CSV(c.KafkaBrokersRaw)
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.SecretKey == "" {
		if c.IsProduction() {
			return ErrMissingSecret
		}
		c.SecretKey = DevSecretKey
		c.DevSecret = true
	}
	if c.AdminPassword == "" {
		if c.IsProduction() {
			return errors.New("ADMIN_PASSWORD must be set in production")
		}
		c.AdminPassword = DevAdminPassword
		c.DevAdminPassword = true
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
