package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Kinde        KindeConfig
	Stripe       StripeConfig
	SMTP         SMTPConfig
	Uploads      UploadsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HELLOBUDDY_APP_ENV" required:"true"`
	Port         string `envconfig:"HELLOBUDDY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HELLOBUDDY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HELLOBUDDY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HELLOBUDDY_DB_DSN"`
	Driver string `envconfig:"HELLOBUDDY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HELLOBUDDY_DB_HOST"`
	LegacyPort     int    `envconfig:"HELLOBUDDY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HELLOBUDDY_DB_USER"`
	LegacyPassword string `envconfig:"HELLOBUDDY_DB_PASSWORD"`
	LegacyName     string `envconfig:"HELLOBUDDY_DB_NAME"`
	LegacySSLMode  string `envconfig:"HELLOBUDDY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HELLOBUDDY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HELLOBUDDY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HELLOBUDDY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HELLOBUDDY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HELLOBUDDY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HELLOBUDDY_REDIS_ADDR"`
	Password     string        `envconfig:"HELLOBUDDY_REDIS_PASSWORD"`
	DB           int           `envconfig:"HELLOBUDDY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HELLOBUDDY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HELLOBUDDY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HELLOBUDDY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HELLOBUDDY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HELLOBUDDY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HELLOBUDDY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HELLOBUDDY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HELLOBUDDY_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"HELLOBUDDY_SESSION_TTL_MINUTES" default:"10080"`
}

// SessionTTL returns the session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type AdminConfig struct {
	Email string `envconfig:"HELLOBUDDY_ADMIN_EMAIL"`
}

type KindeConfig struct {
	BaseURL      string        `envconfig:"HELLOBUDDY_KINDE_BASE_URL" required:"true"`
	Audience     string        `envconfig:"HELLOBUDDY_KINDE_AUDIENCE"`
	ClientID     string        `envconfig:"HELLOBUDDY_KINDE_CLIENT_ID" required:"true"`
	ClientSecret string        `envconfig:"HELLOBUDDY_KINDE_CLIENT_SECRET" required:"true"`
	Timeout      time.Duration `envconfig:"HELLOBUDDY_KINDE_TIMEOUT" default:"10s"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"HELLOBUDDY_STRIPE_API_KEY"`
	Env        string `envconfig:"HELLOBUDDY_STRIPE_ENV" default:"test"`
	ProPriceID string `envconfig:"HELLOBUDDY_STRIPE_PRO_PRICE_ID"`
	BillingURL string `envconfig:"HELLOBUDDY_BILLING_URL" default:"http://localhost:3000/dashboard/billing"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SMTPConfig struct {
	Host     string `envconfig:"HELLOBUDDY_SMTP_HOST"`
	Port     int    `envconfig:"HELLOBUDDY_SMTP_PORT" default:"587"`
	Username string `envconfig:"HELLOBUDDY_SMTP_USERNAME"`
	Password string `envconfig:"HELLOBUDDY_SMTP_PASSWORD"`
	From     string `envconfig:"HELLOBUDDY_SMTP_FROM"`
}

type UploadsConfig struct {
	ChunkTTL      time.Duration `envconfig:"HELLOBUDDY_UPLOAD_CHUNK_TTL" default:"10m"`
	MaxChunks     int           `envconfig:"HELLOBUDDY_UPLOAD_MAX_CHUNKS" default:"64"`
	MaxChunkBytes int           `envconfig:"HELLOBUDDY_UPLOAD_MAX_CHUNK_BYTES" default:"524288"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HELLOBUDDY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.LegacyHost == "" || db.LegacyUser == "" || db.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.LegacyUser),
		url.QueryEscape(db.LegacyPassword),
		db.LegacyHost,
		db.LegacyPort,
		db.LegacyName,
		db.LegacySSLMode,
	)
	return nil
}
