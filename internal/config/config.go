// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by IDENTITY_PROVIDER and RECORD_STORE.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

// Session store names accepted by SESSION_STORE.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// TelegramBotToken is the Bot API token. Required by cmd/bot only.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	// TelegramPollTimeout is the long-poll timeout in seconds for getUpdates.
	TelegramPollTimeout int `mapstructure:"TELEGRAM_POLL_TIMEOUT"`
	// TelegramDebug turns on tgbotapi request logging.
	TelegramDebug bool `mapstructure:"TELEGRAM_DEBUG"`
	// DispatchWorkers is the number of shards updates are spread across; one user always lands on the same shard.
	DispatchWorkers int `mapstructure:"DISPATCH_WORKERS"`

	// HealthAddr is the address the gRPC health server listens on (e.g. :8081). Empty disables it.
	HealthAddr string `mapstructure:"HEALTH_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is json (production encoder) or console (development encoder).
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// SupabaseURL is the project URL (e.g. https://xyz.supabase.co).
	SupabaseURL string `mapstructure:"SUPABASE_URL"`
	// SupabaseServiceKey is the service_role key; required whenever a supabase backend is selected.
	SupabaseServiceKey string `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`
	// IdentityProvider selects where accounts are created: supabase or postgres.
	IdentityProvider string `mapstructure:"IDENTITY_PROVIDER"`
	// RecordStore selects where finished profiles are inserted: supabase or postgres.
	RecordStore string `mapstructure:"RECORD_STORE"`
	// StorageBucket is the object storage bucket for profile pictures.
	StorageBucket string `mapstructure:"STORAGE_BUCKET"`
	// AvatarMaxDimension bounds the longest edge of an uploaded picture, in pixels.
	AvatarMaxDimension int `mapstructure:"AVATAR_MAX_DIMENSION"`
	// AvatarJPEGQuality is the JPEG quality (1-100) used when re-encoding pictures.
	AvatarJPEGQuality int `mapstructure:"AVATAR_JPEG_QUALITY"`
	// HTTPTimeout is the client timeout for Supabase and file download requests (e.g. "30s").
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`

	// DatabaseURL is the Postgres DSN; required when a postgres backend is selected.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12. Used by the postgres identity provider.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// SessionStore selects the conversation state store: memory or redis.
	SessionStore string `mapstructure:"SESSION_STORE"`
	// RedisAddr is host:port of the Redis server used when SESSION_STORE=redis.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// RedisDB is the Redis logical database.
	RedisDB int `mapstructure:"REDIS_DB"`
	// SessionTTLRaw is the idle expiry of a session (e.g. "72h"); "0" keeps sessions until restart/eviction.
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Signup events (optional). When Kafka brokers are set, completed signups are emitted to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for signup events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without backend validation, for tools (migrate, worker) that need only a few keys.
func Read() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_POLL_TIMEOUT", 60)
	v.SetDefault("TELEGRAM_DEBUG", false)
	v.SetDefault("DISPATCH_WORKERS", 8)
	v.SetDefault("HEALTH_ADDR", ":8081")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_SERVICE_ROLE_KEY", "")
	v.SetDefault("IDENTITY_PROVIDER", BackendSupabase)
	v.SetDefault("RECORD_STORE", BackendSupabase)
	v.SetDefault("STORAGE_BUCKET", "avatars")
	v.SetDefault("AVATAR_MAX_DIMENSION", 1024)
	v.SetDefault("AVATAR_JPEG_QUALITY", 85)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "0")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "jobseeker-bot")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "jobseeker-signups")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "jobseeker-signup-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.IdentityProvider = strings.ToLower(strings.TrimSpace(cfg.IdentityProvider))
	cfg.RecordStore = strings.ToLower(strings.TrimSpace(cfg.RecordStore))
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	if cfg.DispatchWorkers <= 0 {
		cfg.DispatchWorkers = 1
	}
	return &cfg, nil
}

// Validate checks backend selection, credentials and numeric ranges.
func (c *Config) Validate() error {
	if err := checkBackend("IDENTITY_PROVIDER", c.IdentityProvider); err != nil {
		return err
	}
	if err := checkBackend("RECORD_STORE", c.RecordStore); err != nil {
		return err
	}
	if c.UsesSupabase() && (c.SupabaseURL == "" || c.SupabaseServiceKey == "") {
		return errors.New("config: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY must be set for the supabase backend")
	}
	if c.UsesPostgres() && c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set for the postgres backend")
	}

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR must be set when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("config: SESSION_STORE must be memory or redis, got %q", c.SessionStore)
	}

	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.AvatarJPEGQuality < 1 || c.AvatarJPEGQuality > 100 {
		return errors.New("config: AVATAR_JPEG_QUALITY must be between 1 and 100")
	}
	return nil
}

func checkBackend(key, value string) error {
	if value != BackendSupabase && value != BackendPostgres {
		return fmt.Errorf("config: %s must be supabase or postgres, got %q", key, value)
	}
	return nil
}

// UsesSupabase reports whether any collaborator talks to Supabase.
// Object storage always does when a project is configured.
func (c *Config) UsesSupabase() bool {
	return c.IdentityProvider == BackendSupabase || c.RecordStore == BackendSupabase
}

// UsesPostgres reports whether any collaborator needs DATABASE_URL.
func (c *Config) UsesPostgres() bool {
	return c.IdentityProvider == BackendPostgres || c.RecordStore == BackendPostgres
}

// StorageEnabled reports whether profile pictures can be uploaded to Supabase Storage.
// Without it every picture falls back to the Telegram file id.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != "" && c.StorageBucket != ""
}

// SessionTTL parses SessionTTLRaw as a time.Duration. Returns 0 (no expiry) if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// HTTPClientTimeout parses HTTPTimeout as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) HTTPClientTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the event stream is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
