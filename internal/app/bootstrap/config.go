package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/application"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	StorageDriver string
	DatabaseURL   string
	RedisURL      string
	CachePrefix   string
	KafkaBrokers  []string

	MaxDBConns                  int32
	KafkaConsumerGroup          string
	KafkaTopicUserRegistered    string
	KafkaTopicUserDeleted       string
	KafkaTopicActivityRecorded  string
	KafkaTopicProfileUpdated    string
	KafkaTopicConnectionUpdated string

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	OutboxRetention      time.Duration
	ConsumerPollInterval time.Duration

	ProfileCacheTTL  time.Duration
	IdempotencyTTL   time.Duration
	EventDedupTTL    time.Duration
	SearchRateLimit  int
	SearchRateWindow time.Duration
	DefaultPageSize  int
	MaxPageSize      int
	Timezone         string

	JWTSigningKey   string
	JWTPublicKeyPEM string
	JWTIssuer       string
	EncryptionSeed  string
	LogLevel        string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`
		Timezone string `yaml:"timezone"`
	} `yaml:"service"`
	Storage struct {
		Driver      string `yaml:"driver"`
		CachePrefix string `yaml:"cache_prefix"`
	} `yaml:"storage"`
	Dependencies struct {
		PostgresURL                 string   `yaml:"postgres_url"`
		RedisURL                    string   `yaml:"redis_url"`
		KafkaBrokers                []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup          string   `yaml:"kafka_consumer_group"`
		KafkaTopicUserRegistered    string   `yaml:"kafka_topic_user_registered"`
		KafkaTopicUserDeleted       string   `yaml:"kafka_topic_user_deleted"`
		KafkaTopicActivityRecorded  string   `yaml:"kafka_topic_activity_recorded"`
		KafkaTopicProfileUpdated    string   `yaml:"kafka_topic_profile_updated"`
		KafkaTopicConnectionUpdated string   `yaml:"kafka_topic_connection_updated"`
	} `yaml:"dependencies"`
	Auth struct {
		Issuer       string `yaml:"issuer"`
		PublicKeyPEM string `yaml:"public_key_pem"`
	} `yaml:"auth"`
	Limits struct {
		SearchPerMinute int `yaml:"search_per_minute"`
		DefaultPageSize int `yaml:"default_page_size"`
		MaxPageSize     int `yaml:"max_page_size"`
	} `yaml:"limits"`
}

// LoadConfig layers defaults, the YAML file at path (optional) and then
// environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                   "M120-School-Profile-Service",
		HTTPPort:                    8080,
		GRPCPort:                    9090,
		StorageDriver:               StoragePostgres,
		CachePrefix:                 "m120:",
		MaxDBConns:                  20,
		KafkaConsumerGroup:          "m120-school-profile-service",
		KafkaTopicUserRegistered:    "user.registered",
		KafkaTopicUserDeleted:       "user.deleted",
		KafkaTopicActivityRecorded:  "school.activity_recorded",
		KafkaTopicProfileUpdated:    "user.profile_updated",
		KafkaTopicConnectionUpdated: "connection.updated",
		OutboxPollInterval:          2 * time.Second,
		OutboxBatchSize:             100,
		OutboxRetention:             7 * 24 * time.Hour,
		ConsumerPollInterval:        2 * time.Second,
		ProfileCacheTTL:             5 * time.Minute,
		IdempotencyTTL:              7 * 24 * time.Hour,
		EventDedupTTL:               7 * 24 * time.Hour,
		SearchRateLimit:             60,
		SearchRateWindow:            time.Minute,
		DefaultPageSize:             20,
		MaxPageSize:                 100,
		Timezone:                    "UTC",
		EncryptionSeed:              "m120-default-seed",
		LogLevel:                    "info",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		applyFile(&cfg, f)
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(envOrDefault("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.CachePrefix = envOrDefault("CACHE_PREFIX", cfg.CachePrefix)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaTopicUserRegistered = envOrDefault("KAFKA_TOPIC_USER_REGISTERED", cfg.KafkaTopicUserRegistered)
	cfg.KafkaTopicUserDeleted = envOrDefault("KAFKA_TOPIC_USER_DELETED", cfg.KafkaTopicUserDeleted)
	cfg.KafkaTopicActivityRecorded = envOrDefault("KAFKA_TOPIC_ACTIVITY_RECORDED", cfg.KafkaTopicActivityRecorded)
	cfg.KafkaTopicProfileUpdated = envOrDefault("KAFKA_TOPIC_PROFILE_UPDATED", cfg.KafkaTopicProfileUpdated)
	cfg.KafkaTopicConnectionUpdated = envOrDefault("KAFKA_TOPIC_CONNECTION_UPDATED", cfg.KafkaTopicConnectionUpdated)
	cfg.JWTSigningKey = envOrDefault("JWT_SIGNING_KEY", cfg.JWTSigningKey)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.EncryptionSeed = envOrDefault("ENCRYPTION_SEED", cfg.EncryptionSeed)
	cfg.Timezone = envOrDefault("PROFILE_TIMEZONE", cfg.Timezone)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxRetention = time.Duration(envInt("OUTBOX_RETENTION_HOURS", int(cfg.OutboxRetention.Hours()))) * time.Hour
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.ProfileCacheTTL = time.Duration(envInt("PROFILE_CACHE_SECONDS", int(cfg.ProfileCacheTTL.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour
	cfg.SearchRateLimit = envInt("SEARCH_RATE_LIMIT_PER_MINUTE", cfg.SearchRateLimit)
	cfg.DefaultPageSize = envInt("DEFAULT_PAGE_SIZE", cfg.DefaultPageSize)
	cfg.MaxPageSize = envInt("MAX_PAGE_SIZE", cfg.MaxPageSize)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Service.LogLevel != "" {
		cfg.LogLevel = f.Service.LogLevel
	}
	if f.Service.Timezone != "" {
		cfg.Timezone = f.Service.Timezone
	}
	if f.Storage.Driver != "" {
		cfg.StorageDriver = f.Storage.Driver
	}
	if f.Storage.CachePrefix != "" {
		cfg.CachePrefix = f.Storage.CachePrefix
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaConsumerGroup != "" {
		cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
	}
	if f.Dependencies.KafkaTopicUserRegistered != "" {
		cfg.KafkaTopicUserRegistered = f.Dependencies.KafkaTopicUserRegistered
	}
	if f.Dependencies.KafkaTopicUserDeleted != "" {
		cfg.KafkaTopicUserDeleted = f.Dependencies.KafkaTopicUserDeleted
	}
	if f.Dependencies.KafkaTopicActivityRecorded != "" {
		cfg.KafkaTopicActivityRecorded = f.Dependencies.KafkaTopicActivityRecorded
	}
	if f.Dependencies.KafkaTopicProfileUpdated != "" {
		cfg.KafkaTopicProfileUpdated = f.Dependencies.KafkaTopicProfileUpdated
	}
	if f.Dependencies.KafkaTopicConnectionUpdated != "" {
		cfg.KafkaTopicConnectionUpdated = f.Dependencies.KafkaTopicConnectionUpdated
	}
	if f.Auth.Issuer != "" {
		cfg.JWTIssuer = f.Auth.Issuer
	}
	if f.Auth.PublicKeyPEM != "" {
		cfg.JWTPublicKeyPEM = f.Auth.PublicKeyPEM
	}
	if f.Limits.SearchPerMinute > 0 {
		cfg.SearchRateLimit = f.Limits.SearchPerMinute
	}
	if f.Limits.DefaultPageSize > 0 {
		cfg.DefaultPageSize = f.Limits.DefaultPageSize
	}
	if f.Limits.MaxPageSize > 0 {
		cfg.MaxPageSize = f.Limits.MaxPageSize
	}
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing DB_URL/POSTGRES_URL")
		}
		if c.RedisURL == "" {
			return fmt.Errorf("missing REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTSigningKey == "" && c.JWTPublicKeyPEM == "" {
		return fmt.Errorf("missing JWT_SIGNING_KEY")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid PROFILE_TIMEZONE: %w", err)
	}
	return nil
}

// TopicEvents maps configured broker topics back to the event types the
// application understands.
func (c Config) TopicEvents() map[string]string {
	return map[string]string{
		c.KafkaTopicUserRegistered:   application.EventUserRegistered,
		c.KafkaTopicUserDeleted:      application.EventUserDeleted,
		c.KafkaTopicActivityRecorded: application.EventActivityRecorded,
	}
}

// PublishTopics maps outbound event types to their configured topics.
func (c Config) PublishTopics() map[string]string {
	return map[string]string{
		application.EventProfileUpdated:    c.KafkaTopicProfileUpdated,
		application.EventConnectionUpdated: c.KafkaTopicConnectionUpdated,
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	items := strings.Split(raw, ",")
	return trimNonEmpty(items)
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
