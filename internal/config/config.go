package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	ServiceName string

	Database DatabaseConfig
	RedisURL string
	JWT      JWTConfig
	Casdoor  CasdoorConfig
	Kafka    KafkaConfig
	Storage  StorageConfig

	SeedDemoData  bool
	MaxUploadSize int64
}

type DatabaseConfig struct {
	Driver       string // postgres | sqlite
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// CasdoorConfig holds the managed identity service connection settings.
// An empty Endpoint selects the built-in local identity provider.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != ""
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

type StorageConfig struct {
	Driver   string // bolt | b2
	BoltPath string
	B2KeyID  string
	B2AppKey string
	B2Bucket string
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", EnvDevelopment),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		ServiceName: getEnv("SERVICE_NAME", "learning-portal-service"),
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			DSN:          getEnv("DATABASE_URL", "portal.db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			LogQueries:   getEnvBool("DB_LOG_QUERIES", false),
		},
		RedisURL: getEnv("REDIS_URL", ""),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "learning-portal"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERT", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(getEnv("KAFKA_BROKERS", "")),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "portal"),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", "bolt"),
			BoltPath: getEnv("STORAGE_BOLT_PATH", "uploads.db"),
			B2KeyID:  getEnv("B2_KEY_ID", ""),
			B2AppKey: getEnv("B2_APP_KEY", ""),
			B2Bucket: getEnv("B2_BUCKET", ""),
		},
		SeedDemoData:  getEnvBool("SEED_DEMO_DATA", false),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 25)) << 20,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "bolt":
	case "b2":
		if c.Storage.B2KeyID == "" || c.Storage.B2AppKey == "" || c.Storage.B2Bucket == "" {
			return fmt.Errorf("b2 storage requires B2_KEY_ID, B2_APP_KEY and B2_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWT.Secret = "development-only-signing-secret"
	}
	if c.IsProduction() && len(c.JWT.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if c.SeedDemoData && c.IsProduction() {
		return fmt.Errorf("SEED_DEMO_DATA must not be enabled in production")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
