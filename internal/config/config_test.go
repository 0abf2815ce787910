package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", EnvTest)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SEED_DEMO_DATA", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Casdoor.Enabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", EnvTest)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "unknown db driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "unknown storage driver", mutate: func(c *Config) { c.Storage.Driver = "s3" }, wantErr: true},
		{name: "b2 without credentials", mutate: func(c *Config) { c.Storage.Driver = "b2" }, wantErr: true},
		{name: "production without secret", mutate: func(c *Config) {
			c.Environment = EnvProduction
			c.JWT.Secret = ""
		}, wantErr: true},
		{name: "production short secret", mutate: func(c *Config) {
			c.Environment = EnvProduction
			c.JWT.Secret = "short"
		}, wantErr: true},
		{name: "demo seed outside production", mutate: func(c *Config) { c.SeedDemoData = true }},
		{name: "demo seed in production", mutate: func(c *Config) {
			c.Environment = EnvProduction
			c.SeedDemoData = true
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Environment: EnvDevelopment,
				Database:    DatabaseConfig{Driver: "sqlite"},
				Storage:     StorageConfig{Driver: "bolt"},
				JWT:         JWTConfig{Secret: "0123456789abcdef", TTL: time.Hour},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
