// Package config loads application configuration from a YAML file and the
// environment. Environment variables use the RICEPROTEK_ prefix with dots
// replaced by underscores, e.g. RICEPROTEK_DATABASE_PASSWORD.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Ingestion IngestionConfig `yaml:"ingestion" mapstructure:"ingestion"`
	NASAPower NASAPowerConfig `yaml:"nasa_power" mapstructure:"nasa_power"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host                string   `yaml:"host" mapstructure:"host"`
	Port                int      `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs     int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs    int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// DatabaseConfig configures the PostgreSQL connection pool
type DatabaseConfig struct {
	Host            string `yaml:"host" mapstructure:"host"`
	Port            int    `yaml:"port" mapstructure:"port"`
	User            string `yaml:"user" mapstructure:"user"`
	Password        string `yaml:"password" mapstructure:"password"`
	Name            string `yaml:"name" mapstructure:"name"`
	SSLMode         string `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifeMins int    `yaml:"conn_max_life_mins" mapstructure:"conn_max_life_mins"`
	ConnMaxIdleMins int    `yaml:"conn_max_idle_mins" mapstructure:"conn_max_idle_mins"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// IngestionConfig configures the dataset upload pipeline
type IngestionConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// NASAPowerConfig configures the NASA POWER API client
type NASAPowerConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Load reads configuration from config.yaml (optional) and the environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/riceprotek")

	v.SetEnvPrefix("RICEPROTEK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_secs", 30)
	v.SetDefault("server.write_timeout_secs", 60)
	v.SetDefault("server.shutdown_timeout_secs", 15)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "riceprotek")
	v.SetDefault("database.name", "riceprotek")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_life_mins", 30)
	v.SetDefault("database.conn_max_idle_mins", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("ingestion.max_upload_bytes", int64(32<<20))
	v.SetDefault("nasa_power.base_url", "https://power.larc.nasa.gov/api/temporal/daily/point")
	v.SetDefault("nasa_power.timeout_secs", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that cannot possibly work
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingestion max_upload_bytes must be positive")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConnMaxLifetime returns the pool connection lifetime as a duration
func (c *DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeMins) * time.Minute
}

// ConnMaxIdleTime returns the pool idle timeout as a duration
func (c *DatabaseConfig) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.ConnMaxIdleMins) * time.Minute
}

// Timeout returns the NASA POWER client timeout as a duration
func (c *NASAPowerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}
