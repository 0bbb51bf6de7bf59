// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and FXCONV_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g. FXCONV_API_ACCESS_KEY
const EnvPrefix = "FXCONV"

// Config represents the complete application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Rates   RatesConfig   `mapstructure:"rates"`
	History HistoryConfig `mapstructure:"history"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the upstream exchange rate API settings
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	AccessKey  string        `mapstructure:"access_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// RatesConfig holds the refresh and throttle policy
type RatesConfig struct {
	DefaultBase        string        `mapstructure:"default_base"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	PollMultiplier     int           `mapstructure:"poll_multiplier"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
	RateLimitPenalty   time.Duration `mapstructure:"rate_limit_penalty"`
}

// HistoryConfig holds the historical series settings
type HistoryConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// StorageConfig selects and configures the key/value store
type StorageConfig struct {
	Driver string      `mapstructure:"driver"` // "badger" or "redis"
	Path   string      `mapstructure:"path"`
	Prefix string      `mapstructure:"prefix"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

// Load reads ./config.yaml or ./config/config.yaml when present, after
// loading envFiles (default .env) into the environment. Missing files are
// not an error.
func Load(envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles)

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path
func LoadFromFile(path string, envFiles ...string) (*Config, error) {
	loadEnvFiles(envFiles)

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Validate checks the values the services cannot run without
func (c *Config) Validate() error {
	if len(c.Rates.DefaultBase) != 3 || strings.ToUpper(c.Rates.DefaultBase) != c.Rates.DefaultBase {
		return fmt.Errorf("rates.default_base must be a 3-letter upper-case code, got %q", c.Rates.DefaultBase)
	}
	if c.Rates.RefreshInterval <= 0 {
		return errors.New("rates.refresh_interval must be positive")
	}
	if c.Rates.PollMultiplier < 1 {
		return errors.New("rates.poll_multiplier must be at least 1")
	}
	if c.Rates.MinRequestInterval < 0 || c.Rates.RateLimitPenalty < 0 {
		return errors.New("rates throttle durations must not be negative")
	}

	switch c.Storage.Driver {
	case "badger":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the badger driver")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The access key is also accepted under the name the upstream documents
	_ = v.BindEnv("api.access_key", EnvPrefix+"_API_ACCESS_KEY", "EXCHANGE_RATES_API_KEY")

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Rates.DefaultBase = strings.ToUpper(strings.TrimSpace(cfg.Rates.DefaultBase))
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	return &cfg, nil
}

// loadEnvFiles loads the given .env files, or ./.env when none are given.
// Variables already set in the environment win.
func loadEnvFiles(files []string) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		files = []string{".env"}
	}

	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// setDefaults sets sensible defaults for all config values
func setDefaults(v *viper.Viper) {
	// Upstream API defaults
	v.SetDefault("api.base_url", "https://api.exchangeratesapi.io/v1")
	v.SetDefault("api.access_key", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.max_retries", 3)

	// Rate policy defaults
	v.SetDefault("rates.default_base", "USD")
	v.SetDefault("rates.refresh_interval", 60*time.Minute)
	v.SetDefault("rates.poll_multiplier", 3)
	v.SetDefault("rates.min_request_interval", 10*time.Second)
	v.SetDefault("rates.rate_limit_penalty", 5*time.Minute)

	// History defaults
	v.SetDefault("history.cache_ttl", time.Hour)

	// Storage defaults
	v.SetDefault("storage.driver", "badger")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
}
