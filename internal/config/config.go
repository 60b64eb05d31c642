package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	Janitor   JanitorConfig   `yaml:"janitor"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	// DSN is a SQLite file path or a postgres:// URL.
	DSN         string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpen     int           `yaml:"max_open" env:"DB_MAX_OPEN"`
	MaxIdle     int           `yaml:"max_idle" env:"DB_MAX_IDLE"`
	MaxLifetime time.Duration `yaml:"max_lifetime" env:"DB_MAX_LIFETIME"`
	Migrate     bool          `yaml:"migrate" env:"DB_MIGRATE"`
	Seed        bool          `yaml:"seed" env:"DB_SEED"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	File   string `yaml:"file" env:"LOG_FILE"`
}

type CacheConfig struct {
	Driver     string        `yaml:"driver" env:"CACHE_DRIVER"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_TTL"`
}

type RateLimitConfig struct {
	Driver string `yaml:"driver" env:"RATE_LIMIT_DRIVER"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type AuthConfig struct {
	// Secret enables bearer-token checks on write routes when non-empty.
	Secret   string        `yaml:"secret" env:"ACCESS_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"ACCESS_TTL"`
}

type ThrottleConfig struct {
	RPS   float64 `yaml:"rps" env:"THROTTLE_RPS"`
	Burst int     `yaml:"burst" env:"THROTTLE_BURST"`
}

type JanitorConfig struct {
	Schedule string `yaml:"schedule" env:"JANITOR_SCHEDULE"`
}

const (
	DriverSQL   = "sql"
	DriverRedis = "redis"
)

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "4000",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:         "data/database.sqlite",
			MaxOpen:     25,
			MaxIdle:     25,
			MaxLifetime: 5 * time.Minute,
			Migrate:     true,
			Seed:        true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Driver:     DriverSQL,
			DefaultTTL: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Driver: DriverSQL,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			TokenTTL: 15 * time.Minute,
		},
		Janitor: JanitorConfig{
			Schedule: "@every 5m",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if !validDriver(c.Cache.Driver) {
		return fmt.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	if !validDriver(c.RateLimit.Driver) {
		return fmt.Errorf("config: unknown rate_limit driver %q", c.RateLimit.Driver)
	}
	if c.Cache.DefaultTTL <= 0 {
		return errors.New("config: cache.default_ttl must be positive")
	}
	if c.Throttle.RPS < 0 {
		return errors.New("config: throttle.rps must not be negative")
	}
	if c.Throttle.RPS > 0 && c.Throttle.Burst < 1 {
		return errors.New("config: throttle.burst must be at least 1 when throttling is enabled")
	}
	return nil
}

func validDriver(d string) bool {
	return d == DriverSQL || d == DriverRedis
}
