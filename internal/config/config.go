package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends selectable with TODO_STORE.
const (
	StoreSQL    = "sql"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     string
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig describes the relational store. URL is normalized by the
// database package before use.
type DatabaseConfig struct {
	URL             string
	SSLMode         string
	PoolRecycle     time.Duration
	MaxOpenConns    int
	ConnectAttempts int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type CacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when TODO_STORE=sql")

// SecureSSLMode reports whether a libpq sslmode always encrypts the connection.
func SecureSSLMode(mode string) bool {
	switch mode {
	case "require", "verify-ca", "verify-full":
		return true
	}
	return false
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TODO_STORE", StoreSQL)
	v.SetDefault("DATABASE_SSLMODE", "require")
	v.SetDefault("DATABASE_POOL_RECYCLE_SECONDS", 300)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_CONNECT_ATTEMPTS", 5)
	v.SetDefault("MONGODB_DATABASE", "todo")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL_SECONDS", 15)
	v.SetDefault("CACHE_KEY_PREFIX", "")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: strings.ToLower(strings.TrimSpace(v.GetString("TODO_STORE"))),
		Database: DatabaseConfig{
			URL:             strings.TrimSpace(v.GetString("DATABASE_URL")),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			PoolRecycle:     time.Duration(v.GetInt("DATABASE_POOL_RECYCLE_SECONDS")) * time.Second,
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnectAttempts: v.GetInt("DATABASE_CONNECT_ATTEMPTS"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("CACHE_ENABLED"),
			TTL:       time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
			KeyPrefix: v.GetString("CACHE_KEY_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreSQL:
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
		if !SecureSSLMode(c.Database.SSLMode) {
			return fmt.Errorf("DATABASE_SSLMODE %q must be require, verify-ca or verify-full", c.Database.SSLMode)
		}
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI is required when TODO_STORE=mongo")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown TODO_STORE %q (want sql, mongo or memory)", c.Store)
	}
	if c.Database.ConnectAttempts < 1 {
		c.Database.ConnectAttempts = 1
	}
	return nil
}
