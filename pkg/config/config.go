// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CONFIG")

var ErrInvalid = ErrRegistry.Register("INVALID", errx.TypeValidation, 0, "Invalid configuration")

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Jobx      JobxConfig
	Processor ProcessorConfig
	Users     UsersConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port            string
	AppName         string
	Version         string
	CORSOrigins     string
	BodyLimit       int
	ShutdownTimeout time.Duration
	// StackTrace makes the recover middleware log panics with a stack.
	StackTrace bool
}

// DatabaseConfig configures Postgres. An empty Host disables it.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) Enabled() bool { return d.Host != "" }

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures Redis. An empty Host disables it.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ProcessorConfig configures the number processor.
type ProcessorConfig struct {
	Delay time.Duration
}

// User sources.
const (
	UsersSourceMemory   = "memory"
	UsersSourcePostgres = "postgres"
	UsersSourceRemote   = "remote"
)

type UsersConfig struct {
	Source string
	// Count is the number of generated users the memory source starts with.
	Count              int
	RemoteURL          string
	RemotePageSize     int
	RemoteWorkers      int
	RemoteRPS          float64
	RemoteTimeout      time.Duration
	RemoteRetries      int
	RemoteRetryBackoff time.Duration
}

// AuthConfig configures bearer token auth. An empty JWTSecret disables it.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	Issuer         string
}

func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AppName:         getEnv("APP_NAME", "userdesk"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			StackTrace:      getEnvBool("SERVER_STACK_TRACE", true),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", ""),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "userdesk"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "userdesk"),
		},
		Jobx: loadJobxConfig(),
		Processor: ProcessorConfig{
			Delay: getEnvDuration("PROCESSOR_DELAY", time.Second),
		},
		Users: UsersConfig{
			Source:             strings.ToLower(getEnv("USERS_SOURCE", UsersSourceMemory)),
			Count:              getEnvInt("USERS_COUNT", 100),
			RemoteURL:          strings.TrimSpace(getEnv("USERS_REMOTE_URL", "https://dummyjson.com/users")),
			RemotePageSize:     getEnvInt("USERS_REMOTE_PAGE_SIZE", 30),
			RemoteWorkers:      getEnvInt("USERS_REMOTE_WORKERS", 4),
			RemoteRPS:          getEnvFloat("USERS_REMOTE_RPS", 10),
			RemoteTimeout:      getEnvDuration("USERS_REMOTE_TIMEOUT", 10*time.Second),
			RemoteRetries:      getEnvInt("USERS_REMOTE_RETRIES", 3),
			RemoteRetryBackoff: getEnvDuration("USERS_REMOTE_RETRY_BACKOFF", 200*time.Millisecond),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			AccessTokenTTL: getEnvDuration("AUTH_ACCESS_TOKEN_TTL", 15*time.Minute),
			Issuer:         getEnv("AUTH_ISSUER", "userdesk"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	invalid := func(key, reason string) error {
		return ErrRegistry.New(ErrInvalid).
			WithDetail("key", key).
			WithDetail("reason", reason)
	}

	switch c.Users.Source {
	case UsersSourceMemory, UsersSourceRemote:
	case UsersSourcePostgres:
		if !c.Database.Enabled() {
			return invalid("USERS_SOURCE", "postgres source requires DB_HOST")
		}
	default:
		return invalid("USERS_SOURCE", "must be memory, postgres or remote")
	}

	if c.Users.Source == UsersSourceRemote && c.Users.RemoteURL == "" {
		return invalid("USERS_REMOTE_URL", "required for the remote source")
	}
	if c.Processor.Delay < 0 {
		return invalid("PROCESSOR_DELAY", "must not be negative")
	}
	if c.Jobx.Concurrency < 1 {
		return invalid("JOBX_CONCURRENCY", "must be at least 1")
	}
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return invalid("AUTH_JWT_SECRET", "must be at least 32 bytes")
	}
	return nil
}
