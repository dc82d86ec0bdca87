package config

import (
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_NAME", "APP_VERSION", "CORS_ORIGINS", "SERVER_BODY_LIMIT",
		"SERVER_SHUTDOWN_TIMEOUT", "SERVER_STACK_TRACE",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX",
		"JOBX_CONCURRENCY", "JOBX_QUEUES", "JOBX_POLL_INTERVAL", "JOBX_SHUTDOWN_TIMEOUT",
		"JOBX_DEQUEUE_TIMEOUT", "JOBX_DEFAULT_RETRY_DELAY", "JOBX_DEFAULT_MAX_RETRIES",
		"PROCESSOR_DELAY", "USERS_SOURCE", "USERS_COUNT", "USERS_REMOTE_URL",
		"USERS_REMOTE_PAGE_SIZE", "USERS_REMOTE_WORKERS", "USERS_REMOTE_RPS",
		"USERS_REMOTE_TIMEOUT", "USERS_REMOTE_RETRIES", "USERS_REMOTE_RETRY_BACKOFF",
		"AUTH_JWT_SECRET", "AUTH_ACCESS_TOKEN_TTL", "AUTH_ISSUER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	r := require.New(t)
	clearEnv(t)

	cfg, err := Load()
	r.NoError(err)
	r.Equal("8080", cfg.Server.Port)
	r.Equal(time.Second, cfg.Processor.Delay)
	r.Equal(UsersSourceMemory, cfg.Users.Source)
	r.Equal(100, cfg.Users.Count)
	r.False(cfg.Database.Enabled())
	r.False(cfg.Redis.Enabled())
	r.False(cfg.Auth.Enabled())
	r.Equal([]string{"default"}, cfg.Jobx.Queues)
	r.Len(cfg.Jobx.WorkerOptions(), 7)
}

func TestLoadFromEnv(t *testing.T) {
	r := require.New(t)
	clearEnv(t)
	t.Setenv("PROCESSOR_DELAY", "500")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("USERS_SOURCE", "Postgres")
	t.Setenv("JOBX_QUEUES", "default, , process")
	t.Setenv("USERS_REMOTE_RPS", "2.5")
	t.Setenv("SERVER_STACK_TRACE", "false")

	cfg, err := Load()
	r.NoError(err)
	r.Equal(500*time.Millisecond, cfg.Processor.Delay)
	r.Equal(UsersSourcePostgres, cfg.Users.Source)
	r.Equal("host=db port=6543 user=postgres password= dbname=userdesk sslmode=disable", cfg.Database.DSN())
	r.Equal("cache:6379", cfg.Redis.Address())
	r.Equal([]string{"default", "process"}, cfg.Jobx.Queues)
	r.Equal(2.5, cfg.Users.RemoteRPS)
	r.False(cfg.Server.StackTrace)
}

func TestMalformedValuesFallBack(t *testing.T) {
	r := require.New(t)
	clearEnv(t)
	t.Setenv("DB_PORT", "five")
	t.Setenv("PROCESSOR_DELAY", "soon")
	t.Setenv("SERVER_STACK_TRACE", "maybe")

	cfg, err := Load()
	r.NoError(err)
	r.Equal(5432, cfg.Database.Port)
	r.Equal(time.Second, cfg.Processor.Delay)
	r.True(cfg.Server.StackTrace)
}

func TestValidate(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown source":      {"USERS_SOURCE": "ldap"},
		"postgres without db": {"USERS_SOURCE": "postgres"},
		"negative delay":      {"PROCESSOR_DELAY": "-1s"},
		"no workers":          {"JOBX_CONCURRENCY": "0"},
		"short secret":        {"AUTH_JWT_SECRET": "short"},
		"remote without url":  {"USERS_SOURCE": "remote", "USERS_REMOTE_URL": " "},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			require.True(t, errx.IsCode(err, ErrInvalid))
		})
	}
}
