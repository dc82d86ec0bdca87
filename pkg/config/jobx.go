package config

import (
	"time"

	"github.com/Abraxas-365/userdesk/pkg/jobx"
)

// JobxConfig configures the background job workers.
type JobxConfig struct {
	Concurrency       int
	Queues            []string
	PollInterval      time.Duration
	ShutdownTimeout   time.Duration
	DequeueTimeout    time.Duration
	DefaultRetryDelay time.Duration
	DefaultMaxRetries int
}

func loadJobxConfig() JobxConfig {
	return JobxConfig{
		Concurrency:       getEnvInt("JOBX_CONCURRENCY", 4),
		Queues:            getEnvStringSlice("JOBX_QUEUES", []string{"default"}),
		PollInterval:      getEnvDuration("JOBX_POLL_INTERVAL", time.Second),
		ShutdownTimeout:   getEnvDuration("JOBX_SHUTDOWN_TIMEOUT", 30*time.Second),
		DequeueTimeout:    getEnvDuration("JOBX_DEQUEUE_TIMEOUT", 5*time.Second),
		DefaultRetryDelay: getEnvDuration("JOBX_DEFAULT_RETRY_DELAY", 30*time.Second),
		DefaultMaxRetries: getEnvInt("JOBX_DEFAULT_MAX_RETRIES", 3),
	}
}

// WorkerOptions converts the config into jobx client options.
func (c JobxConfig) WorkerOptions() []jobx.WorkerOption {
	return []jobx.WorkerOption{
		jobx.WithConcurrency(c.Concurrency),
		jobx.WithQueues(c.Queues...),
		jobx.WithPollInterval(c.PollInterval),
		jobx.WithShutdownTimeout(c.ShutdownTimeout),
		jobx.WithDequeueTimeout(c.DequeueTimeout),
		jobx.WithDefaultRetryDelay(c.DefaultRetryDelay),
		jobx.WithDefaultMaxRetries(c.DefaultMaxRetries),
	}
}
