package processx

import (
	"time"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
)

// DefaultDelay is the pause between two elements when no delay is given.
const DefaultDelay = time.Second

// Config holds the per-run settings of a [Processor].
type Config struct {
	// Delay is the wait applied after each element is announced.
	// Negative values are treated as zero.
	Delay time.Duration

	// Token, when set, lets the caller abort a run between elements.
	Token asyncx.Token

	// Reporter receives the notifications. Defaults to a [LogReporter].
	Reporter Reporter
}

func defaultConfig() Config {
	return Config{
		Delay:    DefaultDelay,
		Reporter: LogReporter{},
	}
}

// Option configures a Processor.
type Option func(*Config)

// WithDelay sets the per-element delay.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = max(d, 0)
	}
}

// WithToken sets the cancellation token observed by the run.
func WithToken(tok asyncx.Token) Option {
	return func(c *Config) {
		c.Token = tok
	}
}

// WithReporter sets where notifications are sent. A nil reporter
// discards them.
func WithReporter(r Reporter) Option {
	return func(c *Config) {
		if r == nil {
			r = Discard
		}
		c.Reporter = r
	}
}
