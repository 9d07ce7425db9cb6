package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/consul-service/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger           *logger.Logger
	gracefulTimeout  *time.Duration
	summaryWriter    io.Writer
	summaryWriterSet bool
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is auto-initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithSummaryWriter redirects the startup summary. A nil writer disables it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryWriter = w
		o.summaryWriterSet = true
	}
}
