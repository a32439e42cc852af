package repository

import (
	"runtime"

	"github.com/okian/rinkrank/pkg/logger"
)

type options struct {
	logger      logger.Logger
	concurrency int
}

func defaultOptions() options {
	return options{
		concurrency: runtime.NumCPU(),
	}
}

func (o *options) log() logger.Logger {
	if o.logger == nil {
		o.logger = logger.Get().Named("repository")
	}
	return o.logger
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithLogger sets the logger used while loading.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConcurrency bounds how many files are decoded at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
