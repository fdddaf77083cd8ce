package worker

import (
	"github.com/openhoops/shotchart/pkg/logger"
)

// Option applies a configuration option to the ShotWorker.
type Option func(*ShotWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *ShotWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *ShotWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithProcessedHook registers a callback invoked after each successfully
// processed tap. The pool uses it to meter throughput.
func WithProcessedHook(fn func()) Option {
	return func(w *ShotWorker) {
		if fn != nil {
			w.onProcessed = fn
		}
	}
}
