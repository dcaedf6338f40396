package ar

import (
	"io"
	"log/slog"
)

// Option adjusts how an Iterator is constructed.
type Option func(*options)

type options struct {
	// logger receives a debug record for every decoded header and for the error that ends an
	// iteration.
	logger *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used by the Iterator. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
