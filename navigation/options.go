package navigation

import "go.uber.org/zap"

// Options tunes a Finder or Simplifier
type Options struct {
	// Logger receives per-expansion debug traces and reconstruction anomalies
	Logger *zap.Logger

	// MaxExpansions caps node expansions per query, 0 = unlimited
	MaxExpansions int
}

// Option is a function that modifies Options
type Option func(*Options)

// WithLogger injects a logger, nil keeps the no-op default
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// WithMaxExpansions bounds the work a single query may do
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

func buildOptions(opts []Option) Options {
	o := Options{Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
