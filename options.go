package nnsearch

import (
	"log/slog"

	"github.com/hupe1980/nnsearch/index"
)

type options struct {
	params           index.Params
	search           index.SearchParams
	capacity         int
	equal            any
	clone            any
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Searcher.
type Option func(*options)

// WithIndexParams selects the index variant and its tuning.
// The default is an exhaustive linear index.
func WithIndexParams(p index.Params) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithSearchParams sets the default query tuning.
func WithSearchParams(p index.SearchParams) Option {
	return func(o *options) {
		o.search = p
	}
}

// WithConfig applies index and search parameters loaded from YAML.
//
// Example:
//
//	cfg, _ := index.LoadConfigFile("nnsearch.yaml")
//	s, _ := nnsearch.New(dist, nnsearch.WithConfig(cfg))
func WithConfig(cfg index.Config) Option {
	return func(o *options) {
		o.params = cfg.Index
		o.search = cfg.Search
	}
}

// WithCapacity reserves room for n elements up front, avoiding growth
// rebuilds while the structure fills up to n.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithEqual sets the equality used by Remove to verify a match. The default
// is reflect.DeepEqual. T must be the element type of the Searcher.
func WithEqual[T any](equal func(a, b T) bool) Option {
	return func(o *options) {
		o.equal = equal
	}
}

// WithClone sets a copy function applied to every element on insert, so
// later changes to the caller's value do not reach the store. By default
// elements are stored as given. T must be the element type of the Searcher.
func WithClone[T any](clone func(T) T) Option {
	return func(o *options) {
		o.clone = clone
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nnsearch.BasicMetricsCollector{}
//	s, _ := nnsearch.NewLinear(dist, nnsearch.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Rebuilds: %d\n", stats.RebuildCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := nnsearch.NewJSONLogger(slog.LevelDebug)
//	s, _ := nnsearch.NewLinear(dist, nnsearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		params:           index.LinearParams{},
		search:           index.DefaultSearchParams(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
