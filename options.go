package splitmap

import (
	"log/slog"

	"github.com/hupe1980/splitmap/permutation"
	"github.com/hupe1980/splitmap/prefix"
)

type options struct {
	partitions       int
	balanced         bool
	permutation      permutation.Permutation
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures executors, writers and query context builders.
// Options that do not apply to a constructor are ignored by it.
type Option func(*options)

func defaultOptions() options {
	return options{
		partitions:       prefix.PartitionCount(),
		permutation:      permutation.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.permutation == nil {
		o.permutation = permutation.Default()
	}
	if o.partitions < 1 {
		o.partitions = prefix.PartitionCount()
	}
	return o
}

// WithPartitions sets the number of partitions an Executor splits the key
// space into. It also bounds the number of goroutines working at once.
// Values below one select runtime.GOMAXPROCS(0).
func WithPartitions(n int) Option {
	return func(o *options) {
		o.partitions = n
	}
}

// WithBalancedPartitioning makes an Executor size partitions by the number
// of present keys instead of splitting the key space evenly. It changes how
// work is distributed, never the result.
func WithBalancedPartitioning() Option {
	return func(o *options) {
		o.balanced = true
	}
}

// WithPermutation sets the key permutation used by writers and query
// context builders. Pass nil for the default bit reversal.
func WithPermutation(p permutation.Permutation) Option {
	return func(o *options) {
		o.permutation = p
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &splitmap.BasicMetricsCollector{}
//	exec := splitmap.NewExecutor(splitmap.WithMetricsCollector(metrics))
//	// ... use exec ...
//	stats := metrics.GetStats()
//	fmt.Printf("Evaluations: %d, Avg latency: %dns\n", stats.EvaluateCount, stats.EvaluateAvgNanos)
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
//	logger := splitmap.NewJSONLogger(slog.LevelDebug)
//	exec := splitmap.NewExecutor(splitmap.WithLogger(logger))
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
