package cpu

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/born-ml/ndarray/internal/tensor"
)

const tracerName = "github.com/born-ml/ndarray/backend/cpu"

// Options configures a Context.
type Options struct {
	// Logger receives engine and pool diagnostics.
	Logger zerolog.Logger

	// Tracer records one span per dispatched operation.
	Tracer trace.Tracer

	// Pool supplies scalar results. When nil the Context creates one.
	Pool *tensor.StackedMemoryPool

	// PoolSize is the initial slot count of a Context-created pool.
	PoolSize int

	// Registerer receives the metrics of a Context-created pool. Nil leaves
	// them unregistered.
	Registerer prometheus.Registerer

	// Debug turns memory pool handle violations into panics.
	Debug bool

	// Parallelism bounds the goroutines of data-parallel operations.
	Parallelism int
}

// DefaultOptions returns the options New starts from.
//
// Defaults:
//   - Logger: zerolog.Nop()
//   - Tracer: no-op
//   - PoolSize: 64
//   - Parallelism: GOMAXPROCS
func DefaultOptions() Options {
	return Options{
		Logger:      zerolog.Nop(),
		Tracer:      noop.NewTracerProvider().Tracer(tracerName),
		PoolSize:    64,
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Option modifies Options.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

// WithPool makes the Context allocate scalars from p.
func WithPool(p *tensor.StackedMemoryPool) Option {
	return func(o *Options) { o.Pool = p }
}

// WithDebug enables debug assertions.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

// WithParallelism bounds data-parallel operations to n goroutines.
func WithParallelism(n int) Option {
	return func(o *Options) { o.Parallelism = n }
}

// WithMetricsRegisterer registers the pool metrics with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registerer = reg }
}
