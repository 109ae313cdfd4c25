// Package cpu implements the CPU engines and the Context that dispatches
// array operations to them.
package cpu

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Context owns the engine lookup table and the services operations use:
// logger, tracer and scalar pool. It replaces process-wide engine state;
// independent Contexts never share anything.
//
// A Context is safe for concurrent use as long as arrays are not mutated
// while another goroutine reads them.
type Context struct {
	engines []tensor.Engine
	logger  zerolog.Logger
	tracer  trace.Tracer
	pool    *tensor.StackedMemoryPool
	opts    Options
}

// New creates a Context from DefaultOptions modified by options.
func New(options ...Option) *Context {
	opts := DefaultOptions()
	for _, apply := range options {
		apply(&opts)
	}
	return NewWithOptions(opts)
}

// NewWithOptions creates a Context from opts.
func NewWithOptions(opts Options) *Context {
	if opts.Tracer == nil {
		opts.Tracer = DefaultOptions().Tracer
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	pool := opts.Pool
	if pool == nil {
		var metrics *tensor.PoolMetrics
		if opts.Registerer != nil {
			metrics = tensor.NewPoolMetrics(opts.Registerer)
		}
		pool = tensor.NewStackedMemoryPool(tensor.PoolConfig{
			Initial: opts.PoolSize,
			Debug:   opts.Debug,
			Metrics: metrics,
			Logger:  opts.Logger,
		})
	}

	c := &Context{
		engines: buildEngines(&allocator{pool: pool}, opts.Parallelism),
		logger:  opts.Logger,
		tracer:  opts.Tracer,
		pool:    pool,
		opts:    opts,
	}
	c.logger.Debug().
		Int("engines", len(c.engines)).
		Int("parallelism", opts.Parallelism).
		Bool("debug", opts.Debug).
		Msg("cpu context created")
	return c
}

// Engine returns the engine for dtype.
func (c *Context) Engine(dtype tensor.DataType) (tensor.Engine, error) {
	if !dtype.Valid() {
		return nil, tensor.Errorf(tensor.ErrType, "no engine for data type %d", int(dtype))
	}
	return c.engines[dtype], nil
}

// Pool returns the pool scalar results are allocated from.
func (c *Context) Pool() *tensor.StackedMemoryPool { return c.pool }

// Logger returns the Context's logger.
func (c *Context) Logger() zerolog.Logger { return c.logger }

// Options returns the options the Context was built with.
func (c *Context) Options() Options { return c.opts }

// start opens the span of one operation.
func (c *Context) start(op string, operands ...*tensor.Array) trace.Span {
	_, span := c.tracer.Start(context.Background(), "ndarray."+op)
	if span.IsRecording() {
		attrs := make([]attribute.KeyValue, 0, 2*len(operands))
		for i, a := range operands {
			attrs = append(attrs,
				attribute.String(fmt.Sprintf("operand.%d.dtype", i), a.DType().String()),
				attribute.String(fmt.Sprintf("operand.%d.shape", i), a.Shape().String()),
			)
		}
		span.SetAttributes(attrs...)
	}
	return span
}

// finish closes span, recording err or the result's type and shape.
func finish(span trace.Span, out *tensor.Array, err error) {
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case out != nil && span.IsRecording():
		span.SetAttributes(
			attribute.String("result.dtype", out.DType().String()),
			attribute.String("result.shape", out.Shape().String()),
		)
	}
	span.End()
}

// as returns a converted to dtype, and the function that releases the
// conversion. Arrays already of dtype are returned as is.
func (c *Context) as(a *tensor.Array, dtype tensor.DataType) (*tensor.Array, func(), error) {
	if a.DType() == dtype {
		return a, func() {}, nil
	}
	e, err := c.Engine(a.DType())
	if err != nil {
		return nil, nil, err
	}
	r, err := e.Cast(a, dtype)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Release, nil
}
