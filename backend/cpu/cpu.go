// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/ndarray/internal/backend/cpu"
)

// Context dispatches operations to the per-type CPU engines.
type Context = internalcpu.Context

// DefaultEngine is the engine every typed engine falls back to.
type DefaultEngine = internalcpu.DefaultEngine

// Options configures a Context.
type Options = internalcpu.Options

// Option modifies Options.
type Option = internalcpu.Option

// New creates a CPU context.
//
// Example:
//
//	ctx := cpu.New(cpu.WithParallelism(4))
//	sum, err := ctx.Add(a, b)
func New(options ...Option) *Context {
	return internalcpu.New(options...)
}

// NewWithOptions creates a CPU context from explicit options.
func NewWithOptions(opts Options) *Context {
	return internalcpu.NewWithOptions(opts)
}

// Option constructors.
var (
	DefaultOptions        = internalcpu.DefaultOptions
	WithLogger            = internalcpu.WithLogger
	WithTracer            = internalcpu.WithTracer
	WithPool              = internalcpu.WithPool
	WithDebug             = internalcpu.WithDebug
	WithParallelism       = internalcpu.WithParallelism
	WithMetricsRegisterer = internalcpu.WithMetricsRegisterer
)
