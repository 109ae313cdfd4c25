// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU engines for array operations.
//
// # Overview
//
// This package implements:
//   - One engine per data type, selected by type promotion
//   - Element-wise arithmetic, comparison and logic with broadcasting
//   - Axis reductions (sum, prod, mean, min, max, argmin, argmax, var, std)
//   - Matrix products through gonum BLAS for float32 and float64
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/ndarray/backend/cpu"
//	    "github.com/born-ml/ndarray/tensor"
//	)
//
//	func main() {
//	    ctx := cpu.New(cpu.WithLogger(logger))
//
//	    a, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, 2, 2)
//	    b, _ := tensor.FromSlice([]float32{0.5, 0.5}, 2)
//
//	    c, _ := ctx.Multiply(a, b) // float32, (2, 2)
//	    m, _ := ctx.MatMul(c, c)
//	}
//
// # Observability
//
// Each operation opens an OpenTelemetry span when a tracer is configured
// with WithTracer. Scalar pool activity is exported as Prometheus metrics
// when a registerer is configured with WithMetricsRegisterer.
package cpu
