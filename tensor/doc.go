// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides N-dimensional typed arrays with NumPy semantics.
//
// # Overview
//
// An Array pairs a Shape (dimensions, strides, offset, view state) with a
// reference-counted memory Block. This package provides:
//   - Views that share memory: Reshape, Transpose, Slice, BroadcastTo
//   - NumPy-style broadcasting with zero-stride replication
//   - Typed element access with on-the-fly conversion
//   - Explicit lifetime control (Release, DangerousFree)
//
// Operations run through a cpu.Context, which dispatches each call to the
// engine of the operands' promoted data type.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/ndarray/backend/cpu"
//	    "github.com/born-ml/ndarray/tensor"
//	)
//
//	func main() {
//	    ctx := cpu.New()
//
//	    x, _ := tensor.Arange[float64](6).Reshape(2, 3)
//	    row, _ := tensor.FromSlice([]float64{10, 20, 30})
//
//	    y, _ := ctx.Add(x, row)                                   // (2, 3)
//	    s, _ := ctx.Sum(y, tensor.ReduceOptions{Axis: tensor.Axis(0)}) // (3,)
//	    fmt.Println(s)
//	}
//
// # Supported Data Types
//
//   - Bool
//   - Uint8, Uint16, Uint32, Uint64
//   - Int16, Int32, Int64
//   - Float16, Float32, Float64
//
// # Broadcasting
//
// Operands are aligned from the trailing axis; axes must be equal or 1:
//
//	(3, 1) + (3, 4) -> (3, 4)
//	(4,)   + (3, 4) -> (3, 4)
//	(3, 4) + (3, 5) -> ErrShapeMismatch
//
// # Memory Management
//
// Views share their parent's Block. Every Array holds one reference and
// Release drops it; the memory is freed or recycled when the last reference
// goes. Arrays not released are reclaimed by the garbage collector; scalar
// results drawn from a Context's pool hand their slot back when that happens.
package tensor
