// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/ndarray/internal/tensor"
)

// Type aliases for public API

// Number is the constraint of element types with arithmetic.
type Number = tensor.Number

// Element is the constraint of every storage element type.
type Element = tensor.Element

// DataType identifies the element type of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Bool    DataType = tensor.Bool
	Uint8   DataType = tensor.Uint8
	Int16   DataType = tensor.Int16
	Uint16  DataType = tensor.Uint16
	Int32   DataType = tensor.Int32
	Uint32  DataType = tensor.Uint32
	Int64   DataType = tensor.Int64
	Uint64  DataType = tensor.Uint64
	Float16 DataType = tensor.Float16
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape describes dimensions, strides and view state.
type Shape = tensor.Shape

// Layout is the memory order of a contiguous shape.
type Layout = tensor.Layout

// Layouts.
const (
	RowMajor    Layout = tensor.RowMajor
	ColumnMajor Layout = tensor.ColumnMajor
)

// Range selects elements along one axis when slicing.
type Range = tensor.Range

// Unset marks an omitted slice bound.
const Unset = tensor.Unset

// Array is an N-dimensional typed view over a memory block.
type Array = tensor.Array

// Block is a reference-counted typed memory window.
type Block = tensor.Block

// Engine implements the operation surface of one element type.
type Engine = tensor.Engine

// ReduceOptions configures a reduction.
type ReduceOptions = tensor.ReduceOptions

// Iterator walks an array's elements in logical order.
type Iterator[T Element] = tensor.Iterator[T]

// Incrementor is a row-major multi-index odometer.
type Incrementor = tensor.Incrementor

// StackedMemoryPool is an arena of scalar-sized slots.
type StackedMemoryPool = tensor.StackedMemoryPool

// PoolConfig configures a StackedMemoryPool.
type PoolConfig = tensor.PoolConfig

// PoolHandle identifies a slot taken from a pool.
type PoolHandle = tensor.PoolHandle

// PoolMetrics exports pool activity to Prometheus.
type PoolMetrics = tensor.PoolMetrics

// Error kinds; select with errors.Is.
var (
	ErrShapeMismatch   = tensor.ErrShapeMismatch
	ErrAxisOutOfRange  = tensor.ErrAxisOutOfRange
	ErrIndexOutOfRange = tensor.ErrIndexOutOfRange
	ErrReadOnly        = tensor.ErrReadOnly
	ErrType            = tensor.ErrType
	ErrUnsupported     = tensor.ErrUnsupported
	ErrNotImplemented  = tensor.ErrNotImplemented
	ErrFreed           = tensor.ErrFreed
	ErrForeignHandle   = tensor.ErrForeignHandle
	ErrDoubleReturn    = tensor.ErrDoubleReturn
)

// Shapes and broadcasting.
var (
	NewShape       = tensor.NewShape
	NewShapeLayout = tensor.NewShapeLayout
	ScalarShape    = tensor.ScalarShape
	Broadcast      = tensor.Broadcast
	BroadcastDims  = tensor.BroadcastDims
	BroadcastMany  = tensor.BroadcastMany
	All            = tensor.All
	Span           = tensor.Span
	Stride         = tensor.Stride
	At             = tensor.At
	Axis           = tensor.Axis
	DTypeOf        = tensor.DTypeOf
	Promote        = tensor.Promote
	ParseDataType  = tensor.ParseDataType
	DataTypes      = tensor.DataTypes
)

// Construction.
var (
	Empty             = tensor.Empty
	Zeros             = tensor.Zeros
	Wrap              = tensor.Wrap
	FromBlock         = tensor.FromBlock
	NewArray          = tensor.NewArray
	Allocate          = tensor.Allocate
	WrapBytes         = tensor.WrapBytes
	WrapReadOnlyBytes = tensor.WrapReadOnlyBytes
)

// Memory pooling.
var (
	NewStackedMemoryPool = tensor.NewStackedMemoryPool
	NewPoolMetrics       = tensor.NewPoolMetrics
)

// Full allocates an array of dims filled with value.
func Full[T Element](value T, dims ...int) (*Array, error) {
	return tensor.Full(value, dims...)
}

// Arange returns the 1-D array [0, n).
func Arange[T Number](n int) *Array {
	return tensor.Arange[T](n)
}

// FromSlice copies data into a new array of dims.
func FromSlice[T Element](data []T, dims ...int) (*Array, error) {
	return tensor.FromSlice(data, dims...)
}

// Scalar creates a 0-dimensional array.
func Scalar[T Element](v T) *Array {
	return tensor.Scalar(v)
}

// GetAt reads the element at coords as T.
func GetAt[T Element](a *Array, coords ...int) (T, error) {
	return tensor.GetAt[T](a, coords...)
}

// GetFlat reads the element at logical position i as T.
func GetFlat[T Element](a *Array, i int) (T, error) {
	return tensor.GetFlat[T](a, i)
}

// SetAt stores v at coords.
func SetAt[T Element](a *Array, v T, coords ...int) error {
	return tensor.SetAt(a, v, coords...)
}

// ToSlice returns the elements in logical order as T.
func ToSlice[T Element](a *Array) ([]T, error) {
	return tensor.ToSlice[T](a)
}

// CopyTo writes the elements in logical order into dst.
func CopyTo[T Element](a *Array, dst []T) error {
	return tensor.CopyTo(a, dst)
}

// Iterate returns an iterator over a's elements converted to T.
func Iterate[T Element](a *Array) *Iterator[T] {
	return tensor.Iterate[T](a)
}
