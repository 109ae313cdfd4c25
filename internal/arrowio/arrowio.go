// Package arrowio builds arrays over Apache Arrow memory and exports arrays
// back to Arrow.
package arrowio

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/born-ml/ndarray/internal/tensor"
)

var fromArrowTypes = map[arrow.Type]tensor.DataType{
	arrow.BOOL:    tensor.Bool,
	arrow.UINT8:   tensor.Uint8,
	arrow.INT16:   tensor.Int16,
	arrow.UINT16:  tensor.Uint16,
	arrow.INT32:   tensor.Int32,
	arrow.UINT32:  tensor.Uint32,
	arrow.INT64:   tensor.Int64,
	arrow.UINT64:  tensor.Uint64,
	arrow.FLOAT16: tensor.Float16,
	arrow.FLOAT32: tensor.Float32,
	arrow.FLOAT64: tensor.Float64,
}

var toArrowTypes = [...]arrow.DataType{
	tensor.Bool:    arrow.FixedWidthTypes.Boolean,
	tensor.Uint8:   arrow.PrimitiveTypes.Uint8,
	tensor.Int16:   arrow.PrimitiveTypes.Int16,
	tensor.Uint16:  arrow.PrimitiveTypes.Uint16,
	tensor.Int32:   arrow.PrimitiveTypes.Int32,
	tensor.Uint32:  arrow.PrimitiveTypes.Uint32,
	tensor.Int64:   arrow.PrimitiveTypes.Int64,
	tensor.Uint64:  arrow.PrimitiveTypes.Uint64,
	tensor.Float16: arrow.FixedWidthTypes.Float16,
	tensor.Float32: arrow.PrimitiveTypes.Float32,
	tensor.Float64: arrow.PrimitiveTypes.Float64,
}

// DataTypeOf returns the element type matching an Arrow type.
func DataTypeOf(dt arrow.DataType) (tensor.DataType, error) {
	t, ok := fromArrowTypes[dt.ID()]
	if !ok {
		return 0, tensor.Errorf(tensor.ErrType, "arrow type %s has no array equivalent", dt)
	}
	return t, nil
}

// FromArrow returns an array of dims over the values of arr. Without dims
// the array is 1-D.
//
// Numeric arrays are borrowed without copying: arr is retained, and
// released when the last view of the returned array is released. Arrow
// buffers are immutable, so the borrowed array is read-only; Copy or Clone
// it to modify elements. Boolean arrays are bit-packed in Arrow and are
// unpacked into owned memory. Arrays with nulls are rejected.
func FromArrow(arr arrow.Array, dims ...int) (*tensor.Array, error) {
	dtype, err := DataTypeOf(arr.DataType())
	if err != nil {
		return nil, err
	}
	if arr.NullN() > 0 {
		return nil, tensor.Errorf(tensor.ErrUnsupported, "arrow array has %d nulls", arr.NullN())
	}
	if len(dims) == 0 {
		dims = []int{arr.Len()}
	}

	if dtype == tensor.Bool {
		b, ok := arr.(*array.Boolean)
		if !ok {
			return nil, tensor.Errorf(tensor.ErrType, "unexpected boolean array implementation %T", arr)
		}
		values := make([]bool, b.Len())
		for i := range values {
			values[i] = b.Value(i)
		}
		return tensor.FromSlice(values, dims...)
	}
	if arr.Len() == 0 {
		return tensor.Empty(dtype, dims...)
	}

	data := arr.Data()
	item := dtype.Size()
	start := data.Offset() * item
	raw := data.Buffers()[1].Bytes()[start : start+arr.Len()*item]

	arr.Retain()
	block, err := tensor.WrapReadOnlyBytes(dtype, raw, arr.Release)
	if err != nil {
		arr.Release()
		return nil, err
	}
	// Releasing the block on failure runs arr.Release.
	a, err := tensor.FromBlock(block, dims...)
	if err != nil {
		block.Release()
		return nil, err
	}
	return a, nil
}

// ToArrow copies the elements of a, in logical row-major order, into a new
// 1-D Arrow array allocated from mem. The caller owns the result.
func ToArrow(a *tensor.Array, mem memory.Allocator) (arrow.Array, error) {
	if a.IsFreed() {
		return nil, tensor.ErrFreed
	}
	if a.DType() == tensor.Bool {
		values, err := tensor.ToSlice[bool](a)
		if err != nil {
			return nil, err
		}
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(values, nil)
		return b.NewArray(), nil
	}

	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	buf.Resize(a.Size() * a.DType().Size())
	if a.Size() > 0 {
		dst, err := tensor.WrapBytes(a.DType(), buf.Bytes(), nil)
		if err != nil {
			return nil, err
		}
		tensor.CopyElements(dst, a.Block(), a.Shape())
		dst.Release()
	}

	data := array.NewData(toArrowTypes[a.DType()], a.Size(), []*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.MakeFromData(data), nil
}
