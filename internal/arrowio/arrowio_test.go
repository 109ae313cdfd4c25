package arrowio

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/ndarray/internal/tensor"
)

func TestFromArrowBorrowsMemory(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewFloat64Builder(mem)
	b.AppendValues([]float64{1, 2, 3, 4, 5, 6}, nil)
	arr := b.NewArray()
	b.Release()

	a, err := FromArrow(arr, 2, 3)
	require.NoError(t, err)
	arr.Release()

	assert.Equal(t, tensor.Float64, a.DType())
	assert.Equal(t, []int{2, 3}, a.Dims())
	v, err := tensor.GetAt[float64](a, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	// Arrow memory is immutable: the borrowed view rejects writes.
	assert.False(t, a.IsWriteable())
	assert.ErrorIs(t, tensor.SetAt(a, 42.0, 0, 0), tensor.ErrReadOnly)
	assert.Equal(t, 1.0, arr.(*array.Float64).Value(0))

	c, err := a.Clone()
	require.NoError(t, err)
	require.NoError(t, tensor.SetAt(c, 42.0, 0, 0))
	c.Release()
	assert.Equal(t, 1.0, arr.(*array.Float64).Value(0))

	tr := a.T()
	a.Release()
	assert.Greater(t, mem.CurrentAlloc(), 0)
	tr.Release()
}

func TestFromArrowSlice(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.AppendValues([]int32{10, 20, 30, 40, 50}, nil)
	arr := b.NewArray()
	defer arr.Release()

	sl := array.NewSlice(arr, 1, 4)
	defer sl.Release()

	a, err := FromArrow(sl)
	require.NoError(t, err)
	defer a.Release()
	got, err := tensor.ToSlice[int32](a)
	require.NoError(t, err)
	assert.Equal(t, []int32{20, 30, 40}, got)
}

func TestFromArrowBool(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues([]bool{true, false, true, true}, nil)
	arr := b.NewArray()
	defer arr.Release()

	a, err := FromArrow(arr, 2, 2)
	require.NoError(t, err)
	defer a.Release()
	got, err := tensor.ToSlice[bool](a)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, true}, got)
}

func TestFromArrowErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ib := array.NewInt64Builder(mem)
	defer ib.Release()
	ib.AppendValues([]int64{1, 0, 3}, []bool{true, false, true})
	nulls := ib.NewArray()
	defer nulls.Release()
	_, err := FromArrow(nulls)
	assert.ErrorIs(t, err, tensor.ErrUnsupported)

	sb := array.NewStringBuilder(mem)
	defer sb.Release()
	sb.Append("x")
	strs := sb.NewArray()
	defer strs.Release()
	_, err = FromArrow(strs)
	assert.ErrorIs(t, err, tensor.ErrType)

	ib.AppendValues([]int64{1, 2, 3}, nil)
	ints := ib.NewArray()
	defer ints.Release()
	_, err = FromArrow(ints, 2, 2)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestFromArrowEmpty(t *testing.T) {
	b := array.NewUint16Builder(memory.DefaultAllocator)
	defer b.Release()
	arr := b.NewArray()
	defer arr.Release()

	a, err := FromArrow(arr)
	require.NoError(t, err)
	defer a.Release()
	assert.Equal(t, tensor.Uint16, a.DType())
	assert.Equal(t, 0, a.Size())
}

func TestToArrow(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := tensor.FromSlice([]int16{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	defer a.Release()
	tr := a.T()
	defer tr.Release()

	out, err := ToArrow(tr, mem)
	require.NoError(t, err)
	defer out.Release()
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int16, out.DataType()))
	assert.Equal(t, []int16{1, 4, 2, 5, 3, 6}, out.(*array.Int16).Int16Values())
}

func TestToArrowTypes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	flags, err := tensor.FromSlice([]bool{true, false, true})
	require.NoError(t, err)
	defer flags.Release()
	out, err := ToArrow(flags, mem)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, "[true false true]", out.String())

	half, err := tensor.FromSlice([]float16.Float16{float16.Fromfloat32(1.5), float16.Fromfloat32(-2)})
	require.NoError(t, err)
	defer half.Release()
	hout, err := ToArrow(half, mem)
	require.NoError(t, err)
	defer hout.Release()
	assert.Equal(t, arrow.FLOAT16, hout.DataType().ID())
	assert.Equal(t, float32(1.5), hout.(*array.Float16).Value(0).Float32())

	s := tensor.Scalar(uint64(7))
	defer s.Release()
	sout, err := ToArrow(s, mem)
	require.NoError(t, err)
	defer sout.Release()
	assert.Equal(t, 1, sout.Len())

	back, err := FromArrow(sout)
	require.NoError(t, err)
	defer back.Release()
	assert.Equal(t, tensor.Uint64, back.DType())

	freed, err := tensor.Zeros(tensor.Float32, 2)
	require.NoError(t, err)
	freed.Release()
	_, err = ToArrow(freed, mem)
	assert.ErrorIs(t, err, tensor.ErrFreed)
}

func TestDataTypeOf(t *testing.T) {
	dt, err := DataTypeOf(arrow.PrimitiveTypes.Uint32)
	require.NoError(t, err)
	assert.Equal(t, tensor.Uint32, dt)

	_, err = DataTypeOf(arrow.PrimitiveTypes.Int8)
	assert.ErrorIs(t, err, tensor.ErrType)
}
