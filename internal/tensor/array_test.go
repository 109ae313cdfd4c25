package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayConstructors(t *testing.T) {
	z, err := Zeros(Float32, 2, 3)
	require.NoError(t, err)
	defer z.Release()
	assert.Equal(t, Float32, z.DType())
	assert.Equal(t, []int{2, 3}, z.Dims())
	assert.Equal(t, 6, z.Size())
	assert.Equal(t, 2, z.NDim())
	vals, err := ToSlice[float32](z)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 6), vals)

	f, err := Full(int16(7), 2, 2)
	require.NoError(t, err)
	defer f.Release()
	fv, err := ToSlice[int16](f)
	require.NoError(t, err)
	assert.Equal(t, []int16{7, 7, 7, 7}, fv)

	s := Scalar(3.5)
	defer s.Release()
	assert.True(t, s.IsScalar())
	v, err := GetAt[float64](s)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = Zeros(DataType(99), 2)
	assert.ErrorIs(t, err, ErrType)
	_, err = Zeros(Float32, -2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = FromSlice([]int32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	empty := Arange[int64](-3)
	defer empty.Release()
	assert.Equal(t, 0, empty.Size())
}

func TestArrayFromBlock(t *testing.T) {
	b := Allocate(Uint8, 6, true)
	a, err := FromBlock(b, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, a.Dims())
	a.Release()

	_, err = FromBlock(Allocate(Uint8, 6, true), 4)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// A view may not reach past the block.
	shape, err := NewShape(4).Slice(Span(1, 4))
	require.NoError(t, err)
	_, err = NewArray(Allocate(Uint8, 3, true), shape)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestArrayElementAccess(t *testing.T) {
	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	defer a.Release()

	v, err := GetAt[float64](a, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	v, err = GetAt[float64](a, -1, -3)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	n, err := GetAt[int32](a, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), n)

	v, err = GetFlat[float64](a, 4)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	require.NoError(t, SetAt(a, 10.0, 0, 0))
	require.NoError(t, SetAt(a, int32(20), 0, 1))
	require.NoError(t, SetFlat(a, 30.0, 5))
	got, err := ToSlice[float64](a)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 3, 4, 5, 30}, got)

	_, err = GetAt[float64](a, 2, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = GetAt[float64](a, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = GetFlat[float64](a, 6)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, SetFlat(a, 1.0, -1), ErrIndexOutOfRange)
}

func TestArrayBroadcastViewIsReadOnly(t *testing.T) {
	row, err := FromSlice([]int32{1, 2, 3})
	require.NoError(t, err)
	defer row.Release()

	b, err := row.BroadcastTo(2, 3)
	require.NoError(t, err)
	defer b.Release()

	assert.False(t, b.IsWriteable())
	assert.ErrorIs(t, SetAt(b, int32(0), 1, 1), ErrReadOnly)
	got, err := ToSlice[int32](b)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 1, 2, 3}, got)
}

func TestArrayViewsShareMemory(t *testing.T) {
	a, err := Arange[float32](12).Reshape(3, 4)
	require.NoError(t, err)
	defer a.Release()

	col, err := a.Slice(All(), At(2))
	require.NoError(t, err)
	defer col.Release()
	require.NoError(t, SetAt(col, float32(-1), 1))

	v, err := GetAt[float32](a, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), v)

	tr := a.T()
	defer tr.Release()
	assert.Equal(t, []int{4, 3}, tr.Dims())
	v, err = GetAt[float32](tr, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), v)
}

func TestArrayReshape(t *testing.T) {
	a, err := Arange[int64](6).Reshape(2, 3)
	require.NoError(t, err)
	defer a.Release()

	// Linear arrays reshape in place.
	r, err := a.Reshape(3, 2)
	require.NoError(t, err)
	defer r.Release()
	assert.Equal(t, []int{2, 3}, a.Dims(), "receiver shape is unchanged")
	assert.Equal(t, a.Block().Address(), r.Block().Address())

	// Non-linear views are copied and no longer alias the source.
	tr := a.T()
	defer tr.Release()
	flat, err := tr.Flatten()
	require.NoError(t, err)
	defer flat.Release()
	got, err := ToSlice[int64](flat)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 3, 1, 4, 2, 5}, got)

	require.NoError(t, SetAt(flat, int64(100), 0))
	orig, err := GetAt[int64](a, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), orig)

	_, err = tr.Reshape(4)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestArrayExpandSqueeze(t *testing.T) {
	a, err := FromSlice([]uint16{1, 2, 3})
	require.NoError(t, err)
	defer a.Release()

	e, err := a.ExpandDims(0)
	require.NoError(t, err)
	defer e.Release()
	assert.Equal(t, []int{1, 3}, e.Dims())

	s, err := e.Squeeze()
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, []int{3}, s.Dims())
}

func TestArrayClone(t *testing.T) {
	a, err := Arange[float64](6).Reshape(2, 3)
	require.NoError(t, err)
	defer a.Release()

	view, err := a.Slice(All(), Stride(Unset, Unset, 2))
	require.NoError(t, err)
	defer view.Release()

	c, err := view.Clone()
	require.NoError(t, err)
	defer c.Release()
	assert.True(t, c.Shape().IsLinear())
	data, err := Data[float64](c)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 3, 5}, data)

	_, err = Data[float64](view)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Data[float32](c)
	assert.ErrorIs(t, err, ErrType)
}

func TestArrayRelease(t *testing.T) {
	a, err := Zeros(Int32, 4)
	require.NoError(t, err)
	v, err := a.Slice(Span(1, 3))
	require.NoError(t, err)

	a.Release()
	assert.False(t, v.IsFreed())
	v.Release()
	assert.True(t, v.IsFreed())

	_, err = ToSlice[int32](v)
	assert.ErrorIs(t, err, ErrFreed)
	_, err = GetAt[int32](v, 0)
	assert.ErrorIs(t, err, ErrFreed)
	_, err = v.Clone()
	assert.ErrorIs(t, err, ErrFreed)
	assert.Contains(t, v.String(), "freed")
}

func TestArrayDangerousFree(t *testing.T) {
	a, err := Zeros(Float64, 3)
	require.NoError(t, err)
	v := a.T()

	a.DangerousFree()
	assert.True(t, v.IsFreed())
	_, err = ToSlice[float64](v)
	assert.ErrorIs(t, err, ErrFreed)
}

func TestArrayWrap(t *testing.T) {
	released := false
	raw := make([]byte, 16)
	a, err := Wrap(Int32, raw, func() { released = true }, 2, 2)
	require.NoError(t, err)
	require.NoError(t, SetAt(a, int32(1), 0, 0))
	assert.NotZero(t, raw[0]+raw[3])

	a.Release()
	assert.True(t, released)

	_, err = Wrap(Int32, raw, nil, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestArrayReadOnlyMemory(t *testing.T) {
	raw := make([]byte, 24)
	block, err := WrapReadOnlyBytes(Float64, raw, nil)
	require.NoError(t, err)
	a, err := FromBlock(block, 3)
	require.NoError(t, err)
	defer a.Release()

	assert.False(t, a.IsWriteable())
	assert.ErrorIs(t, SetAt(a, 1.0, 0), ErrReadOnly)
	assert.ErrorIs(t, SetFlat(a, 1.0, 2), ErrReadOnly)
	assert.Equal(t, make([]byte, 24), raw)

	// Views and slices inherit the restriction; copies do not.
	sl, err := a.Slice(Span(1, 3))
	require.NoError(t, err)
	defer sl.Release()
	assert.False(t, sl.IsWriteable())

	sub, err := block.Slice(1)
	require.NoError(t, err)
	defer sub.Release()
	assert.True(t, sub.ReadOnly())

	c, err := a.Clone()
	require.NoError(t, err)
	defer c.Release()
	assert.True(t, c.IsWriteable())
	require.NoError(t, SetAt(c, 1.0, 0))
}

func TestArrayString(t *testing.T) {
	a, err := FromSlice([]int32{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	defer a.Release()
	assert.Equal(t, "array([[1, 2], [3, 4]], dtype=int32)", a.String())

	b, err := FromSlice([]bool{true, false})
	require.NoError(t, err)
	defer b.Release()
	assert.Equal(t, "array([true, false], dtype=bool)", b.String())

	s := Scalar(2.5)
	defer s.Release()
	assert.Equal(t, "array(2.5, dtype=float64)", s.String())
}

func TestScalarFromPool(t *testing.T) {
	p := NewStackedMemoryPool(PoolConfig{Initial: 2})
	s := ScalarFromPool(p, Int64)
	assert.True(t, s.IsScalar())
	assert.Equal(t, 1, p.Outstanding())

	require.NoError(t, SetAt(s, int64(42)))
	v, err := GetAt[int64](s)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	s.Release()
	assert.Equal(t, 0, p.Outstanding())
}
