package cpu

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/ndarray/internal/tensor"
)

func TestReduceShapes(t *testing.T) {
	c := New()
	a, err := tensor.Zeros(tensor.Float64, 2, 1, 3, 5, 1)
	require.NoError(t, err)
	defer a.Release()

	tests := []struct {
		axis     *int
		keepDims bool
		want     []int
	}{
		{nil, false, []int{}},
		{nil, true, []int{1, 1, 1, 1, 1}},
		{tensor.Axis(0), false, []int{1, 3, 5, 1}},
		{tensor.Axis(2), false, []int{2, 1, 5, 1}},
		{tensor.Axis(2), true, []int{2, 1, 1, 5, 1}},
		{tensor.Axis(-1), false, []int{2, 1, 3, 5}},
		{tensor.Axis(-2), true, []int{2, 1, 3, 1, 1}},
	}
	ops := map[string]func(*tensor.Array, tensor.ReduceOptions) (*tensor.Array, error){
		"sum": c.Sum, "prod": c.Prod, "mean": c.Mean, "amin": c.AMin, "amax": c.AMax,
		"argmin": c.ArgMin, "argmax": c.ArgMax, "var": c.Var, "std": c.Std,
	}
	for name, op := range ops {
		for _, tt := range tests {
			out, err := op(a, tensor.ReduceOptions{Axis: tt.axis, KeepDims: tt.keepDims})
			require.NoError(t, err, name)
			assert.Equal(t, tt.want, out.Dims(), "%s axis=%v keepdims=%v", name, tt.axis, tt.keepDims)
			out.Release()
		}
	}

	_, err = c.Sum(a, tensor.ReduceOptions{Axis: tensor.Axis(5)})
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfRange)
	_, err = c.Sum(a, tensor.ReduceOptions{Axis: tensor.Axis(-6)})
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfRange)
}

func TestSum(t *testing.T) {
	c := New()
	a := fromSlice(t, []int32{1, 2, 3, 4, 5, 6}, 2, 3)

	all, err := c.Sum(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer all.Release()
	assert.True(t, all.IsScalar())
	assert.Equal(t, tensor.Int64, all.DType())
	assert.Equal(t, []int64{21}, values[int64](t, all))

	rows, err := c.Sum(a, tensor.ReduceOptions{Axis: tensor.Axis(1)})
	require.NoError(t, err)
	defer rows.Release()
	assert.Equal(t, []int64{6, 15}, values[int64](t, rows))

	cols, err := c.Sum(a, tensor.ReduceOptions{Axis: tensor.Axis(0), DType: tensor.DTypeOf(tensor.Float32)})
	require.NoError(t, err)
	defer cols.Release()
	assert.Equal(t, tensor.Float32, cols.DType())
	assert.Equal(t, []float32{5, 7, 9}, values[float32](t, cols))

	u := fromSlice(t, []uint8{200, 200})
	us, err := c.Sum(u, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer us.Release()
	assert.Equal(t, tensor.Uint64, us.DType())
	assert.Equal(t, []uint64{400}, values[uint64](t, us))

	flags := fromSlice(t, []bool{true, false, true})
	count, err := c.Sum(flags, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer count.Release()
	assert.Equal(t, []int64{2}, values[int64](t, count))

	s := tensor.Scalar(2.5)
	defer s.Release()
	ss, err := c.Sum(s, tensor.ReduceOptions{KeepDims: true})
	require.NoError(t, err)
	defer ss.Release()
	assert.True(t, ss.IsScalar())
	assert.Equal(t, []float64{2.5}, values[float64](t, ss))
}

func TestReduceNonContiguous(t *testing.T) {
	c := New()
	rng := rand.New(rand.NewPCG(3, 4))
	a := randomArray[float64](t, rng, 4, 6)
	tr := a.T()
	defer tr.Release()
	b, err := tr.BroadcastTo(2, 6, 4)
	require.NoError(t, err)
	defer b.Release()

	for axis := 0; axis < 3; axis++ {
		out, err := c.Sum(b, tensor.ReduceOptions{Axis: tensor.Axis(axis)})
		require.NoError(t, err)

		clone, err := b.Clone()
		require.NoError(t, err)
		ref, err := c.Sum(clone, tensor.ReduceOptions{Axis: tensor.Axis(axis)})
		require.NoError(t, err)

		assert.Equal(t, values[float64](t, ref), values[float64](t, out), "axis %d", axis)
		out.Release()
		ref.Release()
		clone.Release()
	}
}

func TestProdAndEmpty(t *testing.T) {
	c := New()
	a := fromSlice(t, []int16{1, 2, 3, 4}, 2, 2)

	p, err := c.Prod(a, tensor.ReduceOptions{Axis: tensor.Axis(0)})
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, []int64{3, 8}, values[int64](t, p))

	empty, err := tensor.Zeros(tensor.Float64, 3, 0)
	require.NoError(t, err)
	defer empty.Release()

	sum, err := c.Sum(empty, tensor.ReduceOptions{Axis: tensor.Axis(1)})
	require.NoError(t, err)
	defer sum.Release()
	assert.Equal(t, []float64{0, 0, 0}, values[float64](t, sum))

	prod, err := c.Prod(empty, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer prod.Release()
	assert.Equal(t, []float64{1}, values[float64](t, prod))

	mean, err := c.Mean(empty, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer mean.Release()
	assert.True(t, math.IsNaN(values[float64](t, mean)[0]))

	_, err = c.AMax(empty, tensor.ReduceOptions{})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	_, err = c.AMin(empty, tensor.ReduceOptions{Axis: tensor.Axis(1)})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	_, err = c.ArgMax(empty, tensor.ReduceOptions{})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)

	// Reducing a non-empty axis of an empty array leaves an empty result.
	out, err := c.AMax(empty, tensor.ReduceOptions{Axis: tensor.Axis(0)})
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []int{0}, out.Dims())
}

func TestMinMax(t *testing.T) {
	c := New()
	a := fromSlice(t, []int32{4, -2, 7, 0, 9, -5}, 2, 3)

	lo, err := c.AMin(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer lo.Release()
	assert.Equal(t, tensor.Int32, lo.DType())
	assert.Equal(t, []int32{-5}, values[int32](t, lo))

	hi, err := c.AMax(a, tensor.ReduceOptions{Axis: tensor.Axis(0)})
	require.NoError(t, err)
	defer hi.Release()
	assert.Equal(t, []int32{4, 9, 7}, values[int32](t, hi))

	nan := fromSlice(t, []float64{1, math.NaN(), 3})
	m, err := c.AMax(nan, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer m.Release()
	assert.True(t, math.IsNaN(values[float64](t, m)[0]))
}

func TestArgMinMax(t *testing.T) {
	c := New()
	a := fromSlice(t, []float32{4, -2, 7, 9, 9, -5}, 2, 3)

	i, err := c.ArgMax(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer i.Release()
	assert.Equal(t, tensor.Int64, i.DType())
	assert.Equal(t, []int64{3}, values[int64](t, i), "first occurrence wins")

	rows, err := c.ArgMin(a, tensor.ReduceOptions{Axis: tensor.Axis(1), DType: tensor.DTypeOf(tensor.Float64)})
	require.NoError(t, err)
	defer rows.Release()
	assert.Equal(t, tensor.Int64, rows.DType(), "dtype override does not apply")
	assert.Equal(t, []int64{1, 2}, values[int64](t, rows))

	cols, err := c.ArgMax(a, tensor.ReduceOptions{Axis: tensor.Axis(0), KeepDims: true})
	require.NoError(t, err)
	defer cols.Release()
	assert.Equal(t, []int{1, 3}, cols.Dims())
	assert.Equal(t, []int64{1, 1, 0}, values[int64](t, cols))

	nan := fromSlice(t, []float64{1, 5, math.NaN(), 7})
	n, err := c.ArgMax(nan, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer n.Release()
	assert.Equal(t, []int64{2}, values[int64](t, n))
}

func TestMeanVarStdMatchGonum(t *testing.T) {
	c := New()
	rng := rand.New(rand.NewPCG(5, 6))
	a := randomArray[float64](t, rng, 3, 7)
	data := values[float64](t, a)

	mean, err := c.Mean(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer mean.Release()
	assert.InDelta(t, stat.Mean(data, nil), values[float64](t, mean)[0], 1e-9)

	v0, err := c.Var(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer v0.Release()
	assert.InDelta(t, stat.PopVariance(data, nil), values[float64](t, v0)[0], 1e-9)

	v1, err := c.Var(a, tensor.ReduceOptions{DDof: 1})
	require.NoError(t, err)
	defer v1.Release()
	assert.InDelta(t, stat.Variance(data, nil), values[float64](t, v1)[0], 1e-9)

	std, err := c.Std(a, tensor.ReduceOptions{Axis: tensor.Axis(1), DDof: 1})
	require.NoError(t, err)
	defer std.Release()
	got := values[float64](t, std)
	require.Len(t, got, 3)
	for r := 0; r < 3; r++ {
		row := data[r*7 : (r+1)*7]
		assert.InDelta(t, stat.StdDev(row, nil), got[r], 1e-9)
	}

	sum, err := c.Sum(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer sum.Release()
	assert.InDelta(t, floats.Sum(data), values[float64](t, sum)[0], 1e-9)

	lo, err := c.AMin(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer lo.Release()
	assert.Equal(t, floats.Min(data), values[float64](t, lo)[0])

	idx, err := c.ArgMin(a, tensor.ReduceOptions{})
	require.NoError(t, err)
	defer idx.Release()
	assert.Equal(t, int64(floats.MinIdx(data)), values[int64](t, idx)[0])
}

func TestMeanOfIntegers(t *testing.T) {
	c := New()
	a := fromSlice(t, []int64{1, 2, 3, 4}, 2, 2)

	m, err := c.Mean(a, tensor.ReduceOptions{Axis: tensor.Axis(0)})
	require.NoError(t, err)
	defer m.Release()
	assert.Equal(t, tensor.Float64, m.DType())
	assert.Equal(t, []float64{2, 3}, values[float64](t, m))

	v, err := c.Var(fromSlice(t, []float32{1, 3}), tensor.ReduceOptions{})
	require.NoError(t, err)
	defer v.Release()
	assert.Equal(t, tensor.Float32, v.DType())
	assert.Equal(t, []float32{1}, values[float32](t, v))
}

func TestVarianceDegreesOfFreedom(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithLogger(zerolog.New(&buf)))
	a := fromSlice(t, []float64{1, 2, 3})

	v, err := c.Var(a, tensor.ReduceOptions{DDof: 3})
	require.NoError(t, err)
	defer v.Release()
	assert.True(t, math.IsNaN(values[float64](t, v)[0]))
	assert.Contains(t, buf.String(), "degrees of freedom <= 0")
	assert.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	s, err := c.Std(a, tensor.ReduceOptions{DDof: 2})
	require.NoError(t, err)
	defer s.Release()
	assert.False(t, math.IsNaN(values[float64](t, s)[0]))
	assert.Empty(t, buf.String())
}
