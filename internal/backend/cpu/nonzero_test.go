package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/tensor"
)

func TestNonZero(t *testing.T) {
	c := New(WithParallelism(2))
	a := fromSlice(t, []int32{3, 0, 0, 0, 4, 0, 5, 6, 0}, 3, 3)

	idx, err := c.NonZero(a)
	require.NoError(t, err)
	require.Len(t, idx, 2)
	defer releaseAll(idx)

	assert.Equal(t, tensor.Int64, idx[0].DType())
	assert.Equal(t, []int64{0, 1, 2, 2}, values[int64](t, idx[0]))
	assert.Equal(t, []int64{0, 1, 0, 1}, values[int64](t, idx[1]))
}

func TestNonZeroTypes(t *testing.T) {
	c := New()

	flags := fromSlice(t, []bool{false, true, true})
	idx, err := c.NonZero(flags)
	require.NoError(t, err)
	defer releaseAll(idx)
	assert.Equal(t, []int64{1, 2}, values[int64](t, idx[0]))

	f := fromSlice(t, []float64{0, -0.5, 0, 2}, 2, 2)
	tr := f.T()
	defer tr.Release()
	fi, err := c.NonZero(tr)
	require.NoError(t, err)
	defer releaseAll(fi)
	// Transposed: [[0, 0], [-0.5, 2]].
	assert.Equal(t, []int64{1, 1}, values[int64](t, fi[0]))
	assert.Equal(t, []int64{0, 1}, values[int64](t, fi[1]))
}

func TestNonZeroEdgeCases(t *testing.T) {
	c := New()

	s := tensor.Scalar(uint16(7))
	defer s.Release()
	idx, err := c.NonZero(s)
	require.NoError(t, err)
	defer releaseAll(idx)
	require.Len(t, idx, 1)
	assert.Equal(t, []int64{0}, values[int64](t, idx[0]))

	z, err := tensor.Zeros(tensor.Int64, 2, 2, 2)
	require.NoError(t, err)
	defer z.Release()
	none, err := c.NonZero(z)
	require.NoError(t, err)
	defer releaseAll(none)
	require.Len(t, none, 3)
	for _, a := range none {
		assert.Equal(t, 0, a.Size())
	}

	a, err := tensor.Zeros(tensor.Float32, 2)
	require.NoError(t, err)
	a.Release()
	_, err = c.NonZero(a)
	assert.ErrorIs(t, err, tensor.ErrFreed)
}
