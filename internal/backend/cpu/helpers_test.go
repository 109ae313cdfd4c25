package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndarray/internal/tensor"
)

func fromSlice[T tensor.Element](t *testing.T, data []T, dims ...int) *tensor.Array {
	t.Helper()
	a, err := tensor.FromSlice(data, dims...)
	require.NoError(t, err)
	t.Cleanup(a.Release)
	return a
}

func values[T tensor.Element](t *testing.T, a *tensor.Array) []T {
	t.Helper()
	out, err := tensor.ToSlice[T](a)
	require.NoError(t, err)
	return out
}

func randomArray[T tensor.Number](t *testing.T, rng *rand.Rand, dims ...int) *tensor.Array {
	t.Helper()
	data := make([]T, tensor.NumElements(dims))
	for i := range data {
		data[i] = T(rng.IntN(50))
	}
	return fromSlice(t, data, dims...)
}

// binaryCoords is the reference loop: every output position addresses both
// operands through full coordinate arithmetic.
func binaryCoords[T, R any](dst []R, x []T, xs tensor.Shape, y []T, ys tensor.Shape, f func(T, T) R) {
	inc := tensor.NewIncrementor(xs.Dims())
	for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
		dst[i] = f(x[xs.GetOffset(idx...)], y[ys.GetOffset(idx...)])
	}
}
