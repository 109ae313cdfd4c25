package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// nonzero returns, per axis, the coordinates of the elements for which
// isZero is false, in row-major order. A 0-d input is treated as 1-D.
//
// Example:
//
//	x = [[3, 0, 0], [0, 4, 0], [5, 6, 0]]
//	nonzero(x) = ([0, 1, 2, 2], [0, 1, 0, 1])
//
// The flat positions are found in one pass; the per-axis coordinate arrays
// are then filled concurrently, each goroutine writing only its own output.
func nonzero[T tensor.Element](a *tensor.Array, par parallel.Config, nonZero func(T) bool) ([]*tensor.Array, error) {
	dims := a.Dims()
	if len(dims) == 0 {
		dims = []int{1}
	}

	var positions []int
	it := tensor.NewIterator[T](a.Block(), a.Shape(), false)
	for i := 0; it.HasNext(); i++ {
		if nonZero(it.MoveNext()) {
			positions = append(positions, i)
		}
	}

	outs := make([]*tensor.Array, len(dims))
	for k := range outs {
		out, err := tensor.Empty(tensor.Int64, len(positions))
		if err != nil {
			releaseAll(outs)
			return nil, err
		}
		outs[k] = out
	}

	// after[k] is the number of elements one step along axis k spans.
	after := make([]int, len(dims))
	span := 1
	for k := len(dims) - 1; k >= 0; k-- {
		after[k] = span
		span *= dims[k]
	}

	err := parallel.Each(len(outs), func(k int) error {
		dst := tensor.Elements[int64](outs[k].Block())
		for i, p := range positions {
			dst[i] = int64(p / after[k] % dims[k])
		}
		return nil
	}, par)
	if err != nil {
		releaseAll(outs)
		return nil, err
	}
	return outs, nil
}

func releaseAll(arrays []*tensor.Array) {
	for _, a := range arrays {
		if a != nil {
			a.Release()
		}
	}
}
