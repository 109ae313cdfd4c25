package cpu

import (
	"github.com/x448/float16"

	"github.com/born-ml/ndarray/internal/tensor"
)

// fillers converts a source array into a freshly allocated destination of
// the indexed type, reading through a casting iterator.
var fillers = [...]func(dst, src *tensor.Array){
	tensor.Bool:    fill[bool],
	tensor.Uint8:   fill[uint8],
	tensor.Int16:   fill[int16],
	tensor.Uint16:  fill[uint16],
	tensor.Int32:   fill[int32],
	tensor.Uint32:  fill[uint32],
	tensor.Int64:   fill[int64],
	tensor.Uint64:  fill[uint64],
	tensor.Float16: fill[float16.Float16],
	tensor.Float32: fill[float32],
	tensor.Float64: fill[float64],
}

func fill[D tensor.Element](dst, src *tensor.Array) {
	out := tensor.Elements[D](dst.Block())
	it := tensor.NewIterator[D](src.Block(), src.Shape(), false)
	for i := range out {
		out[i] = it.MoveNext()
	}
}

// castArray returns a contiguous copy of a converted to dtype.
func castArray(al *allocator, a *tensor.Array, dtype tensor.DataType) (*tensor.Array, error) {
	out, err := al.empty(dtype, a.Dims())
	if err != nil {
		return nil, err
	}
	fillers[dtype](out, a)
	return out, nil
}
