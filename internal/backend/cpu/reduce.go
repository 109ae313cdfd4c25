package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
)

// reduce applies fn to every lane of a along opts.Axis, or to all elements
// when no axis is given, and stores the results converted to dtype.
//
// Lanes are read as T; when a holds T and the lane is contiguous fn sees the
// array's memory directly, otherwise the lane is gathered into a scratch
// buffer. With nonEmpty set, a reduction over zero elements is an error.
//
// Example:
//
//	x: shape (2, 1, 3, 5, 1)
//	axis=2            -> (2, 1, 5, 1)
//	axis=2, keepdims  -> (2, 1, 1, 5, 1)
//	axis=nil          -> ()
func reduce[T, R tensor.Element](al *allocator, op string, a *tensor.Array, opts tensor.ReduceOptions,
	dtype tensor.DataType, nonEmpty bool, fn func([]T) R,
) (*tensor.Array, error) {
	s := a.Shape()

	if opts.Axis == nil {
		if nonEmpty && s.Size() == 0 {
			return nil, emptyReduction(op)
		}
		var dims []int
		if opts.KeepDims {
			dims = make([]int, s.NDim())
			for i := range dims {
				dims[i] = 1
			}
		}
		out, err := al.empty(dtype, dims)
		if err != nil {
			return nil, err
		}
		lane, err := flat[T](a)
		if err != nil {
			out.Release()
			return nil, err
		}
		tensor.Writer[R](out.Block())(0, fn(lane))
		return out, nil
	}

	axis, err := tensor.NormalizeAxis(*opts.Axis, s.NDim())
	if err != nil {
		return nil, err
	}
	outShape := s.ReduceAxis(axis, opts.KeepDims)
	n := s.Dim(axis)
	if nonEmpty && n == 0 && outShape.Size() > 0 {
		return nil, emptyReduction(op)
	}
	out, err := al.empty(dtype, outShape.Dims())
	if err != nil {
		return nil, err
	}

	stride := s.Strides()[axis]
	write := tensor.Writer[R](out.Block())
	read := tensor.Reader[T](a.Block())
	var direct []T
	if a.DType() == tensor.DataTypeOf[T]() && (stride == 1 || n <= 1) {
		direct = tensor.Elements[T](a.Block())
	}
	lane := make([]T, n)

	inc := tensor.NewIncrementorExcept(s.Dims(), axis)
	for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
		base := s.GetOffset(idx...)
		if direct != nil {
			write(i, fn(direct[base:base+n]))
			continue
		}
		for j := range lane {
			lane[j] = read(base + j*stride)
		}
		write(i, fn(lane))
	}
	return out, nil
}

// flat returns every element of a in logical order as T, aliasing a's memory
// when possible.
func flat[T tensor.Element](a *tensor.Array) ([]T, error) {
	if a.DType() == tensor.DataTypeOf[T]() && a.Shape().IsLinear() {
		return tensor.Data[T](a)
	}
	return tensor.ToSlice[T](a)
}

func emptyReduction(op string) error {
	return tensor.Errorf(tensor.ErrShapeMismatch, "zero-size array to reduction operation %s which has no identity", op)
}

// Lane kernels.

func sumLane[T tensor.Number](l []T) T {
	var acc T
	for _, v := range l {
		acc += v
	}
	return acc
}

func prodLane[T tensor.Number](l []T) T {
	acc := T(1)
	for _, v := range l {
		acc *= v
	}
	return acc
}

// meanLane accumulates in float64. An empty lane has mean NaN.
func meanLane[T tensor.Number](l []T) T {
	return T(mean64(l))
}

func mean64[T tensor.Number](l []T) float64 {
	if len(l) == 0 {
		return math.NaN()
	}
	var acc float64
	for _, v := range l {
		acc += float64(v)
	}
	return acc / float64(len(l))
}

func minLane[T tensor.Number](l []T) T {
	m := l[0]
	for _, v := range l[1:] {
		if v != v { //nolint:gocritic // NaN check
			return v
		}
		if v < m {
			m = v
		}
	}
	return m
}

func maxLane[T tensor.Number](l []T) T {
	m := l[0]
	for _, v := range l[1:] {
		if v != v { //nolint:gocritic // NaN check
			return v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// argMinLane returns the first position of the minimum, or of the first NaN.
func argMinLane[T tensor.Number](l []T) int64 {
	best := 0
	if l[0] != l[0] { //nolint:gocritic // NaN check
		return 0
	}
	for i, v := range l[1:] {
		if v != v { //nolint:gocritic // NaN check
			return int64(i + 1)
		}
		if v < l[best] {
			best = i + 1
		}
	}
	return int64(best)
}

// argMaxLane returns the first position of the maximum, or of the first NaN.
func argMaxLane[T tensor.Number](l []T) int64 {
	best := 0
	if l[0] != l[0] { //nolint:gocritic // NaN check
		return 0
	}
	for i, v := range l[1:] {
		if v != v { //nolint:gocritic // NaN check
			return int64(i + 1)
		}
		if v > l[best] {
			best = i + 1
		}
	}
	return int64(best)
}

// varianceLane is the two-pass variance with divisor len(l) - ddof. It is
// NaN when the divisor is not positive.
func varianceLane[T tensor.Number](l []T, ddof int) float64 {
	div := len(l) - ddof
	if div <= 0 {
		return math.NaN()
	}
	m := mean64(l)
	var acc float64
	for _, v := range l {
		d := float64(v) - m
		acc += d * d
	}
	return acc / float64(div)
}
