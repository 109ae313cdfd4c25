package cpu

import (
	"slices"

	"github.com/born-ml/ndarray/internal/tensor"
)

// binary applies f elementwise over a and b with NumPy broadcasting. Both
// operands must hold T; the result holds R.
//
// The loop is chosen from the broadcast operand shapes:
//   - both scalar: one call, scalar result
//   - both linear: a flat loop over both buffers
//   - one linear: a flat loop over that operand while the other is addressed
//     through its shape, or read once when it is a broadcast scalar
//   - neither linear: one incrementor over the result addressing both
func binary[T, R tensor.Element](al *allocator, a, b *tensor.Array, f func(T, T) R) (*tensor.Array, error) {
	x := tensor.Elements[T](a.Block())
	y := tensor.Elements[T](b.Block())
	as, bs := a.Shape(), b.Shape()

	if as.IsScalar() && bs.IsScalar() {
		out, err := al.empty(tensor.DataTypeOf[R](), nil)
		if err != nil {
			return nil, err
		}
		tensor.Elements[R](out.Block())[0] = f(x[as.Offset()], y[bs.Offset()])
		return out, nil
	}

	as, bs, err := tensor.Broadcast(as, bs)
	if err != nil {
		return nil, err
	}
	out, err := al.empty(tensor.DataTypeOf[R](), as.Dims())
	if err != nil {
		return nil, err
	}
	binaryLoop(tensor.Elements[R](out.Block()), x, as, y, bs, f)
	return out, nil
}

// binaryLoop writes f(x, y) for every logical position of the equally
// shaped views xs and ys into dst.
func binaryLoop[T, R any](dst []R, x []T, xs tensor.Shape, y []T, ys tensor.Shape, f func(T, T) R) {
	n := len(dst)
	if n == 0 {
		return
	}
	xLinear, yLinear := xs.IsLinear(), ys.IsLinear()

	switch {
	case xLinear && yLinear:
		x = x[xs.Offset() : xs.Offset()+n]
		y = y[ys.Offset() : ys.Offset()+n]
		for i := range dst {
			dst[i] = f(x[i], y[i])
		}

	case xLinear:
		x = x[xs.Offset() : xs.Offset()+n]
		if ys.IsBroadcastScalar() {
			v := y[ys.Offset()]
			for i := range dst {
				dst[i] = f(x[i], v)
			}
			return
		}
		inc := tensor.NewIncrementor(ys.Dims())
		for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
			dst[i] = f(x[i], y[ys.GetOffset(idx...)])
		}

	case yLinear:
		y = y[ys.Offset() : ys.Offset()+n]
		if xs.IsBroadcastScalar() {
			v := x[xs.Offset()]
			for i := range dst {
				dst[i] = f(v, y[i])
			}
			return
		}
		inc := tensor.NewIncrementor(xs.Dims())
		for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
			dst[i] = f(x[xs.GetOffset(idx...)], y[i])
		}

	default:
		inc := tensor.NewIncrementor(xs.Dims())
		switch {
		case xs.IsBroadcastScalar():
			v := x[xs.Offset()]
			for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
				dst[i] = f(v, y[ys.GetOffset(idx...)])
			}
		case ys.IsBroadcastScalar():
			v := y[ys.Offset()]
			for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
				dst[i] = f(x[xs.GetOffset(idx...)], v)
			}
		default:
			for i, idx := 0, inc.Index(); idx != nil; i, idx = i+1, inc.Next() {
				dst[i] = f(x[xs.GetOffset(idx...)], y[ys.GetOffset(idx...)])
			}
		}
	}
}

// unary applies f to every element of a, which must hold T.
func unary[T, R tensor.Element](al *allocator, a *tensor.Array, f func(T) R) (*tensor.Array, error) {
	s := a.Shape()
	out, err := al.empty(tensor.DataTypeOf[R](), s.Dims())
	if err != nil {
		return nil, err
	}
	dst := tensor.Elements[R](out.Block())
	if s.IsLinear() {
		src := tensor.Elements[T](a.Block())
		if len(dst) > 0 {
			src = src[s.Offset() : s.Offset()+len(dst)]
		}
		for i := range dst {
			dst[i] = f(src[i])
		}
		return out, nil
	}
	it := tensor.NewIterator[T](a.Block(), s, false)
	for i := range dst {
		dst[i] = f(it.MoveNext())
	}
	return out, nil
}

// binaryCast is the type-agnostic fallback: both operands are read through
// casting iterators as T and the result is converted to dtype on write.
func binaryCast[T, R tensor.Element](al *allocator, dtype tensor.DataType, a, b *tensor.Array, f func(T, T) R) (*tensor.Array, error) {
	as, bs, err := tensor.Broadcast(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	out, err := al.empty(dtype, as.Dims())
	if err != nil {
		return nil, err
	}
	write := tensor.Writer[R](out.Block())
	left := operandIterator[T](a, as)
	right := operandIterator[T](b, bs)
	for i, n := 0, as.Size(); i < n; i++ {
		write(i, f(left.MoveNext(), right.MoveNext()))
	}
	return out, nil
}

// operandIterator reads a in the order of its broadcast view bcast. When
// broadcasting only prepends axes to a, the view is a repetition of a
// itself, so a is replayed with an auto-resetting iterator.
func operandIterator[T tensor.Element](a *tensor.Array, bcast tensor.Shape) *tensor.Iterator[T] {
	if replays(a.Dims(), bcast.Dims()) {
		return tensor.NewIterator[T](a.Block(), a.Shape(), true)
	}
	return tensor.NewIterator[T](a.Block(), bcast, false)
}

// replays reports whether dims, ignoring leading 1s, is a suffix of out.
func replays(dims, out []int) bool {
	for len(dims) > 0 && dims[0] == 1 {
		dims = dims[1:]
	}
	if len(dims) > len(out) {
		return false
	}
	return slices.Equal(dims, out[len(out)-len(dims):])
}

// unaryCast is the type-agnostic fallback of unary.
func unaryCast[T, R tensor.Element](al *allocator, dtype tensor.DataType, a *tensor.Array, f func(T) R) (*tensor.Array, error) {
	out, err := al.empty(dtype, a.Dims())
	if err != nil {
		return nil, err
	}
	write := tensor.Writer[R](out.Block())
	it := tensor.NewIterator[T](a.Block(), a.Shape(), false)
	for i := 0; it.HasNext(); i++ {
		write(i, f(it.MoveNext()))
	}
	return out, nil
}
