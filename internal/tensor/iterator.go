package tensor

import "iter"

// IterKind is the access pattern an Iterator picked for its shape.
type IterKind int

// Iterator access patterns.
const (
	IterScalar        IterKind = iota // ndim 0, one value
	IterLinear                        // logical order equals memory order
	IterStridedVector                 // ndim 1 with a non-unit stride
	IterTensor                        // ndim >= 2 walked by an Incrementor
)

// String returns the name of the access pattern.
func (k IterKind) String() string {
	switch k {
	case IterScalar:
		return "scalar"
	case IterLinear:
		return "linear"
	case IterStridedVector:
		return "strided-vector"
	case IterTensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// Iterator produces the logical row-major element sequence of a view,
// whatever its contiguity or broadcast state, optionally converting each
// element to T.
//
// With auto-reset enabled HasNext never turns false: the sequence wraps to
// the first element, which replays a smaller operand against a larger
// broadcast partner.
type Iterator[T Element] struct {
	shape     Shape
	source    DataType
	read      func(int) T
	direct    []T
	casting   bool
	kind      IterKind
	autoReset bool
	pos       int
	size      int
	stride    int
	incr      *Incrementor
}

// NewIterator creates an iterator over the view shape of block. Elements
// are converted to T when T differs from the block's dtype.
func NewIterator[T Element](block *Block, shape Shape, autoReset bool) *Iterator[T] {
	it := &Iterator[T]{
		shape:     shape,
		source:    block.DType(),
		autoReset: autoReset,
		size:      shape.Size(),
		casting:   DataTypeOf[T]() != block.DType(),
	}
	if it.casting {
		it.read = Reader[T](block)
	} else {
		direct := Elements[T](block)
		it.direct = direct
		it.read = func(i int) T { return direct[i] }
	}

	switch {
	case shape.IsScalar():
		it.kind = IterScalar
	case shape.IsLinear():
		it.kind = IterLinear
	case shape.NDim() == 1:
		it.kind = IterStridedVector
		it.stride = shape.strides[0]
	default:
		it.kind = IterTensor
		it.incr = NewIncrementor(shape.dims)
	}
	return it
}

// Iterate creates an iterator over an array's elements.
func Iterate[T Element](a *Array) *Iterator[T] {
	return NewIterator[T](a.block, a.shape, false)
}

// Kind returns the access pattern selected at construction.
func (it *Iterator[T]) Kind() IterKind { return it.kind }

// IsCasting reports whether elements are converted on read.
func (it *Iterator[T]) IsCasting() bool { return it.casting }

// Size returns the number of logical elements.
func (it *Iterator[T]) Size() int { return it.size }

// HasNext reports whether MoveNext may be called.
func (it *Iterator[T]) HasNext() bool {
	if it.autoReset {
		return it.size > 0
	}
	return it.pos < it.size
}

// MoveNext returns the next element. Calling it after HasNext returned
// false is a caller error.
func (it *Iterator[T]) MoveNext() T {
	return it.read(it.advance())
}

// MoveNextReference returns a pointer to the next element in memory.
// It fails with ErrUnsupported under cast mode, since a converted value has
// no storage of its own.
func (it *Iterator[T]) MoveNextReference() (*T, error) {
	if it.casting {
		return nil, Errorf(ErrUnsupported, "cannot take a reference while casting %s to %s",
			it.source, DataTypeOf[T]())
	}
	off := it.advance()
	return &it.direct[off], nil
}

// Reset rewinds the iterator to the first element.
func (it *Iterator[T]) Reset() {
	it.pos = 0
	if it.incr != nil {
		it.incr.Reset()
	}
}

// Seq returns the remaining elements as a range-over-func sequence. An
// auto-resetting iterator yields forever unless the loop breaks.
func (it *Iterator[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it.HasNext() {
			if !yield(it.MoveNext()) {
				return
			}
		}
	}
}

// advance returns the memory offset of the current element and moves on.
func (it *Iterator[T]) advance() int {
	var off int
	switch it.kind {
	case IterScalar:
		off = it.shape.offset
	case IterLinear:
		off = it.shape.offset + it.pos
	case IterStridedVector:
		off = it.shape.offset + it.pos*it.stride
	case IterTensor:
		off = it.shape.GetOffset(it.incr.Index()...)
		it.incr.Next()
	}
	it.pos++
	if it.autoReset && it.pos >= it.size {
		it.Reset()
	}
	return off
}
