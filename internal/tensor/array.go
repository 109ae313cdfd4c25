package tensor

import (
	"strconv"
	"strings"
)

// Array is an N-dimensional typed view: a Shape describing the logical
// layout over a Block holding the elements. Several arrays may view one
// Block; the memory is released when the last of them is released.
type Array struct {
	shape Shape
	dtype DataType
	block *Block
}

// NewArray wraps block under shape. The shape must address only elements
// the block holds.
func NewArray(block *Block, shape Shape) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if block.IsFreed() {
		return nil, ErrFreed
	}
	if shape.size > 0 {
		lo, hi := shape.extent()
		if lo < 0 || hi >= block.Count() {
			return nil, Errorf(ErrShapeMismatch, "shape %v with offset %d does not fit a block of %d elements",
				shape, shape.offset, block.Count())
		}
	}
	return &Array{shape: shape, dtype: block.DType(), block: block}, nil
}

// FromBlock creates a contiguous array of dims over block.
func FromBlock(block *Block, dims ...int) (*Array, error) {
	shape := NewShape(dims...)
	if shape.size != block.Count() {
		return nil, Errorf(ErrShapeMismatch, "cannot view %d elements as %v", block.Count(), shape)
	}
	return NewArray(block, shape)
}

// Empty allocates an array without initializing its elements.
func Empty(dtype DataType, dims ...int) (*Array, error) {
	return allocate(dtype, false, dims)
}

// Zeros allocates a zero-filled array.
func Zeros(dtype DataType, dims ...int) (*Array, error) {
	return allocate(dtype, true, dims)
}

func allocate(dtype DataType, zero bool, dims []int) (*Array, error) {
	if !dtype.Valid() {
		return nil, Errorf(ErrType, "invalid data type %d", int(dtype))
	}
	shape := NewShape(dims...)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Array{shape: shape, dtype: dtype, block: Allocate(dtype, shape.size, zero)}, nil
}

// Full allocates an array of dims with every element set to value.
func Full[T Element](value T, dims ...int) (*Array, error) {
	a, err := Empty(DataTypeOf[T](), dims...)
	if err != nil {
		return nil, err
	}
	data := Elements[T](a.block)
	for i := range data {
		data[i] = value
	}
	return a, nil
}

// Arange returns the 1-D array [0, 1, ..., n-1].
func Arange[T Number](n int) *Array {
	if n < 0 {
		n = 0
	}
	dtype := DataTypeOf[T]()
	a := &Array{shape: NewShape(n), dtype: dtype, block: Allocate(dtype, n, false)}
	data := Elements[T](a.block)
	for i := range data {
		data[i] = T(i)
	}
	return a
}

// FromSlice copies data into a new array. Without dims the array is 1-D.
func FromSlice[T Element](data []T, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		dims = []int{len(data)}
	}
	shape := NewShape(dims...)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.size != len(data) {
		return nil, Errorf(ErrShapeMismatch, "data size %d doesn't match shape %v (expected %d elements)",
			len(data), shape, shape.size)
	}
	dtype := DataTypeOf[T]()
	a := &Array{shape: shape, dtype: dtype, block: Allocate(dtype, len(data), false)}
	copy(Elements[T](a.block), data)
	return a, nil
}

// Scalar creates a 0-dimensional array holding v.
func Scalar[T Element](v T) *Array {
	dtype := DataTypeOf[T]()
	a := &Array{shape: ScalarShape(), dtype: dtype, block: Allocate(dtype, 1, false)}
	Elements[T](a.block)[0] = v
	return a
}

// ScalarFromPool creates an uninitialized 0-dimensional array whose storage
// is a slot of p.
func ScalarFromPool(p *StackedMemoryPool, dtype DataType) *Array {
	return &Array{shape: ScalarShape(), dtype: dtype, block: AllocateFromPool(p, dtype)}
}

// Wrap creates a borrowed array over externally owned memory. onRelease
// runs once, when the last array viewing the memory is released.
func Wrap(dtype DataType, data []byte, onRelease func(), dims ...int) (*Array, error) {
	block, err := WrapBytes(dtype, data, onRelease)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		dims = []int{block.Count()}
	}
	a, err := FromBlock(block, dims...)
	if err != nil {
		block.Release()
		return nil, err
	}
	return a, nil
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape { return a.shape }

// Dims returns a copy of the dimensions.
func (a *Array) Dims() []int { return a.shape.Dims() }

// DType returns the element type.
func (a *Array) DType() DataType { return a.dtype }

// Size returns the number of logical elements.
func (a *Array) Size() int { return a.shape.size }

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.shape.dims) }

// IsScalar reports whether the array is 0-dimensional.
func (a *Array) IsScalar() bool { return a.shape.IsScalar() }

// Block returns the memory block backing the array.
func (a *Array) Block() *Block { return a.block }

// IsWriteable reports whether elements may be assigned. Broadcast views
// alias one element from several positions and are read-only, as is
// memory wrapped with WrapReadOnlyBytes.
func (a *Array) IsWriteable() bool { return !a.shape.IsBroadcasted() && !a.block.ReadOnly() }

// IsFreed reports whether the backing memory has been released.
func (a *Array) IsFreed() bool { return a.block.IsFreed() }

// Release drops the array's reference on its memory.
func (a *Array) Release() { a.block.Release() }

// DangerousFree frees the backing memory immediately, invalidating every
// view that shares it.
func (a *Array) DangerousFree() { a.block.DangerousFree() }

// View returns a new array over the same memory with shape s.
func (a *Array) View(s Shape) *Array {
	return &Array{shape: s, dtype: a.dtype, block: a.block.Share()}
}

// Reshape returns an array with new dimensions. Linear arrays are viewed in
// place; other views are copied first. The receiver's shape never changes.
func (a *Array) Reshape(dims ...int) (*Array, error) {
	if a.shape.IsLinear() {
		s, err := a.shape.Reshape(dims...)
		if err != nil {
			return nil, err
		}
		return a.View(s), nil
	}
	if _, err := resolveReshape(a.shape.size, dims); err != nil {
		return nil, err
	}
	c, err := a.Clone()
	if err != nil {
		return nil, err
	}
	s, err := c.shape.Reshape(dims...)
	if err != nil {
		c.Release()
		return nil, err
	}
	c.shape = s
	return c, nil
}

// Flatten returns a 1-D array of the elements in logical order.
func (a *Array) Flatten() (*Array, error) {
	return a.Reshape(-1)
}

// Transpose permutes the axes. Without axes the order is reversed.
func (a *Array) Transpose(axes ...int) (*Array, error) {
	s, err := a.shape.Transpose(axes...)
	if err != nil {
		return nil, err
	}
	return a.View(s), nil
}

// T returns the array with its axes reversed.
func (a *Array) T() *Array {
	s, _ := a.shape.Transpose()
	return a.View(s)
}

// Slice returns a view selecting ranges along the leading axes.
func (a *Array) Slice(ranges ...Range) (*Array, error) {
	s, err := a.shape.Slice(ranges...)
	if err != nil {
		return nil, err
	}
	return a.View(s), nil
}

// BroadcastTo returns a read-only view expanded to dims.
func (a *Array) BroadcastTo(dims ...int) (*Array, error) {
	s, err := a.shape.BroadcastTo(dims...)
	if err != nil {
		return nil, err
	}
	return a.View(s), nil
}

// ExpandDims returns a view with a size-1 axis inserted at axis.
func (a *Array) ExpandDims(axis int) (*Array, error) {
	s, err := a.shape.ExpandDims(axis)
	if err != nil {
		return nil, err
	}
	return a.View(s), nil
}

// Squeeze returns a view without the given size-1 axes (all of them when
// none are given).
func (a *Array) Squeeze(axes ...int) (*Array, error) {
	s, err := a.shape.Squeeze(axes...)
	if err != nil {
		return nil, err
	}
	return a.View(s), nil
}

// Clone returns a deep contiguous copy.
func (a *Array) Clone() (*Array, error) {
	if a.block.IsFreed() {
		return nil, ErrFreed
	}
	out := &Array{shape: a.shape.Clean(), dtype: a.dtype, block: Allocate(a.dtype, a.shape.size, false)}
	CopyElements(out.block, a.block, a.shape)
	return out, nil
}

// CopyElements copies the elements src views through shape, in logical
// order, to the start of dst. Both blocks must have the same dtype.
func CopyElements(dst, src *Block, shape Shape) {
	item := src.ItemLength()
	from, to := src.Bytes(), dst.Bytes()
	if shape.IsLinear() {
		start := shape.offset * item
		copy(to, from[start:start+shape.size*item])
		return
	}
	pos := 0
	inc := NewIncrementor(shape.dims)
	for idx := inc.Index(); idx != nil; idx = inc.Next() {
		off := shape.GetOffset(idx...) * item
		copy(to[pos:pos+item], from[off:off+item])
		pos += item
	}
}

// offsetOf validates coords and returns their memory offset. Negative
// coordinates count from the end of their axis.
func (a *Array) offsetOf(coords []int) (int, error) {
	if a.block.IsFreed() {
		return 0, ErrFreed
	}
	if len(coords) != len(a.shape.dims) {
		return 0, Errorf(ErrIndexOutOfRange, "expected %d indices for array of shape %v, got %d",
			len(a.shape.dims), a.shape, len(coords))
	}
	off := a.shape.offset
	for i, c := range coords {
		d := a.shape.dims[i]
		if c < 0 {
			c += d
		}
		if c < 0 || c >= d {
			return 0, Errorf(ErrIndexOutOfRange, "index %d is out of bounds for axis %d with size %d", coords[i], i, d)
		}
		off += c * a.shape.strides[i]
	}
	return off, nil
}

// GetAt reads the element at coords, converted to T.
func GetAt[T Element](a *Array, coords ...int) (T, error) {
	off, err := a.offsetOf(coords)
	if err != nil {
		var zero T
		return zero, err
	}
	return Reader[T](a.block)(off), nil
}

// GetFlat reads the element at logical row-major position i, converted to T.
func GetFlat[T Element](a *Array, i int) (T, error) {
	if i < 0 || i >= a.shape.size {
		var zero T
		return zero, Errorf(ErrIndexOutOfRange, "flat index %d is out of bounds for size %d", i, a.shape.size)
	}
	return GetAt[T](a, a.shape.GetCoordinates(i)...)
}

// SetAt stores v, converted to the array's dtype, at coords.
func SetAt[T Element](a *Array, v T, coords ...int) error {
	if a.shape.IsBroadcasted() {
		return Errorf(ErrReadOnly, "assignment destination is a broadcast view %v", a.shape)
	}
	if a.block.ReadOnly() {
		return Errorf(ErrReadOnly, "assignment destination is read-only memory")
	}
	off, err := a.offsetOf(coords)
	if err != nil {
		return err
	}
	Writer[T](a.block)(off, v)
	return nil
}

// SetFlat stores v at logical row-major position i.
func SetFlat[T Element](a *Array, v T, i int) error {
	if i < 0 || i >= a.shape.size {
		return Errorf(ErrIndexOutOfRange, "flat index %d is out of bounds for size %d", i, a.shape.size)
	}
	return SetAt(a, v, a.shape.GetCoordinates(i)...)
}

// ToSlice returns the elements in logical order, converted to T.
func ToSlice[T Element](a *Array) ([]T, error) {
	out := make([]T, a.shape.size)
	if err := CopyTo(a, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CopyTo writes the elements in logical order, converted to T, into dst.
func CopyTo[T Element](a *Array, dst []T) error {
	if a.block.IsFreed() {
		return ErrFreed
	}
	if len(dst) < a.shape.size {
		return Errorf(ErrShapeMismatch, "destination holds %d elements, need %d", len(dst), a.shape.size)
	}
	it := NewIterator[T](a.block, a.shape, false)
	for i := 0; it.HasNext(); i++ {
		dst[i] = it.MoveNext()
	}
	return nil
}

// Data returns the array's elements without copying. The array must be
// linear and of type T.
//
// WARNING: the slice aliases the array's memory, read-only memory included.
func Data[T Element](a *Array) ([]T, error) {
	if dt := DataTypeOf[T](); dt != a.dtype {
		return nil, Errorf(ErrType, "array has dtype %s, not %s", a.dtype, dt)
	}
	if !a.shape.IsLinear() {
		return nil, Errorf(ErrUnsupported, "array view %v is not contiguous", a.shape)
	}
	if a.block.IsFreed() {
		return nil, ErrFreed
	}
	data := Elements[T](a.block)
	return data[a.shape.offset : a.shape.offset+a.shape.size], nil
}

// String renders the array NumPy style, e.g. "array([[1, 2], [3, 4]], dtype=int32)".
func (a *Array) String() string {
	if a.block.IsFreed() {
		return "array(<freed>, dtype=" + a.dtype.String() + ")"
	}
	format := a.formatter()
	var sb strings.Builder
	sb.WriteString("array(")
	if a.shape.IsScalar() {
		sb.WriteString(format(a.shape.offset))
	} else {
		a.writeAxis(&sb, format, 0, a.shape.offset)
	}
	sb.WriteString(", dtype=")
	sb.WriteString(a.dtype.String())
	sb.WriteByte(')')
	return sb.String()
}

func (a *Array) writeAxis(sb *strings.Builder, format func(int) string, axis, off int) {
	sb.WriteByte('[')
	for i := 0; i < a.shape.dims[axis]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		pos := off + i*a.shape.strides[axis]
		if axis == len(a.shape.dims)-1 {
			sb.WriteString(format(pos))
		} else {
			a.writeAxis(sb, format, axis+1, pos)
		}
	}
	sb.WriteByte(']')
}

func (a *Array) formatter() func(int) string {
	switch {
	case a.dtype == Bool:
		read := Reader[bool](a.block)
		return func(i int) string { return strconv.FormatBool(read(i)) }
	case a.dtype.IsFloat():
		read := Reader[float64](a.block)
		return func(i int) string { return strconv.FormatFloat(read(i), 'g', -1, 64) }
	case a.dtype.IsSigned():
		read := Reader[int64](a.block)
		return func(i int) string { return strconv.FormatInt(read(i), 10) }
	default:
		read := Reader[uint64](a.block)
		return func(i int) string { return strconv.FormatUint(read(i), 10) }
	}
}
