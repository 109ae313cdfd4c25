package tensor

import (
	"math"
	"strconv"
	"strings"
)

// Layout is the memory order a contiguous shape's strides are derived from.
type Layout int

// Supported layouts.
const (
	RowMajor    Layout = iota // C order, last axis fastest
	ColumnMajor               // Fortran order, first axis fastest
)

// String returns the NumPy order letter of the layout.
func (l Layout) String() string {
	if l == ColumnMajor {
		return "F"
	}
	return "C"
}

// BroadcastInfo records the shape a broadcast view was expanded from.
type BroadcastInfo struct {
	Original Shape
}

// Shape describes the dimensions, strides and view state of an array.
//
// Shapes are immutable by convention: every transform returns a new Shape
// with freshly allocated slices, so a view never changes the shape of the
// array it was taken from.
type Shape struct {
	dims    []int
	strides []int
	offset  int
	size    int
	layout  Layout
	sliced  bool
	bcast   *BroadcastInfo
}

// NewShape creates a contiguous row-major shape.
//
// Example:
//
//	s := tensor.NewShape(2, 3) // strides [3, 1]
//	s := tensor.NewShape()     // scalar
func NewShape(dims ...int) Shape {
	return NewShapeLayout(RowMajor, dims...)
}

// NewShapeLayout creates a contiguous shape with the given layout.
func NewShapeLayout(layout Layout, dims ...int) Shape {
	d := cloneInts(dims)
	var strides []int
	if layout == ColumnMajor {
		strides = ColumnMajorStrides(d)
	} else {
		strides = ComputeStrides(d)
	}
	return Shape{
		dims:    d,
		strides: strides,
		size:    NumElements(d),
		layout:  layout,
	}
}

// ScalarShape returns the 0-dimensional shape.
func ScalarShape() Shape {
	return NewShape()
}

// NumElements returns the product of dims (1 for a scalar).
func NumElements(dims []int) int {
	n := 1
	for _, dim := range dims {
		n *= dim
	}
	return n
}

// ComputeStrides calculates row-major strides for dims.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func ComputeStrides(dims []int) []int {
	strides := make([]int, len(dims))
	if len(dims) == 0 {
		return strides
	}

	strides[len(dims)-1] = 1
	for i := len(dims) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * max(dims[i+1], 1)
	}
	return strides
}

// ColumnMajorStrides calculates column-major strides for dims.
func ColumnMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := range dims {
		strides[i] = acc
		acc *= max(dims[i], 1)
	}
	return strides
}

// Dims returns a copy of the dimensions.
func (s Shape) Dims() []int { return cloneInts(s.dims) }

// Dim returns the size of one axis.
func (s Shape) Dim(axis int) int { return s.dims[axis] }

// Strides returns a copy of the per-axis element strides.
func (s Shape) Strides() []int { return cloneInts(s.strides) }

// Offset returns the element offset of the first logical element.
func (s Shape) Offset() int { return s.offset }

// Size returns the number of logical elements.
func (s Shape) Size() int { return s.size }

// NDim returns the number of dimensions.
func (s Shape) NDim() int { return len(s.dims) }

// Layout returns the layout the shape was created with.
func (s Shape) Layout() Layout { return s.layout }

// IsScalar reports whether the shape is 0-dimensional.
func (s Shape) IsScalar() bool { return len(s.dims) == 0 }

// IsSliced reports whether the shape is a slice view.
func (s Shape) IsSliced() bool { return s.sliced }

// IsBroadcasted reports whether some axis replicates data through a zero stride.
func (s Shape) IsBroadcasted() bool { return s.bcast != nil }

// Broadcast returns the broadcast bookkeeping, or nil.
func (s Shape) Broadcast() *BroadcastInfo { return s.bcast }

// IsBroadcastScalar reports whether the shape is a single value broadcast to
// a larger shape.
func (s Shape) IsBroadcastScalar() bool {
	return s.bcast != nil && s.bcast.Original.size == 1
}

// IsContiguous reports whether strides match the layout's derived strides.
// Axes of size 1 carry no stride constraint.
func (s Shape) IsContiguous() bool {
	if s.bcast != nil {
		return false
	}
	if s.size <= 1 {
		return true
	}
	if s.layout == ColumnMajor {
		return s.stridesMatch(ColumnMajorStrides(s.dims))
	}
	return s.stridesMatch(ComputeStrides(s.dims))
}

// IsLinear reports whether the logical row-major order equals memory order,
// so a flat pointer walk from Offset visits every element.
func (s Shape) IsLinear() bool {
	if s.bcast != nil {
		return false
	}
	if s.size <= 1 {
		return true
	}
	return s.stridesMatch(ComputeStrides(s.dims))
}

// stridesMatch compares strides with want, ignoring axes of size 1.
func (s Shape) stridesMatch(want []int) bool {
	for i, dim := range s.dims {
		if dim != 1 && s.strides[i] != want[i] {
			return false
		}
	}
	return true
}

// layoutOf returns the layout whose derived strides s has. Shapes matching
// neither keep their tag.
func layoutOf(s Shape) Layout {
	if s.bcast != nil || s.size <= 1 {
		return s.layout
	}
	switch {
	case s.stridesMatch(ComputeStrides(s.dims)):
		return RowMajor
	case s.stridesMatch(ColumnMajorStrides(s.dims)):
		return ColumnMajor
	}
	return s.layout
}

// Validate checks that no dimension is negative.
func (s Shape) Validate() error {
	for i, dim := range s.dims {
		if dim < 0 {
			return Errorf(ErrShapeMismatch, "invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return intsEqual(s.dims, other.dims)
}

// EqualDims reports whether the shape has the given dimensions.
func (s Shape) EqualDims(dims ...int) bool {
	return intsEqual(s.dims, dims)
}

// String formats the dimensions NumPy style, e.g. "(2, 3)" or "(5,)".
func (s Shape) String() string {
	return FormatDims(s.dims)
}

// FormatDims formats dims like a NumPy shape tuple.
func FormatDims(dims []int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, d := range dims {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(d))
	}
	if len(dims) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// GetOffset returns the element offset of coords. Missing trailing
// coordinates are treated as 0. Coordinates on zero-stride (broadcast) axes
// do not move the offset.
func (s Shape) GetOffset(coords ...int) int {
	off := s.offset
	for i, c := range coords {
		off += c * s.strides[i]
	}
	return off
}

// GetCoordinates converts a logical row-major flat index into coordinates.
func (s Shape) GetCoordinates(flat int) []int {
	coords := make([]int, len(s.dims))
	for i := len(s.dims) - 1; i >= 0; i-- {
		d := s.dims[i]
		if d == 0 {
			continue
		}
		coords[i] = flat % d
		flat /= d
	}
	return coords
}

// Clean returns a fresh contiguous row-major shape with the same dims and no
// view or broadcast state. It is the shape of every newly allocated result.
func (s Shape) Clean() Shape {
	return NewShape(s.dims...)
}

// Reshape returns a shape with new dimensions over the same elements.
// One dimension may be -1 and is inferred. The receiver must be linear;
// non-linear views have to be copied first.
func (s Shape) Reshape(dims ...int) (Shape, error) {
	newDims, err := resolveReshape(s.size, dims)
	if err != nil {
		return Shape{}, err
	}
	if !s.IsLinear() {
		return Shape{}, Errorf(ErrUnsupported, "reshape of non-contiguous view %v requires a copy", s)
	}
	out := NewShape(newDims...)
	out.offset = s.offset
	out.sliced = s.sliced
	return out, nil
}

func resolveReshape(size int, dims []int) ([]int, error) {
	out := cloneInts(dims)
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1:
			if infer >= 0 {
				return nil, Errorf(ErrShapeMismatch, "can only specify one unknown dimension")
			}
			infer = i
		case d < 0:
			return nil, Errorf(ErrShapeMismatch, "negative dimension %d", d)
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || size%known != 0 {
			return nil, Errorf(ErrShapeMismatch, "cannot reshape array of size %d into shape %s", size, FormatDims(dims))
		}
		out[infer] = size / known
		known *= out[infer]
	}
	if known != size {
		return nil, Errorf(ErrShapeMismatch, "cannot reshape array of size %d into shape %s", size, FormatDims(dims))
	}
	return out, nil
}

// Transpose permutes the axes. With no axes the order is reversed.
func (s Shape) Transpose(axes ...int) (Shape, error) {
	ndim := len(s.dims)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		return Shape{}, Errorf(ErrShapeMismatch, "axes don't match array: got %d axes for %d-d array", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	out := s.derive()
	for i, ax := range axes {
		ax, err := NormalizeAxis(ax, ndim)
		if err != nil {
			return Shape{}, err
		}
		if seen[ax] {
			return Shape{}, Errorf(ErrShapeMismatch, "repeated axis %d in transpose", ax)
		}
		seen[ax] = true
		out.dims[i] = s.dims[ax]
		out.strides[i] = s.strides[ax]
	}
	out.layout = layoutOf(out)
	return out, nil
}

// Unset marks an omitted slice bound.
const Unset = math.MinInt

// Range selects elements along one axis, with Python slice semantics.
// A collapsing range (see At) selects one index and removes the axis.
type Range struct {
	Start, Stop, Step int
	collapse          bool
}

// All selects every element of an axis.
func All() Range { return Range{Start: Unset, Stop: Unset, Step: 1} }

// Span selects [start, stop) with step 1. Negative bounds count from the end.
func Span(start, stop int) Range { return Range{Start: start, Stop: stop, Step: 1} }

// Stride selects [start, stop) with the given step; bounds may be Unset.
func Stride(start, stop, step int) Range { return Range{Start: start, Stop: stop, Step: step} }

// At selects a single index and drops the axis.
func At(i int) Range { return Range{Start: i, Stop: i + 1, Step: 1, collapse: true} }

// indices resolves the range against an axis of length n, returning start,
// step and the number of selected elements.
func (r Range) indices(n int) (start, step, count int, err error) {
	step = r.Step
	if step == 0 {
		return 0, 0, 0, Errorf(ErrShapeMismatch, "slice step cannot be zero")
	}
	if r.collapse {
		i := r.Start
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return 0, 0, 0, Errorf(ErrIndexOutOfRange, "index %d is out of bounds for axis with size %d", r.Start, n)
		}
		return i, 1, 1, nil
	}

	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(v, def int) int {
		if v == Unset {
			return def
		}
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
		} else if v > upper {
			v = upper
		}
		return v
	}
	if step > 0 {
		start = clamp(r.Start, lower)
		stop := clamp(r.Stop, upper)
		if stop > start {
			count = (stop - start + step - 1) / step
		}
	} else {
		start = clamp(r.Start, upper)
		stop := clamp(r.Stop, lower)
		if start > stop {
			count = (start - stop - step - 1) / -step
		}
	}
	return start, step, count, nil
}

// Slice returns a view selecting ranges along the leading axes. Axes without
// a range are kept whole.
func (s Shape) Slice(ranges ...Range) (Shape, error) {
	if len(ranges) > len(s.dims) {
		return Shape{}, Errorf(ErrIndexOutOfRange, "too many indices for array: %d-d array, %d were indexed", len(s.dims), len(ranges))
	}
	out := Shape{
		offset: s.offset,
		layout: s.layout,
		sliced: true,
		bcast:  s.bcast,
	}
	for i, dim := range s.dims {
		if i >= len(ranges) {
			out.dims = append(out.dims, dim)
			out.strides = append(out.strides, s.strides[i])
			continue
		}
		start, step, count, err := ranges[i].indices(dim)
		if err != nil {
			return Shape{}, err
		}
		if count > 0 {
			out.offset += start * s.strides[i]
		}
		if ranges[i].collapse {
			continue
		}
		out.dims = append(out.dims, count)
		out.strides = append(out.strides, s.strides[i]*step)
	}
	if out.dims == nil {
		out.dims, out.strides = []int{}, []int{}
	}
	out.size = NumElements(out.dims)
	return out, nil
}

// BroadcastTo returns a view of s expanded to dims under NumPy rules.
// Replicated axes get stride 0 and the result records the original shape.
func (s Shape) BroadcastTo(dims ...int) (Shape, error) {
	if len(dims) < len(s.dims) {
		return Shape{}, Errorf(ErrShapeMismatch, "cannot broadcast %v to %s: target has fewer dimensions", s, FormatDims(dims))
	}
	if intsEqual(s.dims, dims) {
		return s, nil
	}

	pad := len(dims) - len(s.dims)
	out := Shape{
		dims:    cloneInts(dims),
		strides: make([]int, len(dims)),
		offset:  s.offset,
		size:    NumElements(dims),
		layout:  s.layout,
		sliced:  s.sliced,
	}
	for i := range dims {
		if i < pad {
			continue
		}
		src := s.dims[i-pad]
		switch {
		case src == dims[i]:
			out.strides[i] = s.strides[i-pad]
		case src == 1:
			out.strides[i] = 0
		default:
			return Shape{}, Errorf(ErrShapeMismatch, "cannot broadcast %v to %s (dimension %d: %d vs %d)",
				s, FormatDims(dims), i, src, dims[i])
		}
	}

	switch {
	case s.bcast != nil:
		out.bcast = s.bcast
	case out.size > s.size:
		out.bcast = &BroadcastInfo{Original: s}
	}
	return out, nil
}

// ExpandDims inserts a size-1 axis at position axis.
func (s Shape) ExpandDims(axis int) (Shape, error) {
	ndim := len(s.dims) + 1
	axis, err := NormalizeAxis(axis, ndim)
	if err != nil {
		return Shape{}, err
	}
	out := s.derive()
	out.dims = insertInt(out.dims, axis, 1)
	stride := 1
	if axis < len(s.dims) {
		stride = s.strides[axis] * max(s.dims[axis], 1)
	}
	out.strides = insertInt(out.strides, axis, stride)
	return out, nil
}

// Squeeze removes size-1 axes. With no axes every size-1 axis is removed.
func (s Shape) Squeeze(axes ...int) (Shape, error) {
	drop := make([]bool, len(s.dims))
	if len(axes) == 0 {
		for i, d := range s.dims {
			drop[i] = d == 1
		}
	}
	for _, ax := range axes {
		ax, err := NormalizeAxis(ax, len(s.dims))
		if err != nil {
			return Shape{}, err
		}
		if s.dims[ax] != 1 {
			return Shape{}, Errorf(ErrShapeMismatch, "cannot select an axis to squeeze out which has size not equal to one")
		}
		drop[ax] = true
	}
	out := s.derive()
	out.dims, out.strides = out.dims[:0], out.strides[:0]
	for i := range s.dims {
		if !drop[i] {
			out.dims = append(out.dims, s.dims[i])
			out.strides = append(out.strides, s.strides[i])
		}
	}
	return out, nil
}

// ReduceAxis returns the shape left after reducing axis: the axis is removed,
// or kept with size 1 when keepDims is set.
func (s Shape) ReduceAxis(axis int, keepDims bool) Shape {
	dims := make([]int, 0, len(s.dims))
	for i, d := range s.dims {
		switch {
		case i != axis:
			dims = append(dims, d)
		case keepDims:
			dims = append(dims, 1)
		}
	}
	return NewShape(dims...)
}

// derive copies s into a new Shape with private slices.
func (s Shape) derive() Shape {
	out := s
	out.dims = cloneInts(s.dims)
	out.strides = cloneInts(s.strides)
	return out
}

func cloneInts(v []int) []int {
	out := make([]int, len(v))
	copy(out, v)
	return out
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func insertInt(v []int, at, x int) []int {
	v = append(v, 0)
	copy(v[at+1:], v[at:])
	v[at] = x
	return v
}

// extent returns the lowest and highest memory offsets the shape addresses.
// The shape must not be empty.
func (s Shape) extent() (lo, hi int) {
	lo, hi = s.offset, s.offset
	for i, d := range s.dims {
		span := (d - 1) * s.strides[i]
		if span < 0 {
			lo += span
		} else {
			hi += span
		}
	}
	return lo, hi
}
