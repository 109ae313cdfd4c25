package tensor

import (
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// buffer is a reference-counted backing allocation shared by every Block
// that views it. It is freed exactly once, when the last reference is
// released or when DangerousFree is called.
type buffer struct {
	data      []byte
	refs      atomic.Int32
	freed     atomic.Bool
	readOnly  bool
	onRelease func()

	// cleanup reclaims resources the garbage collector cannot, when the
	// buffer becomes unreachable without being freed.
	cleanup    runtime.Cleanup
	hasCleanup bool
}

// newBuffer creates a buffer with one reference.
func newBuffer(data []byte, onRelease func()) *buffer {
	buf := &buffer{data: data, onRelease: onRelease}
	buf.refs.Store(1)
	return buf
}

func (b *buffer) retain() {
	b.refs.Add(1)
}

func (b *buffer) release() {
	if b.refs.Add(-1) == 0 {
		b.free()
	}
}

func (b *buffer) free() {
	if !b.freed.CompareAndSwap(false, true) {
		return
	}
	if b.hasCleanup {
		b.cleanup.Stop()
	}
	if b.onRelease != nil {
		b.onRelease()
	}
	b.data = nil
}

// Block is a typed window over a backing buffer: the memory half of an
// Array. A Block either owns its allocation or borrows it from another
// Block (zero-copy slicing) or from external memory. Every Block holds one
// reference on the buffer; Release drops it.
type Block struct {
	buf      *buffer
	dtype    DataType
	start    int // first element, in items
	count    int
	owns     bool
	released atomic.Bool
}

// Allocate creates an owned block of count elements. With zero unset the
// memory may be a recycled, uninitialized buffer ("empty" semantics); with
// zero set it is cleared.
func Allocate(dtype DataType, count int, zero bool) *Block {
	n := count * dtype.Size()
	data, recycle := defaultCache.get(n)
	// Recycled bytes are not valid bool values.
	if zero || dtype == Bool {
		clear(data)
	}
	return &Block{
		buf:   newBuffer(data, recycle),
		dtype: dtype,
		count: count,
		owns:  true,
	}
}

// WrapBytes creates a borrowed block over externally owned memory.
// onRelease, if not nil, runs once when the last view of the memory is
// released.
func WrapBytes(dtype DataType, data []byte, onRelease func()) (*Block, error) {
	item := dtype.Size()
	if len(data)%item != 0 {
		return nil, Errorf(ErrShapeMismatch, "buffer of %d bytes is not a multiple of %s item size %d", len(data), dtype, item)
	}
	return &Block{
		buf:   newBuffer(data, onRelease),
		dtype: dtype,
		count: len(data) / item,
	}, nil
}

// WrapReadOnlyBytes is WrapBytes for memory that must not be modified, such
// as buffers shared with another runtime. Arrays over the block, and over
// every slice of it, reject assignment with ErrReadOnly.
func WrapReadOnlyBytes(dtype DataType, data []byte, onRelease func()) (*Block, error) {
	b, err := WrapBytes(dtype, data, onRelease)
	if err != nil {
		return nil, err
	}
	b.buf.readOnly = true
	return b, nil
}

// ReadOnly reports whether the memory rejects assignment.
func (b *Block) ReadOnly() bool { return b.buf.readOnly }

// DType returns the element type (TypeCode).
func (b *Block) DType() DataType { return b.dtype }

// ItemLength returns the number of bytes per element.
func (b *Block) ItemLength() int { return b.dtype.Size() }

// Count returns the number of elements.
func (b *Block) Count() int { return b.count }

// BytesLength returns Count * ItemLength.
func (b *Block) BytesLength() int { return b.count * b.dtype.Size() }

// Owns reports whether the block owns its allocation (as opposed to
// borrowing it).
func (b *Block) Owns() bool { return b.owns }

// IsFreed reports whether the backing allocation has been freed.
func (b *Block) IsFreed() bool { return b.buf.freed.Load() }

// Refs returns the number of live references on the backing allocation.
func (b *Block) Refs() int { return int(b.buf.refs.Load()) }

// Bytes returns the block's memory. It returns nil once freed.
//
// WARNING: Direct access to underlying memory. Use with caution.
func (b *Block) Bytes() []byte {
	data := b.buf.data
	if data == nil {
		return nil
	}
	item := b.dtype.Size()
	return data[b.start*item : (b.start+b.count)*item]
}

// Address returns the base pointer of the block, or nil when empty or freed.
func (b *Block) Address() unsafe.Pointer {
	data := b.Bytes()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

// Slice returns a borrowed view of count elements starting at start. With
// count omitted the view extends to the end. No memory is copied; the
// parent allocation stays alive until the view is released.
func (b *Block) Slice(start int, count ...int) (*Block, error) {
	if b.IsFreed() {
		return nil, ErrFreed
	}
	n := b.count - start
	if len(count) > 0 {
		n = count[0]
	}
	if start < 0 || n < 0 || start+n > b.count {
		return nil, Errorf(ErrIndexOutOfRange, "slice [%d:%d] out of range for block of %d elements", start, start+n, b.count)
	}
	b.buf.retain()
	return &Block{
		buf:   b.buf,
		dtype: b.dtype,
		start: b.start + start,
		count: n,
	}, nil
}

// Share returns a borrowed handle over the same elements.
func (b *Block) Share() *Block {
	b.buf.retain()
	return &Block{
		buf:   b.buf,
		dtype: b.dtype,
		start: b.start,
		count: b.count,
	}
}

// Release drops this block's reference. The allocation is freed when the
// last reference goes. Releasing a block twice is a no-op.
func (b *Block) Release() {
	if b.released.CompareAndSwap(false, true) {
		b.buf.release()
	}
}

// DangerousFree frees the backing allocation immediately, regardless of
// outstanding views.
//
// WARNING: callers must guarantee that no other Block or Array aliases the
// memory; every alias observes a freed block afterwards.
func (b *Block) DangerousFree() {
	b.released.Store(true)
	b.buf.free()
}

// Elements interprets the block as a []T.
// Panics if T does not match the block's dtype.
func Elements[T Element](b *Block) []T {
	if dt := DataTypeOf[T](); dt != b.dtype {
		panic("tensor: block dtype is " + b.dtype.String() + ", not " + dt.String())
	}
	data := b.Bytes()
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by Count()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), b.count)
}

// bufferCache recycles allocations by power-of-two size class so
// uninitialized allocation avoids both the allocator and zeroing.
type bufferCache struct {
	classes [48]sync.Pool
}

var defaultCache = &bufferCache{}

// get returns n bytes (8-byte aligned) and the function that recycles them.
func (c *bufferCache) get(n int) ([]byte, func()) {
	if n == 0 {
		return []byte{}, nil
	}
	class := bits.Len(uint(n - 1))
	if class >= len(c.classes) {
		return alignedBytes(n), nil
	}
	var words []uint64
	if v, ok := c.classes[class].Get().(*[]uint64); ok {
		words = *v
	} else {
		words = make([]uint64, (1<<class+7)/8)
	}
	data := wordBytes(words)[:n]
	return data, func() {
		c.classes[class].Put(&words)
	}
}

// alignedBytes allocates n zeroed bytes aligned for any primitive.
func alignedBytes(n int) []byte {
	return wordBytes(make([]uint64, (n+7)/8))[:n]
}

func wordBytes(words []uint64) []byte {
	if len(words) == 0 {
		return []byte{}
	}
	//nolint:gosec // reinterpreting an 8-byte aligned allocation as bytes
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
}
