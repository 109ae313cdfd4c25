package tensor

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// PoolSlotSize is the byte size of every pool slot: one value of the
	// largest supported primitive.
	PoolSlotSize = MaxItemLength

	defaultPoolGrowth = 64
)

// PoolHandle identifies one slot taken from a StackedMemoryPool. The
// generation makes a stale handle (already returned) detectable.
type PoolHandle struct {
	pool       *StackedMemoryPool
	index      int32
	generation uint32
}

// Bytes returns the slot's memory.
func (h PoolHandle) Bytes() []byte {
	return h.pool.slotBytes(h.index)
}

// Valid reports whether the handle was issued by a pool.
func (h PoolHandle) Valid() bool { return h.pool != nil }

type poolSlot struct {
	generation uint32
	out        bool
}

// StackedMemoryPool is an arena of fixed-size slots for scalar-sized
// allocations. Take and Return run under a single mutex and the pool grows
// on demand instead of blocking.
type StackedMemoryPool struct {
	mu      sync.Mutex
	chunks  [][]byte
	slots   []poolSlot
	free    []int32
	growth  int
	out     int
	high    int
	debug   bool
	metrics *PoolMetrics
	logger  zerolog.Logger
}

// PoolConfig configures a StackedMemoryPool.
type PoolConfig struct {
	// Initial is the number of slots allocated up front.
	Initial int
	// Growth is the number of slots added when the free list runs dry.
	Growth int
	// Debug turns handle violations into panics.
	Debug bool
	// Metrics receives pool activity. Nil disables metrics.
	Metrics *PoolMetrics
	// Logger receives growth events.
	Logger zerolog.Logger
}

// NewStackedMemoryPool creates a pool.
func NewStackedMemoryPool(cfg PoolConfig) *StackedMemoryPool {
	if cfg.Growth <= 0 {
		cfg.Growth = defaultPoolGrowth
	}
	p := &StackedMemoryPool{
		growth:  cfg.Growth,
		debug:   cfg.Debug,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	if cfg.Initial > 0 {
		p.AddAllocations(cfg.Initial)
	}
	return p
}

// AddAllocations grows the pool by n slots.
func (p *StackedMemoryPool) AddAllocations(n int) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	p.grow(n)
	total := len(p.slots)
	p.mu.Unlock()

	p.metrics.grew(n)
	p.logger.Debug().Int("added", n).Int("total", total).Msg("memory pool grown")
}

// grow must be called with p.mu held.
func (p *StackedMemoryPool) grow(n int) {
	base := len(p.slots)
	p.chunks = append(p.chunks, alignedBytes(n*PoolSlotSize))
	for i := 0; i < n; i++ {
		p.slots = append(p.slots, poolSlot{})
	}
	// Push in reverse so the lowest index is taken first.
	for i := base + n - 1; i >= base; i-- {
		p.free = append(p.free, int32(i)) //nolint:gosec // G115: slot count stays far below 2^31.
	}
}

// Take returns a free slot, growing the pool when none is left. The slot's
// memory is not cleared.
func (p *StackedMemoryPool) Take() PoolHandle {
	p.mu.Lock()
	grew := 0
	if len(p.free) == 0 {
		grew = p.growth
		p.grow(grew)
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	slot := &p.slots[idx]
	slot.out = true
	p.out++
	if p.out > p.high {
		p.high = p.out
	}
	h := PoolHandle{pool: p, index: idx, generation: slot.generation}
	out := p.out
	total := len(p.slots)
	p.mu.Unlock()

	if grew > 0 {
		p.metrics.grew(grew)
		p.logger.Debug().Int("added", grew).Int("total", total).Msg("memory pool grown on demand")
	}
	p.metrics.took(out)
	return h
}

// Return puts a slot back on the free list. Handles from another pool
// yield ErrForeignHandle and handles already returned yield ErrDoubleReturn;
// in debug mode both panic instead.
func (p *StackedMemoryPool) Return(h PoolHandle) error {
	p.mu.Lock()
	err := p.check(h)
	if err == nil {
		slot := &p.slots[h.index]
		slot.out = false
		slot.generation++
		p.free = append(p.free, h.index)
		p.out--
	}
	out := p.out
	p.mu.Unlock()

	if err != nil {
		if p.debug {
			panic(fmt.Sprintf("tensor: memory pool assertion failed: %v", err))
		}
		return err
	}
	p.metrics.returned(out)
	return nil
}

// check must be called with p.mu held.
func (p *StackedMemoryPool) check(h PoolHandle) error {
	if h.pool != p || h.index < 0 || int(h.index) >= len(p.slots) {
		return Errorf(ErrForeignHandle, "slot %d", h.index)
	}
	slot := p.slots[h.index]
	if !slot.out || slot.generation != h.generation {
		return Errorf(ErrDoubleReturn, "slot %d generation %d (current %d)", h.index, h.generation, slot.generation)
	}
	return nil
}

// Outstanding returns the number of slots currently taken.
func (p *StackedMemoryPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

// Allocated returns the number of slots the pool owns.
func (p *StackedMemoryPool) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// HighWater returns the largest number of slots ever taken at once.
func (p *StackedMemoryPool) HighWater() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.high
}

func (p *StackedMemoryPool) slotBytes(idx int32) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := int(idx)
	for _, chunk := range p.chunks {
		n := len(chunk) / PoolSlotSize
		if i < n {
			return chunk[i*PoolSlotSize : (i+1)*PoolSlotSize : (i+1)*PoolSlotSize]
		}
		i -= n
	}
	return nil
}

// AllocateFromPool creates an owned single-element block whose memory is a
// pool slot. Releasing the block returns the slot; a block that becomes
// unreachable without being released returns it from a runtime cleanup.
func AllocateFromPool(p *StackedMemoryPool, dtype DataType) *Block {
	h := p.Take()
	data := h.Bytes()[:dtype.Size()]
	clear(data)
	buf := newBuffer(data, func() { p.reclaim(h) })
	buf.cleanup = runtime.AddCleanup(buf, p.reclaim, h)
	buf.hasCleanup = true
	return &Block{
		buf:   buf,
		dtype: dtype,
		count: 1,
		owns:  true,
	}
}

// reclaim returns a slot on behalf of a block.
func (p *StackedMemoryPool) reclaim(h PoolHandle) {
	if err := p.Return(h); err != nil {
		p.logger.Error().Err(err).Msg("returning pool slot")
	}
}
