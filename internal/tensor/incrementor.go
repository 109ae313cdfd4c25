package tensor

// Incrementor is an odometer over a multi-index. Next advances the last
// (fastest varying) axis and carries into higher axes on overflow, matching
// the row-major logical order.
//
//	inc := tensor.NewIncrementor([]int{2, 2})
//	for idx := inc.Index(); idx != nil; idx = inc.Next() {
//	    // [0 0] [0 1] [1 0] [1 1]
//	}
type Incrementor struct {
	dims      []int
	index     []int
	skip      int // axis held at its current value, -1 when none
	autoReset bool
	done      bool
}

// NewIncrementor creates an incrementor that reports exhaustion.
func NewIncrementor(dims []int) *Incrementor {
	return newIncrementor(dims, -1, false)
}

// NewAutoResetIncrementor creates an incrementor that wraps around to the
// first index instead of reporting exhaustion.
func NewAutoResetIncrementor(dims []int) *Incrementor {
	return newIncrementor(dims, -1, true)
}

// NewIncrementorExcept creates an incrementor walking every axis except
// axis, which stays at 0 (or wherever SetAxis puts it).
func NewIncrementorExcept(dims []int, axis int) *Incrementor {
	return newIncrementor(dims, axis, false)
}

func newIncrementor(dims []int, skip int, autoReset bool) *Incrementor {
	inc := &Incrementor{
		dims:      cloneInts(dims),
		index:     make([]int, len(dims)),
		skip:      skip,
		autoReset: autoReset,
	}
	for i, d := range dims {
		if d == 0 && i != skip {
			inc.done = true
		}
	}
	return inc
}

// Index returns the current multi-index, or nil when exhausted. The returned
// slice is owned by the incrementor and must not be modified.
func (inc *Incrementor) Index() []int {
	if inc.done {
		return nil
	}
	return inc.index
}

// Next advances to the next multi-index and returns it, or nil once the
// outermost axis overflows.
func (inc *Incrementor) Next() []int {
	if inc.done {
		return nil
	}
	for axis := len(inc.dims) - 1; axis >= 0; axis-- {
		if axis == inc.skip {
			continue
		}
		inc.index[axis]++
		if inc.index[axis] < inc.dims[axis] {
			return inc.index
		}
		inc.index[axis] = 0
	}
	if inc.autoReset && !inc.emptyDims() {
		return inc.index
	}
	inc.done = true
	return nil
}

// Reset zeroes the index.
func (inc *Incrementor) Reset() {
	clear(inc.index)
	inc.done = false
	for i, d := range inc.dims {
		if d == 0 && i != inc.skip {
			inc.done = true
		}
	}
}

// SetAxis positions the held axis of an except-incrementor.
func (inc *Incrementor) SetAxis(v int) {
	if inc.skip >= 0 {
		inc.index[inc.skip] = v
	}
}

func (inc *Incrementor) emptyDims() bool {
	for i, d := range inc.dims {
		if d == 0 && i != inc.skip {
			return true
		}
	}
	return false
}
