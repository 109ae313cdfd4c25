package cpu

import (
	"github.com/born-ml/ndarray/internal/tensor"
)

// boolEngine serves Bool arrays. Arithmetic falls back to the DefaultEngine,
// which makes Add a logical or and Multiply a logical and; logical and
// equality operations run directly on []bool.
type boolEngine struct {
	*DefaultEngine
}

func newBoolEngine(base *DefaultEngine) tensor.Engine {
	return &boolEngine{DefaultEngine: base}
}

func (e *boolEngine) logical(op string, a, b *tensor.Array, f func(x, y bool) bool) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	return binary(e.alloc, a, b, f)
}

// Subtract is not defined on booleans.
func (e *boolEngine) Subtract(_, _ *tensor.Array) (*tensor.Array, error) {
	return nil, tensor.Errorf(tensor.ErrType,
		"numpy boolean subtract is not supported, use the logical_xor operation instead")
}

// Negate is not defined on booleans.
func (e *boolEngine) Negate(_ *tensor.Array) (*tensor.Array, error) {
	return nil, tensor.Errorf(tensor.ErrType,
		"the negative operation on a boolean array is not supported, use the logical_not operation instead")
}

// Equal returns a == b.
func (e *boolEngine) Equal(a, b *tensor.Array) (*tensor.Array, error) {
	return e.logical("equal", a, b, equal[bool])
}

// NotEqual returns a != b.
func (e *boolEngine) NotEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.logical("not_equal", a, b, notEqual[bool])
}

// LogicalAnd returns a && b.
func (e *boolEngine) LogicalAnd(a, b *tensor.Array) (*tensor.Array, error) {
	return e.logical("logical_and", a, b, func(x, y bool) bool { return x && y })
}

// LogicalOr returns a || b.
func (e *boolEngine) LogicalOr(a, b *tensor.Array) (*tensor.Array, error) {
	return e.logical("logical_or", a, b, func(x, y bool) bool { return x || y })
}

// LogicalXor returns a != b.
func (e *boolEngine) LogicalXor(a, b *tensor.Array) (*tensor.Array, error) {
	return e.logical("logical_xor", a, b, notEqual[bool])
}

// LogicalNot returns !a.
func (e *boolEngine) LogicalNot(a *tensor.Array) (*tensor.Array, error) {
	if err := e.check("logical_not", a); err != nil {
		return nil, err
	}
	return unary(e.alloc, a, func(x bool) bool { return !x })
}

// NonZero returns the coordinates of the true elements.
func (e *boolEngine) NonZero(a *tensor.Array) ([]*tensor.Array, error) {
	if err := e.check("nonzero", a); err != nil {
		return nil, err
	}
	return nonzero(a, e.par, func(x bool) bool { return x })
}
