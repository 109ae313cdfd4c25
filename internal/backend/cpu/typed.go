package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
)

// typedEngine overrides the DefaultEngine fallbacks with direct loops over
// []T. The operations whose meaning differs between integers and floats
// (division, modulo, power, matrix product) are bound at construction.
type typedEngine[T tensor.Number] struct {
	*DefaultEngine
	div  func(T, T) T
	mod  func(T, T) T
	pow  func(T, T) T
	gemm gemmFunc[T]
}

func newIntEngine[T Integer](base *DefaultEngine) tensor.Engine {
	return &typedEngine[T]{
		DefaultEngine: base,
		div:           divInt[T],
		mod:           modInt[T],
		pow:           powInt[T],
		gemm:          gemmNaive[T],
	}
}

func newFloatEngine[T Float](base *DefaultEngine) tensor.Engine {
	var gemm gemmFunc[T]
	var zero T
	switch any(zero).(type) {
	case float32:
		gemm = any(gemmFunc[float32](gemm32)).(gemmFunc[T])
	case float64:
		gemm = any(gemmFunc[float64](gemm64)).(gemmFunc[T])
	}
	return &typedEngine[T]{
		DefaultEngine: base,
		div:           divFloat[T],
		mod:           modFloat[T],
		pow:           powFloat[T],
		gemm:          gemm,
	}
}

func (e *typedEngine[T]) arith(op string, a, b *tensor.Array, f func(T, T) T) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	return binary(e.alloc, a, b, f)
}

func (e *typedEngine[T]) compare(op string, a, b *tensor.Array, f func(T, T) bool) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	return binary(e.alloc, a, b, f)
}

func (e *typedEngine[T]) apply(op string, a *tensor.Array, f func(T) T) (*tensor.Array, error) {
	if err := e.check(op, a); err != nil {
		return nil, err
	}
	return unary(e.alloc, a, f)
}

// Add returns a + b.
func (e *typedEngine[T]) Add(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("add", a, b, add[T])
}

// Subtract returns a - b.
func (e *typedEngine[T]) Subtract(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("subtract", a, b, sub[T])
}

// Multiply returns a * b.
func (e *typedEngine[T]) Multiply(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("multiply", a, b, mul[T])
}

// Divide returns a / b. Integer engines truncate.
func (e *typedEngine[T]) Divide(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("divide", a, b, e.div)
}

// Mod returns the floored remainder of a / b.
func (e *typedEngine[T]) Mod(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("mod", a, b, e.mod)
}

// Power returns a ** b.
func (e *typedEngine[T]) Power(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("power", a, b, e.pow)
}

// Maximum returns the elementwise maximum, propagating NaN.
func (e *typedEngine[T]) Maximum(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("maximum", a, b, maximum[T])
}

// Minimum returns the elementwise minimum, propagating NaN.
func (e *typedEngine[T]) Minimum(a, b *tensor.Array) (*tensor.Array, error) {
	return e.arith("minimum", a, b, minimum[T])
}

// Equal returns a == b.
func (e *typedEngine[T]) Equal(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("equal", a, b, equal[T])
}

// NotEqual returns a != b.
func (e *typedEngine[T]) NotEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("not_equal", a, b, notEqual[T])
}

// Less returns a < b.
func (e *typedEngine[T]) Less(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("less", a, b, less[T])
}

// LessEqual returns a <= b.
func (e *typedEngine[T]) LessEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("less_equal", a, b, lessEqual[T])
}

// Greater returns a > b.
func (e *typedEngine[T]) Greater(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("greater", a, b, greater[T])
}

// GreaterEqual returns a >= b.
func (e *typedEngine[T]) GreaterEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("greater_equal", a, b, greaterEqual[T])
}

// LogicalAnd returns a && b on truth values.
func (e *typedEngine[T]) LogicalAnd(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_and", a, b, func(x, y T) bool { return x != 0 && y != 0 })
}

// LogicalOr returns a || b on truth values.
func (e *typedEngine[T]) LogicalOr(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_or", a, b, func(x, y T) bool { return x != 0 || y != 0 })
}

// LogicalXor returns a != b on truth values.
func (e *typedEngine[T]) LogicalXor(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_xor", a, b, func(x, y T) bool { return truthy(x) != truthy(y) })
}

// LogicalNot returns !a on truth values.
func (e *typedEngine[T]) LogicalNot(a *tensor.Array) (*tensor.Array, error) {
	if err := e.check("logical_not", a); err != nil {
		return nil, err
	}
	return unary(e.alloc, a, func(x T) bool { return x == 0 })
}

// Negate returns -a. Unsigned values wrap.
func (e *typedEngine[T]) Negate(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("negative", a, negate[T])
}

// Abs returns |a|.
func (e *typedEngine[T]) Abs(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("absolute", a, abs[T])
}

// Sqrt returns the square root of a.
func (e *typedEngine[T]) Sqrt(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("sqrt", a, viaFloat64[T](math.Sqrt))
}

// Exp returns e ** a.
func (e *typedEngine[T]) Exp(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("exp", a, viaFloat64[T](math.Exp))
}

// Log returns the natural logarithm of a.
func (e *typedEngine[T]) Log(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("log", a, viaFloat64[T](math.Log))
}

// Sin returns the sine of a.
func (e *typedEngine[T]) Sin(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("sin", a, viaFloat64[T](math.Sin))
}

// Cos returns the cosine of a.
func (e *typedEngine[T]) Cos(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("cos", a, viaFloat64[T](math.Cos))
}

// Tan returns the tangent of a.
func (e *typedEngine[T]) Tan(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("tan", a, viaFloat64[T](math.Tan))
}

// Sign returns -1, 0 or 1 per element.
func (e *typedEngine[T]) Sign(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("sign", a, sign[T])
}

// Square returns a * a.
func (e *typedEngine[T]) Square(a *tensor.Array) (*tensor.Array, error) {
	return e.apply("square", a, square[T])
}

func (e *typedEngine[T]) reduceTyped(op string, a *tensor.Array, opts tensor.ReduceOptions, nonEmpty bool, fn func([]T) T) (*tensor.Array, error) {
	if err := e.check(op, a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, op, a, opts, e.dtype, nonEmpty, fn)
}

// Sum adds the elements over the given axis.
func (e *typedEngine[T]) Sum(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("sum", a, opts, false, sumLane[T])
}

// Prod multiplies the elements over the given axis.
func (e *typedEngine[T]) Prod(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("prod", a, opts, false, prodLane[T])
}

// Mean averages the elements over the given axis.
func (e *typedEngine[T]) Mean(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("mean", a, opts, false, meanLane[T])
}

// AMin returns the minimum over the given axis.
func (e *typedEngine[T]) AMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("amin", a, opts, true, minLane[T])
}

// AMax returns the maximum over the given axis.
func (e *typedEngine[T]) AMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("amax", a, opts, true, maxLane[T])
}

// ArgMin returns the position of the minimum over the given axis.
func (e *typedEngine[T]) ArgMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	if err := e.check("argmin", a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, "argmin", a, opts, tensor.Int64, true, argMinLane[T])
}

// ArgMax returns the position of the maximum over the given axis.
func (e *typedEngine[T]) ArgMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	if err := e.check("argmax", a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, "argmax", a, opts, tensor.Int64, true, argMaxLane[T])
}

// Var returns the variance over the given axis with divisor count - ddof.
func (e *typedEngine[T]) Var(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("var", a, opts, false, func(l []T) T {
		return T(varianceLane(l, opts.DDof))
	})
}

// Std returns the standard deviation over the given axis.
func (e *typedEngine[T]) Std(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceTyped("std", a, opts, false, func(l []T) T {
		return T(math.Sqrt(varianceLane(l, opts.DDof)))
	})
}

// MatMul returns the matrix product of a and b.
func (e *typedEngine[T]) MatMul(a, b *tensor.Array) (*tensor.Array, error) {
	if err := e.check("matmul", a, b); err != nil {
		return nil, err
	}
	return matmul(e.alloc, e.par, a, b, e.gemm)
}

// Dot returns the dot product of a and b.
func (e *typedEngine[T]) Dot(a, b *tensor.Array) (*tensor.Array, error) {
	if err := e.check("dot", a, b); err != nil {
		return nil, err
	}
	return dot(e.alloc, e.par, a, b, e.gemm)
}

// NonZero returns the coordinates of the non-zero elements.
func (e *typedEngine[T]) NonZero(a *tensor.Array) ([]*tensor.Array, error) {
	if err := e.check("nonzero", a); err != nil {
		return nil, err
	}
	return nonzero(a, e.par, truthy[T])
}
