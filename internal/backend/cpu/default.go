package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// allocator creates result arrays. Scalars come from the pool when one is
// configured.
type allocator struct {
	pool *tensor.StackedMemoryPool
}

func (al *allocator) empty(dtype tensor.DataType, dims []int) (*tensor.Array, error) {
	if len(dims) == 0 && al.pool != nil {
		return tensor.ScalarFromPool(al.pool, dtype), nil
	}
	return tensor.Empty(dtype, dims...)
}

// DefaultEngine implements every operation for any data type by reading
// operands through casting iterators as float64 and converting results back
// on write. It is correct for every type but slow; typed engines embed it
// and override the hot paths.
type DefaultEngine struct {
	dtype tensor.DataType
	alloc *allocator
	par   parallel.Config
}

func newDefaultEngine(dtype tensor.DataType, al *allocator, par parallel.Config) *DefaultEngine {
	return &DefaultEngine{dtype: dtype, alloc: al, par: par}
}

// DType returns the element type the engine operates on.
func (e *DefaultEngine) DType() tensor.DataType { return e.dtype }

// check rejects freed operands and operands of another dtype.
func (e *DefaultEngine) check(op string, arrays ...*tensor.Array) error {
	for _, a := range arrays {
		if a.IsFreed() {
			return tensor.Errorf(tensor.ErrFreed, "%s", op)
		}
		if a.DType() != e.dtype {
			return tensor.Errorf(tensor.ErrType, "%s: %s engine received a %s operand", op, e.dtype, a.DType())
		}
	}
	return nil
}

func (e *DefaultEngine) binaryFloat(op string, a, b *tensor.Array, f func(x, y float64) float64) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	return binaryCast(e.alloc, e.dtype, a, b, f)
}

func (e *DefaultEngine) compare(op string, a, b *tensor.Array, f func(x, y float64) bool) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	return binaryCast(e.alloc, tensor.Bool, a, b, f)
}

func (e *DefaultEngine) unaryFloat(op string, a *tensor.Array, f func(float64) float64) (*tensor.Array, error) {
	if err := e.check(op, a); err != nil {
		return nil, err
	}
	return unaryCast(e.alloc, e.dtype, a, f)
}

// Add returns a + b.
func (e *DefaultEngine) Add(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("add", a, b, add[float64])
}

// Subtract returns a - b.
func (e *DefaultEngine) Subtract(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("subtract", a, b, sub[float64])
}

// Multiply returns a * b.
func (e *DefaultEngine) Multiply(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("multiply", a, b, mul[float64])
}

// Divide returns a / b.
func (e *DefaultEngine) Divide(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("divide", a, b, divFloat[float64])
}

// Mod returns the floored remainder of a / b.
func (e *DefaultEngine) Mod(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("mod", a, b, floorMod)
}

// Power returns a ** b.
func (e *DefaultEngine) Power(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("power", a, b, math.Pow)
}

// Maximum returns the elementwise maximum, propagating NaN.
func (e *DefaultEngine) Maximum(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("maximum", a, b, maximum[float64])
}

// Minimum returns the elementwise minimum, propagating NaN.
func (e *DefaultEngine) Minimum(a, b *tensor.Array) (*tensor.Array, error) {
	return e.binaryFloat("minimum", a, b, minimum[float64])
}

// Equal returns a == b.
func (e *DefaultEngine) Equal(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("equal", a, b, equal[float64])
}

// NotEqual returns a != b.
func (e *DefaultEngine) NotEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("not_equal", a, b, notEqual[float64])
}

// Less returns a < b.
func (e *DefaultEngine) Less(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("less", a, b, less[float64])
}

// LessEqual returns a <= b.
func (e *DefaultEngine) LessEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("less_equal", a, b, lessEqual[float64])
}

// Greater returns a > b.
func (e *DefaultEngine) Greater(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("greater", a, b, greater[float64])
}

// GreaterEqual returns a >= b.
func (e *DefaultEngine) GreaterEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("greater_equal", a, b, greaterEqual[float64])
}

// LogicalAnd returns a && b.
func (e *DefaultEngine) LogicalAnd(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_and", a, b, func(x, y float64) bool { return x != 0 && y != 0 })
}

// LogicalOr returns a || b.
func (e *DefaultEngine) LogicalOr(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_or", a, b, func(x, y float64) bool { return x != 0 || y != 0 })
}

// LogicalXor returns a != b, on truth values.
func (e *DefaultEngine) LogicalXor(a, b *tensor.Array) (*tensor.Array, error) {
	return e.compare("logical_xor", a, b, func(x, y float64) bool { return (x != 0) != (y != 0) })
}

// LogicalNot returns !a.
func (e *DefaultEngine) LogicalNot(a *tensor.Array) (*tensor.Array, error) {
	if err := e.check("logical_not", a); err != nil {
		return nil, err
	}
	return unaryCast(e.alloc, tensor.Bool, a, func(x float64) bool { return x == 0 })
}

// Negate returns -a.
func (e *DefaultEngine) Negate(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("negative", a, negate[float64])
}

// Abs returns |a|.
func (e *DefaultEngine) Abs(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("absolute", a, math.Abs)
}

// Sqrt returns the square root of a.
func (e *DefaultEngine) Sqrt(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("sqrt", a, math.Sqrt)
}

// Exp returns e ** a.
func (e *DefaultEngine) Exp(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("exp", a, math.Exp)
}

// Log returns the natural logarithm of a.
func (e *DefaultEngine) Log(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("log", a, math.Log)
}

// Sin returns the sine of a.
func (e *DefaultEngine) Sin(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("sin", a, math.Sin)
}

// Cos returns the cosine of a.
func (e *DefaultEngine) Cos(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("cos", a, math.Cos)
}

// Tan returns the tangent of a.
func (e *DefaultEngine) Tan(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("tan", a, math.Tan)
}

// Sign returns -1, 0 or 1 per element.
func (e *DefaultEngine) Sign(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("sign", a, sign[float64])
}

// Square returns a * a.
func (e *DefaultEngine) Square(a *tensor.Array) (*tensor.Array, error) {
	return e.unaryFloat("square", a, square[float64])
}

func (e *DefaultEngine) reduceFloat(op string, a *tensor.Array, opts tensor.ReduceOptions, nonEmpty bool, fn func([]float64) float64) (*tensor.Array, error) {
	if err := e.check(op, a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, op, a, opts, e.dtype, nonEmpty, fn)
}

// Sum adds the elements over the given axis.
func (e *DefaultEngine) Sum(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("sum", a, opts, false, sumLane[float64])
}

// Prod multiplies the elements over the given axis.
func (e *DefaultEngine) Prod(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("prod", a, opts, false, prodLane[float64])
}

// Mean averages the elements over the given axis.
func (e *DefaultEngine) Mean(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("mean", a, opts, false, meanLane[float64])
}

// AMin returns the minimum over the given axis.
func (e *DefaultEngine) AMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("amin", a, opts, true, minLane[float64])
}

// AMax returns the maximum over the given axis.
func (e *DefaultEngine) AMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("amax", a, opts, true, maxLane[float64])
}

// ArgMin returns the position of the minimum over the given axis.
func (e *DefaultEngine) ArgMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	if err := e.check("argmin", a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, "argmin", a, opts, tensor.Int64, true, argMinLane[float64])
}

// ArgMax returns the position of the maximum over the given axis.
func (e *DefaultEngine) ArgMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	if err := e.check("argmax", a); err != nil {
		return nil, err
	}
	return reduce(e.alloc, "argmax", a, opts, tensor.Int64, true, argMaxLane[float64])
}

// Var returns the variance over the given axis with divisor count - ddof.
func (e *DefaultEngine) Var(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("var", a, opts, false, func(l []float64) float64 {
		return varianceLane(l, opts.DDof)
	})
}

// Std returns the standard deviation over the given axis.
func (e *DefaultEngine) Std(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return e.reduceFloat("std", a, opts, false, func(l []float64) float64 {
		return math.Sqrt(varianceLane(l, opts.DDof))
	})
}

// MatMul computes the matrix product in float64 and converts the result.
func (e *DefaultEngine) MatMul(a, b *tensor.Array) (*tensor.Array, error) {
	return e.viaFloat64("matmul", a, b, func(x, y *tensor.Array) (*tensor.Array, error) {
		return matmul(e.alloc, e.par, x, y, gemm64)
	})
}

// Dot computes the dot product in float64 and converts the result.
func (e *DefaultEngine) Dot(a, b *tensor.Array) (*tensor.Array, error) {
	return e.viaFloat64("dot", a, b, func(x, y *tensor.Array) (*tensor.Array, error) {
		return dot(e.alloc, e.par, x, y, gemm64)
	})
}

func (e *DefaultEngine) viaFloat64(op string, a, b *tensor.Array, f func(x, y *tensor.Array) (*tensor.Array, error)) (*tensor.Array, error) {
	if err := e.check(op, a, b); err != nil {
		return nil, err
	}
	x, err := castArray(e.alloc, a, tensor.Float64)
	if err != nil {
		return nil, err
	}
	defer x.Release()
	y, err := castArray(e.alloc, b, tensor.Float64)
	if err != nil {
		return nil, err
	}
	defer y.Release()

	r, err := f(x, y)
	if err != nil {
		return nil, err
	}
	defer r.Release()
	return castArray(e.alloc, r, e.dtype)
}

// Cast converts a to dtype.
func (e *DefaultEngine) Cast(a *tensor.Array, dtype tensor.DataType) (*tensor.Array, error) {
	if err := e.check("cast", a); err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, tensor.Errorf(tensor.ErrType, "cast: invalid data type %d", int(dtype))
	}
	return castArray(e.alloc, a, dtype)
}

// NonZero returns the coordinates of the non-zero elements, one Int64 array
// per axis.
func (e *DefaultEngine) NonZero(a *tensor.Array) ([]*tensor.Array, error) {
	if err := e.check("nonzero", a); err != nil {
		return nil, err
	}
	return nonzero(a, e.par, func(x float64) bool { return x != 0 })
}

// Copy returns a contiguous copy of a.
func (e *DefaultEngine) Copy(a *tensor.Array) (*tensor.Array, error) {
	if err := e.check("copy", a); err != nil {
		return nil, err
	}
	out, err := e.alloc.empty(e.dtype, a.Dims())
	if err != nil {
		return nil, err
	}
	tensor.CopyElements(out.Block(), a.Block(), a.Shape())
	return out, nil
}
