package cpu

import (
	"github.com/born-ml/ndarray/internal/tensor"
)

type (
	binaryOp func(tensor.Engine, *tensor.Array, *tensor.Array) (*tensor.Array, error)
	unaryOp  func(tensor.Engine, *tensor.Array) (*tensor.Array, error)
	reduceOp func(tensor.Engine, *tensor.Array, tensor.ReduceOptions) (*tensor.Array, error)
)

// binary promotes both operands to their common type, casting whichever
// differs, and runs op on that type's engine. With toFloat set integer
// common types are further promoted to Float64.
func (c *Context) binary(name string, a, b *tensor.Array, toFloat bool, op binaryOp) (out *tensor.Array, err error) {
	span := c.start(name, a, b)
	defer func() { finish(span, out, err) }()

	dtype := tensor.Promote(a.DType(), b.DType())
	if toFloat {
		dtype = tensor.FloatResult(dtype)
	}
	x, releaseX, err := c.as(a, dtype)
	if err != nil {
		return nil, err
	}
	defer releaseX()
	y, releaseY, err := c.as(b, dtype)
	if err != nil {
		return nil, err
	}
	defer releaseY()

	e, err := c.Engine(dtype)
	if err != nil {
		return nil, err
	}
	return op(e, x, y)
}

// unary runs op on a's engine, after promoting a to a float type when
// toFloat is set.
func (c *Context) unary(name string, a *tensor.Array, toFloat bool, op unaryOp) (out *tensor.Array, err error) {
	span := c.start(name, a)
	defer func() { finish(span, out, err) }()

	dtype := a.DType()
	if toFloat {
		dtype = tensor.FloatResult(dtype)
	}
	x, release, err := c.as(a, dtype)
	if err != nil {
		return nil, err
	}
	defer release()

	e, err := c.Engine(dtype)
	if err != nil {
		return nil, err
	}
	return op(e, x)
}

// reduce runs op on the engine of the accumulator type resolve picks for
// a's type, or of opts.DType when overridable and set.
func (c *Context) reduce(name string, a *tensor.Array, opts tensor.ReduceOptions,
	resolve func(tensor.DataType) tensor.DataType, overridable bool, op reduceOp,
) (out *tensor.Array, err error) {
	span := c.start(name, a)
	defer func() { finish(span, out, err) }()

	dtype := resolve(a.DType())
	if overridable && opts.DType != nil {
		dtype = *opts.DType
		if !dtype.Valid() {
			return nil, tensor.Errorf(tensor.ErrType, "%s: invalid dtype override %d", name, int(dtype))
		}
	}
	x, release, err := c.as(a, dtype)
	if err != nil {
		return nil, err
	}
	defer release()

	e, err := c.Engine(dtype)
	if err != nil {
		return nil, err
	}
	return op(e, x, opts)
}

func keep(dt tensor.DataType) tensor.DataType { return dt }

// Add returns a + b.
func (c *Context) Add(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Add", a, b, false, tensor.Engine.Add)
}

// Subtract returns a - b.
func (c *Context) Subtract(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Subtract", a, b, false, tensor.Engine.Subtract)
}

// Multiply returns a * b.
func (c *Context) Multiply(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Multiply", a, b, false, tensor.Engine.Multiply)
}

// Divide returns the true quotient a / b. Integer operands divide as Float64.
func (c *Context) Divide(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Divide", a, b, true, tensor.Engine.Divide)
}

// Mod returns the floored remainder of a / b, with the sign of b.
func (c *Context) Mod(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Mod", a, b, false, tensor.Engine.Mod)
}

// Power returns a ** b.
func (c *Context) Power(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Power", a, b, false, tensor.Engine.Power)
}

// Maximum returns the elementwise maximum.
func (c *Context) Maximum(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Maximum", a, b, false, tensor.Engine.Maximum)
}

// Minimum returns the elementwise minimum.
func (c *Context) Minimum(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Minimum", a, b, false, tensor.Engine.Minimum)
}

// Equal returns a == b as a Bool array.
func (c *Context) Equal(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Equal", a, b, false, tensor.Engine.Equal)
}

// NotEqual returns a != b as a Bool array.
func (c *Context) NotEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("NotEqual", a, b, false, tensor.Engine.NotEqual)
}

// Less returns a < b as a Bool array.
func (c *Context) Less(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Less", a, b, false, tensor.Engine.Less)
}

// LessEqual returns a <= b as a Bool array.
func (c *Context) LessEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("LessEqual", a, b, false, tensor.Engine.LessEqual)
}

// Greater returns a > b as a Bool array.
func (c *Context) Greater(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Greater", a, b, false, tensor.Engine.Greater)
}

// GreaterEqual returns a >= b as a Bool array.
func (c *Context) GreaterEqual(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("GreaterEqual", a, b, false, tensor.Engine.GreaterEqual)
}

// LogicalAnd returns the truth of a && b.
func (c *Context) LogicalAnd(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("LogicalAnd", a, b, false, tensor.Engine.LogicalAnd)
}

// LogicalOr returns the truth of a || b.
func (c *Context) LogicalOr(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("LogicalOr", a, b, false, tensor.Engine.LogicalOr)
}

// LogicalXor returns the truth of a != b.
func (c *Context) LogicalXor(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("LogicalXor", a, b, false, tensor.Engine.LogicalXor)
}

// LogicalNot returns the truth of !a.
func (c *Context) LogicalNot(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("LogicalNot", a, false, tensor.Engine.LogicalNot)
}

// Negate returns -a.
func (c *Context) Negate(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Negate", a, false, tensor.Engine.Negate)
}

// Abs returns |a|.
func (c *Context) Abs(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Abs", a, false, tensor.Engine.Abs)
}

// Sign returns -1, 0 or 1 per element.
func (c *Context) Sign(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Sign", a, false, tensor.Engine.Sign)
}

// Square returns a * a.
func (c *Context) Square(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Square", a, false, tensor.Engine.Square)
}

// Sqrt returns the square root of a. Integer input yields Float64.
func (c *Context) Sqrt(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Sqrt", a, true, tensor.Engine.Sqrt)
}

// Exp returns e ** a. Integer input yields Float64.
func (c *Context) Exp(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Exp", a, true, tensor.Engine.Exp)
}

// Log returns the natural logarithm of a. Integer input yields Float64.
func (c *Context) Log(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Log", a, true, tensor.Engine.Log)
}

// Sin returns the sine of a. Integer input yields Float64.
func (c *Context) Sin(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Sin", a, true, tensor.Engine.Sin)
}

// Cos returns the cosine of a. Integer input yields Float64.
func (c *Context) Cos(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Cos", a, true, tensor.Engine.Cos)
}

// Tan returns the tangent of a. Integer input yields Float64.
func (c *Context) Tan(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Tan", a, true, tensor.Engine.Tan)
}

// Sum adds the elements of a over opts.Axis, or over everything. Bool and
// signed integers accumulate as Int64, unsigned integers as Uint64.
func (c *Context) Sum(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("Sum", a, opts, tensor.AccumulatorOf, true, tensor.Engine.Sum)
}

// Prod multiplies the elements of a, accumulating like Sum.
func (c *Context) Prod(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("Prod", a, opts, tensor.AccumulatorOf, true, tensor.Engine.Prod)
}

// Mean averages the elements of a. Non-float input yields Float64; the mean
// of no elements is NaN.
func (c *Context) Mean(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("Mean", a, opts, tensor.FloatResult, true, tensor.Engine.Mean)
}

// AMin returns the minimum of a. NaN propagates.
func (c *Context) AMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("AMin", a, opts, keep, true, tensor.Engine.AMin)
}

// AMax returns the maximum of a. NaN propagates.
func (c *Context) AMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("AMax", a, opts, keep, true, tensor.Engine.AMax)
}

// ArgMin returns the Int64 position of the minimum: an index into the
// flattened array without an axis, one index per lane with one.
func (c *Context) ArgMin(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("ArgMin", a, opts, keep, false, tensor.Engine.ArgMin)
}

// ArgMax returns the Int64 position of the maximum.
func (c *Context) ArgMax(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	return c.reduce("ArgMax", a, opts, keep, false, tensor.Engine.ArgMax)
}

// Var returns the variance of a with divisor count - opts.DDof. Lanes where
// the divisor is not positive are NaN.
func (c *Context) Var(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	c.checkDDof("Var", a, opts)
	return c.reduce("Var", a, opts, tensor.FloatResult, true, tensor.Engine.Var)
}

// Std returns the standard deviation of a, with Var's divisor.
func (c *Context) Std(a *tensor.Array, opts tensor.ReduceOptions) (*tensor.Array, error) {
	c.checkDDof("Std", a, opts)
	return c.reduce("Std", a, opts, tensor.FloatResult, true, tensor.Engine.Std)
}

// checkDDof warns when the variance divisor is not positive.
func (c *Context) checkDDof(op string, a *tensor.Array, opts tensor.ReduceOptions) {
	count := a.Size()
	if opts.Axis != nil {
		axis, err := tensor.NormalizeAxis(*opts.Axis, a.NDim())
		if err != nil {
			return
		}
		count = a.Shape().Dim(axis)
	}
	if count-opts.DDof <= 0 {
		c.logger.Warn().
			Str("op", op).
			Int("count", count).
			Int("ddof", opts.DDof).
			Msg("degrees of freedom <= 0 for slice, result is NaN")
	}
}

// Dot returns the NumPy dot product of a and b.
func (c *Context) Dot(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("Dot", a, b, false, tensor.Engine.Dot)
}

// MatMul returns the matrix product of a and b, broadcasting batch axes.
func (c *Context) MatMul(a, b *tensor.Array) (*tensor.Array, error) {
	return c.binary("MatMul", a, b, false, tensor.Engine.MatMul)
}

// Cast returns a converted to dtype.
func (c *Context) Cast(a *tensor.Array, dtype tensor.DataType) (out *tensor.Array, err error) {
	span := c.start("Cast", a)
	defer func() { finish(span, out, err) }()

	e, err := c.Engine(a.DType())
	if err != nil {
		return nil, err
	}
	return e.Cast(a, dtype)
}

// Copy returns a contiguous copy of a.
func (c *Context) Copy(a *tensor.Array) (*tensor.Array, error) {
	return c.unary("Copy", a, false, tensor.Engine.Copy)
}

// NonZero returns the coordinates of the non-zero elements of a, one Int64
// array per axis.
func (c *Context) NonZero(a *tensor.Array) (out []*tensor.Array, err error) {
	span := c.start("NonZero", a)
	defer func() { finish(span, nil, err) }()

	e, err := c.Engine(a.DType())
	if err != nil {
		return nil, err
	}
	return e.NonZero(a)
}
