package tensor

// ReduceOptions configures a reduction.
type ReduceOptions struct {
	// Axis selects the axis to reduce; nil reduces over every element.
	// Negative values count from the last axis.
	Axis *int
	// KeepDims retains the reduced axis with size 1.
	KeepDims bool
	// DType overrides the accumulator and result type.
	DType *DataType
	// DDof is the delta degrees of freedom of Var and Std.
	DDof int
}

// Axis returns a pointer to k, for ReduceOptions.Axis.
func Axis(k int) *int { return &k }

// DTypeOf returns a pointer to dt, for ReduceOptions.DType.
func DTypeOf(dt DataType) *DataType { return &dt }

// Engine implements the operation surface for one element type. Operands
// passed to an engine already carry its DType; promotion and casting happen
// before dispatch. Every operation allocates a fresh result and never writes
// into its operands.
type Engine interface {
	// DType returns the element type the engine operates on.
	DType() DataType

	// Elementwise arithmetic, with NumPy broadcasting.
	Add(a, b *Array) (*Array, error)
	Subtract(a, b *Array) (*Array, error)
	Multiply(a, b *Array) (*Array, error)
	Divide(a, b *Array) (*Array, error)
	Mod(a, b *Array) (*Array, error)
	Power(a, b *Array) (*Array, error)
	Maximum(a, b *Array) (*Array, error)
	Minimum(a, b *Array) (*Array, error)

	// Comparisons produce Bool arrays.
	Equal(a, b *Array) (*Array, error)
	NotEqual(a, b *Array) (*Array, error)
	Less(a, b *Array) (*Array, error)
	LessEqual(a, b *Array) (*Array, error)
	Greater(a, b *Array) (*Array, error)
	GreaterEqual(a, b *Array) (*Array, error)

	// Logical operations treat non-zero elements as true and produce Bool
	// arrays.
	LogicalAnd(a, b *Array) (*Array, error)
	LogicalOr(a, b *Array) (*Array, error)
	LogicalXor(a, b *Array) (*Array, error)
	LogicalNot(a *Array) (*Array, error)

	// Elementwise unary operations.
	Negate(a *Array) (*Array, error)
	Abs(a *Array) (*Array, error)
	Sqrt(a *Array) (*Array, error)
	Exp(a *Array) (*Array, error)
	Log(a *Array) (*Array, error)
	Sin(a *Array) (*Array, error)
	Cos(a *Array) (*Array, error)
	Tan(a *Array) (*Array, error)
	Sign(a *Array) (*Array, error)
	Square(a *Array) (*Array, error)

	// Reductions. The result has the engine's DType except for ArgMin and
	// ArgMax, which return Int64 positions.
	Sum(a *Array, opts ReduceOptions) (*Array, error)
	Prod(a *Array, opts ReduceOptions) (*Array, error)
	Mean(a *Array, opts ReduceOptions) (*Array, error)
	AMin(a *Array, opts ReduceOptions) (*Array, error)
	AMax(a *Array, opts ReduceOptions) (*Array, error)
	ArgMin(a *Array, opts ReduceOptions) (*Array, error)
	ArgMax(a *Array, opts ReduceOptions) (*Array, error)
	Var(a *Array, opts ReduceOptions) (*Array, error)
	Std(a *Array, opts ReduceOptions) (*Array, error)

	// Linear algebra.
	Dot(a, b *Array) (*Array, error)
	MatMul(a, b *Array) (*Array, error)

	// Cast converts a to dtype.
	Cast(a *Array, dtype DataType) (*Array, error)
	// NonZero returns one Int64 coordinate array per axis of a.
	NonZero(a *Array) ([]*Array, error)
	// Copy returns a contiguous copy of a.
	Copy(a *Array) (*Array, error)
}
