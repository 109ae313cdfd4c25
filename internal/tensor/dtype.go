// Package tensor provides the core array types of the ndarray engine: shapes,
// broadcasting, memory blocks, iterators and the engine capability interface.
package tensor

import "github.com/x448/float16"

// Number is the set of primitive element types that support arithmetic.
type Number interface {
	uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// Element is the set of all storage element types.
type Element interface {
	Number | bool | float16.Float16
}

// DataType represents runtime type information for arrays (the TypeCode).
type DataType int

// Supported data types for arrays.
const (
	Bool DataType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float16
	Float32
	Float64

	numDataTypes
)

// DataTypes lists every supported data type in TypeCode order.
func DataTypes() []DataType {
	out := make([]DataType, 0, numDataTypes)
	for dt := Bool; dt < numDataTypes; dt++ {
		out = append(out, dt)
	}
	return out
}

// MaxItemLength is the byte size of the largest supported primitive.
const MaxItemLength = 8

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Uint8:
		return 1
	case Int16, Uint16, Float16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Bool:
		return "bool"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt >= Bool && dt < numDataTypes
}

// IsFloat reports whether dt is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// IsInteger reports whether dt is a signed or unsigned integer type.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64:
		return true
	}
	return false
}

// IsSigned reports whether dt can represent negative values.
func (dt DataType) IsSigned() bool {
	switch dt {
	case Int16, Int32, Int64, Float16, Float32, Float64:
		return true
	}
	return false
}

// ParseDataType returns the DataType named s.
func ParseDataType(s string) (DataType, error) {
	for dt := Bool; dt < numDataTypes; dt++ {
		if dt.String() == s {
			return dt, nil
		}
	}
	return 0, Errorf(ErrType, "unknown data type %q", s)
}

// DataTypeOf infers DataType from a generic type T.
func DataTypeOf[T Element]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case bool:
		return Bool
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case int64:
		return Int64
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported type")
	}
}

// Promote returns the common type two operands are converted to before an
// elementwise operation.
func Promote(a, b DataType) DataType {
	switch {
	case a == b:
		return a
	case a == Bool:
		return b
	case b == Bool:
		return a
	case a.IsFloat() && b.IsFloat():
		if a.Size() >= b.Size() {
			return a
		}
		return b
	case a.IsFloat():
		return widerFloat(a, floatHolding(b))
	case b.IsFloat():
		return widerFloat(b, floatHolding(a))
	}

	// Both integers.
	if a.IsSigned() == b.IsSigned() {
		if a.Size() >= b.Size() {
			return a
		}
		return b
	}
	u, s := a, b
	if a.IsSigned() {
		u, s = b, a
	}
	if s.Size() > u.Size() {
		return s
	}
	switch u {
	case Uint8:
		return Int16
	case Uint16:
		return Int32
	case Uint32:
		return Int64
	default:
		return Float64
	}
}

// floatHolding returns the smallest float type that represents every value of
// the integer type dt exactly.
func floatHolding(dt DataType) DataType {
	switch dt.Size() {
	case 1:
		return Float16
	case 2:
		return Float32
	default:
		return Float64
	}
}

func widerFloat(a, b DataType) DataType {
	if a.Size() >= b.Size() {
		return a
	}
	return b
}

// FloatResult returns the type transcendental functions and true division
// produce for inputs of type dt.
func FloatResult(dt DataType) DataType {
	if dt.IsFloat() {
		return dt
	}
	return Float64
}

// AccumulatorOf returns the result type of Sum and Prod over dt.
func AccumulatorOf(dt DataType) DataType {
	switch dt {
	case Bool, Int16, Int32, Int64:
		return Int64
	case Uint8, Uint16, Uint32, Uint64:
		return Uint64
	default:
		return dt
	}
}
