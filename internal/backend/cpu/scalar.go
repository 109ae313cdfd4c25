package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
)

// Integer is the set of integer element types.
type Integer interface {
	uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

// Float is the set of native floating point element types.
type Float interface {
	float32 | float64
}

// Scalar kernels shared by the typed engines.

func add[T tensor.Number](x, y T) T { return x + y }
func sub[T tensor.Number](x, y T) T { return x - y }
func mul[T tensor.Number](x, y T) T { return x * y }

func divFloat[T Float](x, y T) T { return x / y }

// divInt truncates toward zero; division by zero yields 0.
func divInt[T Integer](x, y T) T {
	if y == 0 {
		return 0
	}
	return x / y
}

// modInt is the floored modulo: the result takes the sign of the divisor.
// Modulo by zero yields 0.
func modInt[T Integer](x, y T) T {
	if y == 0 {
		return 0
	}
	r := x % y
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

func modFloat[T Float](x, y T) T {
	return T(floorMod(float64(x), float64(y)))
}

func floorMod(x, y float64) float64 {
	if y == 0 {
		return math.NaN()
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

// powInt raises x to a non-negative integer power by squaring. Negative
// exponents truncate toward zero like integer division: 1 and -1 keep their
// magnitude, every other base yields 0.
func powInt[T Integer](x, y T) T {
	var zero T
	if y < zero {
		switch {
		case x == 1:
			return 1
		case x+1 == 0:
			if y%2 == 0 {
				return 1
			}
			return x
		default:
			return 0
		}
	}
	result := T(1)
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}

func powFloat[T Float](x, y T) T {
	return T(math.Pow(float64(x), float64(y)))
}

// maximum propagates NaN.
func maximum[T tensor.Number](x, y T) T {
	switch {
	case x != x: //nolint:gocritic // NaN check
		return x
	case y != y: //nolint:gocritic // NaN check
		return y
	case x > y:
		return x
	default:
		return y
	}
}

// minimum propagates NaN.
func minimum[T tensor.Number](x, y T) T {
	switch {
	case x != x: //nolint:gocritic // NaN check
		return x
	case y != y: //nolint:gocritic // NaN check
		return y
	case x < y:
		return x
	default:
		return y
	}
}

func equal[T comparable](x, y T) bool    { return x == y }
func notEqual[T comparable](x, y T) bool { return x != y }

func less[T tensor.Number](x, y T) bool         { return x < y }
func lessEqual[T tensor.Number](x, y T) bool    { return x <= y }
func greater[T tensor.Number](x, y T) bool      { return x > y }
func greaterEqual[T tensor.Number](x, y T) bool { return x >= y }

func truthy[T tensor.Number](x T) bool { return x != 0 }

func negate[T tensor.Number](x T) T { return -x }
func square[T tensor.Number](x T) T { return x * x }

func abs[T tensor.Number](x T) T {
	var zero T
	if x < zero {
		return -x
	}
	return x
}

// sign returns -1, 0 or 1, and NaN for NaN.
func sign[T tensor.Number](x T) T {
	var zero, one T
	one = 1
	switch {
	case x != x: //nolint:gocritic // NaN check
		return x
	case x > zero:
		return one
	case x < zero:
		return -one
	default:
		return zero
	}
}

// viaFloat64 lifts a float64 function to T.
func viaFloat64[T tensor.Number](f func(float64) float64) func(T) T {
	return func(x T) T { return T(f(float64(x))) }
}
