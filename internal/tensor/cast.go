package tensor

import "github.com/x448/float16"

// Reader returns a function that reads the element at memory index i of b,
// converted to T. When T matches the block's dtype no conversion happens.
func Reader[T Element](b *Block) func(i int) T {
	var zero T
	switch any(zero).(type) {
	case bool:
		return any(boolReader(b)).(func(int) T)
	case float16.Float16:
		if b.dtype == Float16 {
			s := Elements[float16.Float16](b)
			return any(func(i int) float16.Float16 { return s[i] }).(func(int) T)
		}
		f := numReader[float32](b)
		return any(func(i int) float16.Float16 { return float16.Fromfloat32(f(i)) }).(func(int) T)
	case uint8:
		return any(numReader[uint8](b)).(func(int) T)
	case int16:
		return any(numReader[int16](b)).(func(int) T)
	case uint16:
		return any(numReader[uint16](b)).(func(int) T)
	case int32:
		return any(numReader[int32](b)).(func(int) T)
	case uint32:
		return any(numReader[uint32](b)).(func(int) T)
	case int64:
		return any(numReader[int64](b)).(func(int) T)
	case uint64:
		return any(numReader[uint64](b)).(func(int) T)
	case float32:
		return any(numReader[float32](b)).(func(int) T)
	case float64:
		return any(numReader[float64](b)).(func(int) T)
	default:
		panic("unsupported type")
	}
}

func numReader[D Number](b *Block) func(int) D {
	switch b.dtype {
	case Bool:
		s := Elements[bool](b)
		return func(i int) D {
			if s[i] {
				return 1
			}
			return 0
		}
	case Uint8:
		return convertReader[uint8, D](Elements[uint8](b))
	case Int16:
		return convertReader[int16, D](Elements[int16](b))
	case Uint16:
		return convertReader[uint16, D](Elements[uint16](b))
	case Int32:
		return convertReader[int32, D](Elements[int32](b))
	case Uint32:
		return convertReader[uint32, D](Elements[uint32](b))
	case Int64:
		return convertReader[int64, D](Elements[int64](b))
	case Uint64:
		return convertReader[uint64, D](Elements[uint64](b))
	case Float16:
		s := Elements[float16.Float16](b)
		return func(i int) D { return D(s[i].Float32()) }
	case Float32:
		return convertReader[float32, D](Elements[float32](b))
	case Float64:
		return convertReader[float64, D](Elements[float64](b))
	default:
		panic("unsupported type")
	}
}

func convertReader[S, D Number](s []S) func(int) D {
	return func(i int) D { return D(s[i]) }
}

func boolReader(b *Block) func(int) bool {
	switch b.dtype {
	case Bool:
		s := Elements[bool](b)
		return func(i int) bool { return s[i] }
	case Float16:
		s := Elements[float16.Float16](b)
		return func(i int) bool { return s[i].Float32() != 0 }
	default:
		f := numReader[float64](b)
		return func(i int) bool { return f(i) != 0 }
	}
}

// Writer returns a function that stores a T at memory index i of b,
// converting it to the block's dtype.
func Writer[T Element](b *Block) func(i int, v T) {
	var zero T
	switch any(zero).(type) {
	case bool:
		w := numWriter[uint8](b)
		return any(func(i int, v bool) {
			if v {
				w(i, 1)
			} else {
				w(i, 0)
			}
		}).(func(int, T))
	case float16.Float16:
		if b.dtype == Float16 {
			d := Elements[float16.Float16](b)
			return any(func(i int, v float16.Float16) { d[i] = v }).(func(int, T))
		}
		w := numWriter[float32](b)
		return any(func(i int, v float16.Float16) { w(i, v.Float32()) }).(func(int, T))
	case uint8:
		return any(numWriter[uint8](b)).(func(int, T))
	case int16:
		return any(numWriter[int16](b)).(func(int, T))
	case uint16:
		return any(numWriter[uint16](b)).(func(int, T))
	case int32:
		return any(numWriter[int32](b)).(func(int, T))
	case uint32:
		return any(numWriter[uint32](b)).(func(int, T))
	case int64:
		return any(numWriter[int64](b)).(func(int, T))
	case uint64:
		return any(numWriter[uint64](b)).(func(int, T))
	case float32:
		return any(numWriter[float32](b)).(func(int, T))
	case float64:
		return any(numWriter[float64](b)).(func(int, T))
	default:
		panic("unsupported type")
	}
}

func numWriter[S Number](b *Block) func(int, S) {
	switch b.dtype {
	case Bool:
		d := Elements[bool](b)
		return func(i int, v S) { d[i] = v != 0 }
	case Uint8:
		return convertWriter[S, uint8](Elements[uint8](b))
	case Int16:
		return convertWriter[S, int16](Elements[int16](b))
	case Uint16:
		return convertWriter[S, uint16](Elements[uint16](b))
	case Int32:
		return convertWriter[S, int32](Elements[int32](b))
	case Uint32:
		return convertWriter[S, uint32](Elements[uint32](b))
	case Int64:
		return convertWriter[S, int64](Elements[int64](b))
	case Uint64:
		return convertWriter[S, uint64](Elements[uint64](b))
	case Float16:
		d := Elements[float16.Float16](b)
		return func(i int, v S) { d[i] = float16.Fromfloat32(float32(v)) }
	case Float32:
		return convertWriter[S, float32](Elements[float32](b))
	case Float64:
		return convertWriter[S, float64](Elements[float64](b))
	default:
		panic("unsupported type")
	}
}

func convertWriter[S, D Number](d []D) func(int, S) {
	return func(i int, v S) { d[i] = D(v) }
}
