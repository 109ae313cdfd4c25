package tensor

import "github.com/pkg/errors"

// Error kinds. Every error returned by the engine wraps exactly one of these,
// so callers select on the kind with errors.Is.
var (
	// Shape errors.
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrAxisOutOfRange  = errors.New("axis out of range")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrReadOnly        = errors.New("array is not writeable")

	// Type errors.
	ErrType = errors.New("unsupported data type")

	// Unsupported-operation errors.
	ErrUnsupported    = errors.New("unsupported operation")
	ErrNotImplemented = errors.New("not implemented")

	// Memory errors.
	ErrFreed         = errors.New("memory block already freed")
	ErrForeignHandle = errors.New("handle was not issued by this pool")
	ErrDoubleReturn  = errors.New("handle returned twice")
)

// Errorf wraps kind with a formatted message and a stack trace.
func Errorf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// AxisError reports an axis outside [-ndim, ndim).
func AxisError(axis, ndim int) error {
	return errors.Wrapf(ErrAxisOutOfRange, "axis %d is out of bounds for array of dimension %d", axis, ndim)
}

// NormalizeAxis maps a possibly negative axis into [0, ndim).
func NormalizeAxis(axis, ndim int) (int, error) {
	if axis < -ndim || axis >= ndim {
		return 0, AxisError(axis, ndim)
	}
	if axis < 0 {
		axis += ndim
	}
	return axis, nil
}
