package tensor

// BroadcastDims implements NumPy-style broadcasting rules on dimensions.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(1, 5) + (3, 5) → (3, 5)
//	(3, 4) + (3, 5) → error
//	()     + (2, 2) → (2, 2)
func BroadcastDims(a, b []int) ([]int, error) {
	maxLen := max(len(a), len(b))
	result := make([]int, maxLen)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		default:
			return nil, Errorf(ErrShapeMismatch,
				"operands could not be broadcast together with shapes %s %s (dimension %d: %d vs %d)",
				FormatDims(a), FormatDims(b), maxLen-1-i, aDim, bDim)
		}
	}

	return result, nil
}

// Broadcast aligns two shapes and returns views of both expanded to the
// common dimensions. Axes replicated in a view have stride 0.
func Broadcast(a, b Shape) (Shape, Shape, error) {
	if a.IsScalar() && b.IsScalar() {
		return a, b, nil
	}
	dims, err := BroadcastDims(a.dims, b.dims)
	if err != nil {
		return Shape{}, Shape{}, err
	}
	left, err := a.BroadcastTo(dims...)
	if err != nil {
		return Shape{}, Shape{}, err
	}
	right, err := b.BroadcastTo(dims...)
	if err != nil {
		return Shape{}, Shape{}, err
	}
	return left, right, nil
}

// BroadcastMany broadcasts any number of shapes against each other.
func BroadcastMany(shapes ...Shape) ([]Shape, error) {
	var dims []int
	for _, s := range shapes {
		d, err := BroadcastDims(dims, s.dims)
		if err != nil {
			return nil, err
		}
		dims = d
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		v, err := s.BroadcastTo(dims...)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
