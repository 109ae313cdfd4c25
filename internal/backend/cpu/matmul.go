package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// gemmFunc computes c = a · b for row-major contiguous a (m×k), b (k×n) and
// c (m×n). c may hold garbage on entry.
type gemmFunc[T any] func(m, n, k int, a, b, c []T)

func gemm32(m, n, k int, a, b, c []float32) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}

func gemm64(m, n, k int, a, b, c []float64) {
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas64.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c})
}

// gemmNaive is the i-k-j loop used for integer types.
func gemmNaive[T tensor.Number](m, n, k int, a, b, c []T) {
	clear(c)
	for i := 0; i < m; i++ {
		row := c[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bp := b[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * bp[j]
			}
		}
	}
}

// matmul multiplies the last two axes of a and b, broadcasting the leading
// (batch) axes. A 1-D a is treated as a row vector and a 1-D b as a column
// vector; the added axis is removed from the result.
//
//	(M, K) @ (K, N)         -> (M, N)
//	(B, M, K) @ (K, N)      -> (B, M, N)
//	(K,) @ (K, N)           -> (N,)
//	(K,) @ (K,)             -> ()
func matmul[T tensor.Number](al *allocator, par parallel.Config, a, b *tensor.Array, gemm gemmFunc[T]) (*tensor.Array, error) {
	if a.NDim() == 0 || b.NDim() == 0 {
		return nil, tensor.Errorf(tensor.ErrShapeMismatch, "matmul: input operand does not have enough dimensions")
	}
	ad, bd := a.Dims(), b.Dims()
	aVec, bVec := len(ad) == 1, len(bd) == 1
	if aVec {
		ad = []int{1, ad[0]}
	}
	if bVec {
		bd = []int{bd[0], 1}
	}
	m, k := ad[len(ad)-2], ad[len(ad)-1]
	k2, n := bd[len(bd)-2], bd[len(bd)-1]
	if k != k2 {
		return nil, tensor.Errorf(tensor.ErrShapeMismatch, "matmul: shape mismatch %v @ %v (size %d is different from %d)",
			a.Shape(), b.Shape(), k, k2)
	}

	aBatchDims, bBatchDims := ad[:len(ad)-2], bd[:len(bd)-2]
	batch, err := tensor.BroadcastDims(aBatchDims, bBatchDims)
	if err != nil {
		return nil, err
	}
	aBatch, err := tensor.NewShape(aBatchDims...).BroadcastTo(batch...)
	if err != nil {
		return nil, err
	}
	bBatch, err := tensor.NewShape(bBatchDims...).BroadcastTo(batch...)
	if err != nil {
		return nil, err
	}

	outDims := append(append([]int{}, batch...), m, n)
	switch {
	case aVec && bVec:
		outDims = outDims[:len(outDims)-2]
	case aVec:
		outDims = append(outDims[:len(outDims)-2], n)
	case bVec:
		outDims = outDims[:len(outDims)-1]
	}
	out, err := al.empty(tensor.DataTypeOf[T](), outDims)
	if err != nil {
		return nil, err
	}
	dst := tensor.Elements[T](out.Block())
	if len(dst) == 0 {
		return out, nil
	}
	if k == 0 {
		clear(dst)
		return out, nil
	}

	x, err := flat[T](a)
	if err != nil {
		out.Release()
		return nil, err
	}
	y, err := flat[T](b)
	if err != nil {
		out.Release()
		return nil, err
	}

	// Batch items write disjoint slices of dst.
	var offsets [][2]int
	inc := tensor.NewIncrementor(batch)
	for idx := inc.Index(); idx != nil; idx = inc.Next() {
		offsets = append(offsets, [2]int{aBatch.GetOffset(idx...) * m * k, bBatch.GetOffset(idx...) * k * n})
	}
	parallel.For(len(offsets), func(i int) {
		ao, bo := offsets[i][0], offsets[i][1]
		gemm(m, n, k, x[ao:ao+m*k], y[bo:bo+k*n], dst[i*m*n:(i+1)*m*n])
	}, par)
	return out, nil
}

// dot follows NumPy's dot: scalars multiply, 1-D operands contract to a
// scalar, and otherwise the last axis of a is contracted with the
// second-to-last axis of b (the last axis when b is 1-D).
//
//	(N, K) · (A, K, M) -> (N, A, M)
func dot[T tensor.Number](al *allocator, par parallel.Config, a, b *tensor.Array, gemm gemmFunc[T]) (*tensor.Array, error) {
	switch {
	case a.NDim() == 0 || b.NDim() == 0:
		return binary(al, a, b, mul[T])
	case b.NDim() <= 2 || a.NDim() == 1:
		return matmul(al, par, a, b, gemm)
	}

	ad, bd := a.Dims(), b.Dims()
	nb := len(bd)
	k := bd[nb-2]
	if ad[len(ad)-1] != k {
		return nil, tensor.Errorf(tensor.ErrShapeMismatch, "dot: shapes %v and %v not aligned: %d (dim %d) != %d (dim %d)",
			a.Shape(), b.Shape(), ad[len(ad)-1], len(ad)-1, k, nb-2)
	}

	// Move b's contracted axis to the front and flatten the rest, so the
	// columns of bm run over b[:-2] + b[-1:] in row-major order.
	perm := make([]int, 0, nb)
	perm = append(perm, nb-2)
	for i := 0; i < nb-2; i++ {
		perm = append(perm, i)
	}
	perm = append(perm, nb-1)
	bt, err := b.Transpose(perm...)
	if err != nil {
		return nil, err
	}
	defer bt.Release()
	bm, err := bt.Reshape(k, tensor.NumElements(bd[:nb-2])*bd[nb-1])
	if err != nil {
		return nil, err
	}
	defer bm.Release()
	am, err := a.Reshape(tensor.NumElements(ad[:len(ad)-1]), k)
	if err != nil {
		return nil, err
	}
	defer am.Release()

	r, err := matmul(al, par, am, bm, gemm)
	if err != nil {
		return nil, err
	}
	defer r.Release()

	outDims := append(append(ad[:len(ad)-1:len(ad)-1], bd[:nb-2]...), bd[nb-1])
	return r.Reshape(outDims...)
}
