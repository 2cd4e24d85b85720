package network

import "gonum.org/v1/gonum/mat"

// Submatrix copies the rows×cols selection of m into a new dense matrix.
// A nil selection means "all rows" or "all columns". It returns nil when the
// selection is empty, since gonum has no zero-sized dense matrices.
func Submatrix(m mat.Matrix, rows, cols []int) *mat.Dense {
	r, c := m.Dims()
	if rows == nil {
		rows = identity(r)
	}
	if cols == nil {
		cols = identity(c)
	}
	if len(rows) == 0 || len(cols) == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), len(cols), nil)
	for i, ri := range rows {
		for j, cj := range cols {
			out.Set(i, j, m.At(ri, cj))
		}
	}
	return out
}

// Gather returns v at the given positions, or a copy of v when idx is nil.
func Gather(v []float64, idx []int) []float64 {
	if idx == nil {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = v[i]
	}
	return out
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
