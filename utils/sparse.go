package utils

import (
	"fmt"

	"github.com/exascience/pargo/parallel"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly target, entries are summed in with Add
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Add(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// PinRow replaces row i with the identity row
func (m DOK) PinRow(i int) {
	var (
		cols []int
	)
	m.checkWritable()
	m.M.DoNonZero(func(r, c int, v float64) {
		if r == i {
			cols = append(cols, c)
		}
	})
	for _, c := range cols {
		m.M.Set(i, c, 0)
	}
	m.M.Set(i, i, 1)
}

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return NewCSRFromSparse(m.M.ToCSR())
}

/*
CSR holds compressed row arrays extracted from a sparse.CSR, which are what the
solvers iterate over. Explicit zeros are dropped.
*/
type CSR struct {
	M      *sparse.CSR
	RowPtr []int
	ColInd []int
	Val    []float64
	N, NC  int
}

func NewCSRFromSparse(S *sparse.CSR) (R CSR) {
	var (
		nr, nc = S.Dims()
		counts = make([]int, nr+1)
		fill   []int
	)
	R = CSR{M: S, N: nr, NC: nc}
	S.DoNonZero(func(i, j int, v float64) {
		if v != 0 {
			counts[i+1]++
		}
	})
	for i := 0; i < nr; i++ {
		counts[i+1] += counts[i]
	}
	R.RowPtr = counts
	R.ColInd = make([]int, counts[nr])
	R.Val = make([]float64, counts[nr])
	fill = make([]int, nr)
	copy(fill, counts[:nr])
	S.DoNonZero(func(i, j int, v float64) {
		if v != 0 {
			R.ColInd[fill[i]] = j
			R.Val[fill[i]] = v
			fill[i]++
		}
	})
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int) { return m.N, m.NC }
func (m CSR) At(i, j int) float64 {
	for ii := m.RowPtr[i]; ii < m.RowPtr[i+1]; ii++ {
		if m.ColInd[ii] == j {
			return m.Val[ii]
		}
	}
	return 0
}
func (m CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

func (m CSR) NNZ() int { return len(m.Val) }

// MulVec computes y = A x, rows are split across cores
func (m CSR) MulVec(x, y []float64) {
	if len(x) != m.NC || len(y) != m.N {
		panic(fmt.Errorf("dimension mismatch: A is %dx%d, len(x) = %d, len(y) = %d",
			m.N, m.NC, len(x), len(y)))
	}
	parallel.Range(0, m.N, 0, func(low, high int) {
		for i := low; i < high; i++ {
			var sum float64
			for ii := m.RowPtr[i]; ii < m.RowPtr[i+1]; ii++ {
				sum += m.Val[ii] * x[m.ColInd[ii]]
			}
			y[i] = sum
		}
	})
}

// PinRow returns a copy of A with row i replaced by the identity row, the sparse.CSR M is not carried over
func (m CSR) PinRow(i int) (R CSR) {
	R = CSR{
		N:      m.N,
		NC:     m.NC,
		RowPtr: make([]int, m.N+1),
		ColInd: make([]int, 0, len(m.ColInd)+1),
		Val:    make([]float64, 0, len(m.Val)+1),
	}
	for r := 0; r < m.N; r++ {
		if r == i {
			R.ColInd = append(R.ColInd, i)
			R.Val = append(R.Val, 1)
		} else {
			R.ColInd = append(R.ColInd, m.ColInd[m.RowPtr[r]:m.RowPtr[r+1]]...)
			R.Val = append(R.Val, m.Val[m.RowPtr[r]:m.RowPtr[r+1]]...)
		}
		R.RowPtr[r+1] = len(R.Val)
	}
	return
}

func (m CSR) Diagonal() (d []float64) {
	d = make([]float64, m.N)
	for i := 0; i < m.N; i++ {
		d[i] = m.At(i, i)
	}
	return
}

func (m CSR) Dense() (A *mat.Dense) {
	A = mat.NewDense(m.N, m.NC, nil)
	for i := 0; i < m.N; i++ {
		for ii := m.RowPtr[i]; ii < m.RowPtr[i+1]; ii++ {
			A.Set(i, m.ColInd[ii], m.Val[ii])
		}
	}
	return
}

// IsSymmetric checks |A_ij - A_ji| <= tol * max|A|
func (m CSR) IsSymmetric(tol float64) bool {
	var maxAbs float64
	for _, v := range m.Val {
		if v > maxAbs {
			maxAbs = v
		} else if -v > maxAbs {
			maxAbs = -v
		}
	}
	for i := 0; i < m.N; i++ {
		for ii := m.RowPtr[i]; ii < m.RowPtr[i+1]; ii++ {
			j := m.ColInd[ii]
			diff := m.Val[ii] - m.At(j, i)
			if diff > tol*maxAbs || -diff > tol*maxAbs {
				return false
			}
		}
	}
	return true
}
