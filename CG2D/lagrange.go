package CG2D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gor13/utils"
)

const MaxDegree = 4

/*
LagrangeElement is the continuous Pk element on the unit triangle (0,0),(1,0),(0,1).

Node layout:
	0..2            vertices
	3..3+3(k-1)-1   edge nodes, edge e is opposite vertex e and runs from
	                vertex (e+1)%3 to vertex (e+2)%3
	remaining       interior nodes

The basis is the monomial basis r^p s^q, p+q <= k, transformed by the inverse of
the Vandermonde matrix at the nodes.
*/
type LagrangeElement struct {
	Degree   int
	Np       int // Number of nodes
	NpEdge   int // Interior nodes per edge
	NpInt    int // Interior nodes of the cell
	R, S     []float64
	powers   [][2]int
	coeffs   *mat.Dense // Column j holds the monomial coefficients of basis j
	EdgeNode [3][]int   // Local node indices along each edge, excluding the vertices
}

func NewLagrangeElement(degree int) (el *LagrangeElement, err error) {
	if degree < 1 || degree > MaxDegree {
		err = fmt.Errorf("lagrange element degree must be in [1,%d], have %d", MaxDegree, degree)
		return
	}
	var (
		k   = float64(degree)
		Np  = (degree + 1) * (degree + 2) / 2
		vrs = [3][2]float64{{0, 0}, {1, 0}, {0, 1}}
	)
	el = &LagrangeElement{
		Degree: degree,
		Np:     Np,
		NpEdge: degree - 1,
		NpInt:  (degree - 1) * (degree - 2) / 2,
		R:      make([]float64, 0, Np),
		S:      make([]float64, 0, Np),
	}
	for _, v := range vrs {
		el.R = append(el.R, v[0])
		el.S = append(el.S, v[1])
	}
	for e := 0; e < 3; e++ {
		a, b := vrs[(e+1)%3], vrs[(e+2)%3]
		for i := 1; i < degree; i++ {
			t := float64(i) / k
			el.EdgeNode[e] = append(el.EdgeNode[e], len(el.R))
			el.R = append(el.R, (1-t)*a[0]+t*b[0])
			el.S = append(el.S, (1-t)*a[1]+t*b[1])
		}
	}
	for j := 1; j < degree; j++ {
		for i := 1; i+j < degree; i++ {
			el.R = append(el.R, float64(i)/k)
			el.S = append(el.S, float64(j)/k)
		}
	}
	for n := 0; n <= degree; n++ {
		for q := 0; q <= n; q++ {
			el.powers = append(el.powers, [2]int{n - q, q})
		}
	}
	V := mat.NewDense(Np, Np, nil)
	for i := 0; i < Np; i++ {
		for m, pq := range el.powers {
			V.Set(i, m, utils.POW(el.R[i], pq[0])*utils.POW(el.S[i], pq[1]))
		}
	}
	el.coeffs = mat.NewDense(Np, Np, nil)
	if err = el.coeffs.Inverse(V); err != nil {
		err = fmt.Errorf("lagrange degree %d Vandermonde inversion: %w", degree, err)
		return
	}
	return
}

// Basis evaluates all basis functions at (r,s) into phi
func (el *LagrangeElement) Basis(r, s float64, phi []float64) {
	mono := make([]float64, el.Np)
	for m, pq := range el.powers {
		mono[m] = utils.POW(r, pq[0]) * utils.POW(s, pq[1])
	}
	for j := 0; j < el.Np; j++ {
		var sum float64
		for m := 0; m < el.Np; m++ {
			sum += el.coeffs.At(m, j) * mono[m]
		}
		phi[j] = sum
	}
}

// GradBasis evaluates the reference gradients of all basis functions at (r,s)
func (el *LagrangeElement) GradBasis(r, s float64, dr, ds []float64) {
	var (
		mr = make([]float64, el.Np)
		ms = make([]float64, el.Np)
	)
	for m, pq := range el.powers {
		p, q := pq[0], pq[1]
		if p > 0 {
			mr[m] = float64(p) * utils.POW(r, p-1) * utils.POW(s, q)
		}
		if q > 0 {
			ms[m] = float64(q) * utils.POW(r, p) * utils.POW(s, q-1)
		}
	}
	for j := 0; j < el.Np; j++ {
		var sr, ss float64
		for m := 0; m < el.Np; m++ {
			c := el.coeffs.At(m, j)
			sr += c * mr[m]
			ss += c * ms[m]
		}
		dr[j], ds[j] = sr, ss
	}
}

// Tabulation holds basis values and reference gradients at a set of points, indexed [point][basis]
type Tabulation struct {
	Phi, Dr, Ds [][]float64
}

func (el *LagrangeElement) Tabulate(R, S []float64) (tab Tabulation) {
	n := len(R)
	tab = Tabulation{
		Phi: make([][]float64, n),
		Dr:  make([][]float64, n),
		Ds:  make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		tab.Phi[i] = make([]float64, el.Np)
		tab.Dr[i] = make([]float64, el.Np)
		tab.Ds[i] = make([]float64, el.Np)
		el.Basis(R[i], S[i], tab.Phi[i])
		el.GradBasis(R[i], S[i], tab.Dr[i], tab.Ds[i])
	}
	return
}

/*
EdgePoints maps line parameters t in [0,1] onto local edge e of the reference
triangle. With reverse set the edge is traversed from its second vertex.
*/
func EdgePoints(e int, t []float64, reverse bool) (R, S []float64) {
	vrs := [3][2]float64{{0, 0}, {1, 0}, {0, 1}}
	a, b := vrs[(e+1)%3], vrs[(e+2)%3]
	if reverse {
		a, b = b, a
	}
	R, S = make([]float64, len(t)), make([]float64, len(t))
	for i, tt := range t {
		R[i] = (1-tt)*a[0] + tt*b[0]
		S[i] = (1-tt)*a[1] + tt*b[1]
	}
	return
}
