package CG2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

/*
JacobiGQ computes the N+1 point Gauss quadrature for the weight (1-x)^alpha (1+x)^beta
on [-1,1] from the eigen decomposition of the Jacobi matrix (Golub-Welsch).
*/
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{gamma0(alpha, beta)}
		return
	}
	var (
		h1 = make([]float64, N+1)
		JJ = mat.NewSymDense(N+1, nil)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: -(alpha^2-beta^2)/(h1+2)/h1
	fac := -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		if i == 0 && alpha+beta < 1.e-15 {
			continue
		}
		JJ.SetSym(i, i, fac/(val*(val+2.)))
	}
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		JJ.SetSym(i, i+1, 2./(val+2.)*
			math.Sqrt(ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/((val+1.)*(val+3.))))
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic(fmt.Errorf("eigenvalue decomposition failed for Jacobi matrix of order %d", N+1))
	}
	X = eig.Values(nil)
	VV := mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VV)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range W {
		v := VV.At(0, i)
		W[i] = v * v * g0
	}
	return
}

type Quadrature struct {
	R, S   []float64 // Reference coordinates, S is unused for line rules
	W      []float64
	Degree int
}

func (q *Quadrature) Len() int { return len(q.W) }

func pointsForDegree(degree int) int {
	if degree < 0 {
		panic(fmt.Errorf("negative quadrature degree %d", degree))
	}
	return degree/2 + 1
}

// NewLineQuadrature is Gauss-Legendre on [0,1], exact for polynomials of the given degree
func NewLineQuadrature(degree int) (q *Quadrature) {
	x, w := JacobiGQ(0, 0, pointsForDegree(degree)-1)
	q = &Quadrature{R: make([]float64, len(x)), W: make([]float64, len(x)), Degree: degree}
	for i := range x {
		q.R[i] = 0.5 * (1 + x[i])
		q.W[i] = 0.5 * w[i]
	}
	return
}

/*
NewTriangleQuadrature is a collapsed Gauss-Jacobi rule on the unit triangle
(0,0),(1,0),(0,1), exact for polynomials of the given total degree. The square
(a,b) in [-1,1]^2 maps with r = (1+a)(1-b)/4, s = (1+b)/2 and the Jacobian (1-b)/8
is absorbed into the alpha=1 Jacobi weight in b.
*/
func NewTriangleQuadrature(degree int) (q *Quadrature) {
	var (
		n      = pointsForDegree(degree)
		xa, wa = JacobiGQ(0, 0, n-1)
		xb, wb = JacobiGQ(1, 0, n-1)
	)
	q = &Quadrature{Degree: degree}
	for j := range xb {
		for i := range xa {
			q.R = append(q.R, 0.25*(1+xa[i])*(1-xb[j]))
			q.S = append(q.S, 0.5*(1+xb[j]))
			q.W = append(q.W, wa[i]*wb[j]/8)
		}
	}
	return
}
