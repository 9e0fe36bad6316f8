package utils

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type LinearSolver interface {
	Solve(A CSR, b []float64) (x []float64, err error)
	Name() string
}

/*
NewLinearSolver maps a solver name from the input file onto an implementation:
	"direct", "mumps", "band"  - Reverse Cuthill-McKee ordered banded LU
	"lu", "dense"              - dense LU with partial pivoting
	"gmres"                    - restarted GMRES, Jacobi preconditioned
*/
func NewLinearSolver(name string, tol float64, maxIter, restart int) (ls LinearSolver, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct", "mumps", "band":
		ls = &BandLU{}
	case "lu", "dense":
		ls = &DenseLU{}
	case "gmres":
		ls = NewGMRES(tol, maxIter, restart)
	default:
		err = fmt.Errorf("unknown linear solver: %q", name)
	}
	return
}

func checkSystem(A CSR, b []float64) (err error) {
	if A.N != A.NC {
		return fmt.Errorf("matrix is not square: %dx%d", A.N, A.NC)
	}
	if len(b) != A.N {
		return fmt.Errorf("right hand side has length %d, matrix has %d rows", len(b), A.N)
	}
	return
}

type DenseLU struct {
	Cond float64
}

func (ls *DenseLU) Name() string { return "dense LU" }

func (ls *DenseLU) Solve(A CSR, b []float64) (x []float64, err error) {
	var (
		lu mat.LU
	)
	if err = checkSystem(A, b); err != nil {
		return
	}
	lu.Factorize(A.Dense())
	ls.Cond = lu.Cond()
	if math.IsInf(ls.Cond, 1) {
		err = fmt.Errorf("matrix is singular")
		return
	}
	xv := mat.NewVecDense(A.N, nil)
	if err = lu.SolveVecTo(xv, false, mat.NewVecDense(A.N, b)); err != nil {
		// Ill conditioning is reported but the solution is still usable
		if _, ok := err.(mat.Condition); !ok {
			return
		}
		err = nil
	}
	x = xv.RawVector().Data
	return
}

/*
BandLU reorders the system with Reverse Cuthill-McKee and factors it in band storage
with partial pivoting. Row r of the band holds columns [r-kl, r+ku+kl], the extra kl
columns take the fill from row interchanges.
*/
type BandLU struct {
	KL, KU int
}

func (ls *BandLU) Name() string { return "banded LU (RCM)" }

func (ls *BandLU) Solve(A CSR, b []float64) (x []float64, err error) {
	if err = checkSystem(A, b); err != nil {
		return
	}
	var (
		n    = A.N
		perm = ReverseCuthillMcKee(A)
		inv  = make([]int, n)
	)
	for newI, oldI := range perm {
		inv[oldI] = newI
	}
	ls.KL, ls.KU = Bandwidth(A, perm)
	var (
		kl, ku = ls.KL, ls.KU
		W      = 2*kl + ku + 1
		ab     = make([]float64, n*W)
		rhs    = make([]float64, n)
		at     = func(r, c int) *float64 { return &ab[r*W+c-r+kl] }
	)
	for i := 0; i < n; i++ {
		r := inv[i]
		rhs[r] = b[i]
		for ii := A.RowPtr[i]; ii < A.RowPtr[i+1]; ii++ {
			*at(r, inv[A.ColInd[ii]]) += A.Val[ii]
		}
	}
	for k := 0; k < n; k++ {
		var (
			p     = k
			pmax  = math.Abs(*at(k, k))
			rLast = min(n-1, k+kl)
			cLast = min(n-1, k+kl+ku)
		)
		for r := k + 1; r <= rLast; r++ {
			if v := math.Abs(*at(r, k)); v > pmax {
				p, pmax = r, v
			}
		}
		if pmax == 0 {
			err = fmt.Errorf("matrix is singular at pivot %d", k)
			return
		}
		if p != k {
			for c := k; c <= cLast; c++ {
				pk, pp := at(k, c), at(p, c)
				*pk, *pp = *pp, *pk
			}
			rhs[k], rhs[p] = rhs[p], rhs[k]
		}
		pivot := *at(k, k)
		for r := k + 1; r <= rLast; r++ {
			lrk := at(r, k)
			if *lrk == 0 {
				continue
			}
			l := *lrk / pivot
			*lrk = 0
			for c := k + 1; c <= cLast; c++ {
				*at(r, c) -= l * *at(k, c)
			}
			rhs[r] -= l * rhs[k]
		}
	}
	for k := n - 1; k >= 0; k-- {
		sum := rhs[k]
		for c := k + 1; c <= min(n-1, k+kl+ku); c++ {
			sum -= *at(k, c) * rhs[c]
		}
		rhs[k] = sum / *at(k, k)
	}
	x = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rhs[inv[i]]
	}
	return
}

/*
GMRES is restarted GMRES(m) with right Jacobi preconditioning. The preconditioner
falls back to the identity when the matrix has a zero on the diagonal, as saddle
point systems do.
*/
type GMRES struct {
	Tol        float64
	MaxIter    int
	Restart    int
	Iterations int
	Residual   float64
}

func NewGMRES(tol float64, maxIter, restart int) *GMRES {
	if tol <= 0 {
		tol = 1.e-10
	}
	if maxIter <= 0 {
		maxIter = 10000
	}
	if restart <= 0 {
		restart = 100
	}
	return &GMRES{Tol: tol, MaxIter: maxIter, Restart: restart}
}

func (ls *GMRES) Name() string { return fmt.Sprintf("GMRES(%d)", ls.Restart) }

func (ls *GMRES) Solve(A CSR, b []float64) (x []float64, err error) {
	if err = checkSystem(A, b); err != nil {
		return
	}
	var (
		n     = A.N
		m     = min(ls.Restart, n)
		bnorm = floats.Norm(b, 2)
		Minv  = make([]float64, n)
		V     = make([][]float64, m+1)
		H     = make([][]float64, m+1)
		cs    = make([]float64, m)
		sn    = make([]float64, m)
		g     = make([]float64, m+1)
		r     = make([]float64, n)
		z     = make([]float64, n)
	)
	x = make([]float64, n)
	ls.Iterations, ls.Residual = 0, 0
	if bnorm == 0 {
		return
	}
	diag := A.Diagonal()
	for i, d := range diag {
		if d == 0 {
			for j := range Minv {
				Minv[j] = 1
			}
			break
		}
		Minv[i] = 1 / d
	}
	for i := range V {
		V[i] = make([]float64, n)
		H[i] = make([]float64, m)
	}
	for {
		A.MulVec(x, r)
		floats.SubTo(r, b, r)
		beta := floats.Norm(r, 2)
		ls.Residual = beta / bnorm
		if ls.Residual < ls.Tol {
			return
		}
		if ls.Iterations >= ls.MaxIter {
			err = fmt.Errorf("gmres did not converge in %d iterations, relative residual %g",
				ls.Iterations, ls.Residual)
			return
		}
		floats.ScaleTo(V[0], 1/beta, r)
		for i := range g {
			g[i] = 0
		}
		g[0] = beta
		var k int
		for j := 0; j < m; j++ {
			floats.MulTo(z, Minv, V[j])
			w := V[j+1]
			A.MulVec(z, w)
			for i := 0; i <= j; i++ {
				H[i][j] = floats.Dot(w, V[i])
				floats.AddScaled(w, -H[i][j], V[i])
			}
			H[j+1][j] = floats.Norm(w, 2)
			if H[j+1][j] != 0 {
				floats.Scale(1/H[j+1][j], w)
			}
			for i := 0; i < j; i++ {
				tmp := cs[i]*H[i][j] + sn[i]*H[i+1][j]
				H[i+1][j] = -sn[i]*H[i][j] + cs[i]*H[i+1][j]
				H[i][j] = tmp
			}
			denom := math.Hypot(H[j][j], H[j+1][j])
			if denom == 0 {
				err = fmt.Errorf("gmres breakdown at iteration %d", ls.Iterations)
				return
			}
			cs[j], sn[j] = H[j][j]/denom, H[j+1][j]/denom
			H[j][j], H[j+1][j] = denom, 0
			g[j+1] = -sn[j] * g[j]
			g[j] = cs[j] * g[j]
			ls.Iterations++
			k = j + 1
			if math.Abs(g[j+1])/bnorm < ls.Tol || ls.Iterations >= ls.MaxIter {
				break
			}
		}
		// Back substitution for the Krylov coefficients, then x += M^-1 V y
		y := make([]float64, k)
		for i := k - 1; i >= 0; i-- {
			sum := g[i]
			for l := i + 1; l < k; l++ {
				sum -= H[i][l] * y[l]
			}
			y[i] = sum / H[i][i]
		}
		for i := range z {
			z[i] = 0
		}
		for i := 0; i < k; i++ {
			floats.AddScaled(z, y[i], V[i])
		}
		floats.Mul(z, Minv)
		floats.Add(x, z)
	}
}
