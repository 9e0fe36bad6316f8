package CG2D

import (
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"

	"github.com/notargets/gor13/geometry2D"
)

// Integrate sums f over the mesh with a cell quadrature of the given degree
func Integrate(m *geometry2D.Mesh, degree int, f func(k int, x, y, r, s float64) float64) float64 {
	quad := NewTriangleQuadrature(degree)
	return parallel.RangeReduceFloat64(0, m.K, 0,
		func(low, high int) (sum float64) {
			for k := low; k < high; k++ {
				am := m.CellMap(k)
				detJ := math.Abs(am.Det)
				for q, w := range quad.W {
					x, y := am.ToPhysical(quad.R[q], quad.S[q])
					sum += w * detJ * f(k, x, y, quad.R[q], quad.S[q])
				}
			}
			return
		},
		func(a, b float64) float64 { return a + b })
}

func errorDegree(fs *FunctionSpace) int {
	return 2 * (fs.Element.Degree + 3)
}

func checkComponent(fs *FunctionSpace, comp int) {
	if comp < 0 || comp >= fs.NumComponents() {
		panic(fmt.Errorf("component %d out of range for %s with %d components", comp, fs.Name, fs.NumComponents()))
	}
}

// ErrorNormL2 is the L2 norm of exact - f for component comp, exact returns all components at (x,y)
func ErrorNormL2(f *Function, exact func(x, y float64) []float64, comp int) float64 {
	checkComponent(f.Space, comp)
	sq := Integrate(f.Space.Mesh, errorDegree(f.Space), func(k int, x, y, r, s float64) float64 {
		val := f.Eval(k, r, s)
		d := exact(x, y)[comp] - val.Component(comp)
		return d * d
	})
	return math.Sqrt(sq)
}

// NormL2 is the L2 norm of component comp of f
func NormL2(f *Function, comp int) float64 {
	checkComponent(f.Space, comp)
	sq := Integrate(f.Space.Mesh, 2*f.Space.Element.Degree, func(k int, x, y, r, s float64) float64 {
		val := f.Eval(k, r, s)
		c := val.Component(comp)
		return c * c
	})
	return math.Sqrt(sq)
}

// InterpolantErrorL2 is the L2 norm of g - f for component comp, both in the same space
func InterpolantErrorL2(f, g *Function, comp int) float64 {
	return NormL2(g.Subtract(f), comp)
}

// LinfDofs is the largest dof difference of component comp
func LinfDofs(f, g *Function, comp int) float64 {
	return g.Subtract(f).MaxAbs(comp)
}

// LinfVertices is the largest difference of component comp at the mesh vertices
func LinfVertices(f, g *Function, comp int) (m float64) {
	var (
		fv, gv = f.VertexValues(comp), g.VertexValues(comp)
	)
	for i := range fv {
		m = math.Max(m, math.Abs(fv[i]-gv[i]))
	}
	return
}
