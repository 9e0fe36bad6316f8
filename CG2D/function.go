package CG2D

import (
	"fmt"
	"math"

	"github.com/notargets/gor13/utils"
)

// Function is a discrete field, coefficients are ordered component block by component block
type Function struct {
	Space  *FunctionSpace
	Coeffs []float64
}

func NewFunction(fs *FunctionSpace) *Function {
	return &Function{Space: fs, Coeffs: make([]float64, fs.Dim())}
}

func (f *Function) Copy() (g *Function) {
	g = NewFunction(f.Space)
	copy(g.Coeffs, f.Coeffs)
	return
}

// Component returns a view of the coefficients of component comp
func (f *Function) Component(comp int) []float64 {
	n := f.Space.NScalar()
	return f.Coeffs[comp*n : (comp+1)*n]
}

// Interpolate sets the coefficients to the nodal values of g, which returns NumComponents values
func (f *Function) Interpolate(g func(x, y float64) []float64) (err error) {
	var (
		dm = f.Space.DofMap
		nc = f.Space.NumComponents()
	)
	for d := 0; d < dm.NDofs; d++ {
		vals := g(dm.X[d], dm.Y[d])
		if len(vals) != nc {
			return fmt.Errorf("interpolating into %s: have %d values, need %d",
				f.Space.Name, len(vals), nc)
		}
		for c := 0; c < nc; c++ {
			f.Coeffs[c*dm.NDofs+d] = vals[c]
		}
	}
	return
}

// Eval returns the value and physical gradient in cell k at reference coordinates (r,s)
func (f *Function) Eval(k int, r, s float64) (val Value) {
	var (
		el     = f.Space.Element
		am     = f.Space.Mesh.CellMap(k)
		dofs   = f.Space.DofMap.CellDofs[k]
		n      = f.Space.NScalar()
		phi    = make([]float64, el.Np)
		dr, ds = make([]float64, el.Np), make([]float64, el.Np)
	)
	el.Basis(r, s, phi)
	el.GradBasis(r, s, dr, ds)
	val.reset(f.Space.Rank)
	for c := 0; c < f.Space.NumComponents(); c++ {
		for j, d := range dofs {
			coef := f.Coeffs[c*n+d]
			if coef == 0 {
				continue
			}
			gx, gy := am.PhysicalGradient(dr[j], ds[j])
			val.addComponent(c, coef*phi[j], coef*gx, coef*gy)
		}
	}
	return
}

// VertexValues returns component comp at each mesh vertex
func (f *Function) VertexValues(comp int) (vv []float64) {
	vv = make([]float64, f.Space.Mesh.Nv)
	copy(vv, f.Component(comp)[:f.Space.Mesh.Nv])
	return
}

// Mean is the arithmetic mean of the dof values of component comp
func (f *Function) Mean(comp int) float64 {
	return utils.Mean(f.Component(comp))
}

func (f *Function) AddConstant(comp int, val float64) {
	c := f.Component(comp)
	for i := range c {
		c[i] += val
	}
}

// Subtract returns f - g, both must live in the same space
func (f *Function) Subtract(g *Function) (d *Function) {
	if f.Space != g.Space {
		panic(fmt.Errorf("subtracting functions of different spaces %s and %s", f.Space.Name, g.Space.Name))
	}
	d = NewFunction(f.Space)
	for i := range d.Coeffs {
		d.Coeffs[i] = f.Coeffs[i] - g.Coeffs[i]
	}
	return
}

// MaxAbs is the largest dof value magnitude of component comp
func (f *Function) MaxAbs(comp int) (m float64) {
	for _, v := range f.Component(comp) {
		m = math.Max(m, math.Abs(v))
	}
	return
}

// MixedFunction holds the solution vector of a MixedSpace
type MixedFunction struct {
	Space  *MixedSpace
	Coeffs []float64
}

func NewMixedFunction(ms *MixedSpace) *MixedFunction {
	return &MixedFunction{Space: ms, Coeffs: make([]float64, ms.Dim())}
}

// Split copies each sub space's block into its own Function
func (mf *MixedFunction) Split() (fs []*Function) {
	fs = make([]*Function, len(mf.Space.Spaces))
	for i, sp := range mf.Space.Spaces {
		fs[i] = NewFunction(sp)
		off := mf.Space.Offsets[i]
		copy(fs[i].Coeffs, mf.Coeffs[off:off+sp.Dim()])
	}
	return
}
