package CG2D

import (
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"

	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/utils"
)

/*
Assembler computes local cell and facet matrices in parallel batches and scatters
each batch into the global sparse matrix. Local matrices are row-major with the
test function as the row.
*/
type Assembler struct {
	Space    *MixedSpace
	Form     *Form
	Parallel bool
	Verbose  bool

	quad     *Quadrature
	line     *Quadrature
	cellTab  []Tabulation
	edgeTab  [][3][2]Tabulation // [field][local edge][reversed]
	localOff []int
	nloc     int
	terms    [3][]BilinearTerm
	sources  [3][]LinearTerm
	coefs    [3][]int
}

const assemblyBatch = 4096

func NewAssembler(form *Form, ms *MixedSpace) (as *Assembler, err error) {
	var (
		maxDeg int
	)
	for i := range form.Bilinear {
		t := form.Bilinear[i]
		if t.Trial < 0 || t.Trial >= len(ms.Spaces) || t.Test < 0 || t.Test >= len(ms.Spaces) {
			err = fmt.Errorf("bilinear term %d on %s references sub space (%d,%d), have %d",
				i, t.Integral, t.Trial, t.Test, len(ms.Spaces))
			return
		}
		if (t.Integral == InteriorFacet && t.Jump == nil) || (t.Integral != InteriorFacet && t.Kernel == nil) {
			err = fmt.Errorf("bilinear term %d on %s has no kernel", i, t.Integral)
			return
		}
	}
	for i, t := range form.Linear {
		if t.Test < 0 || t.Test >= len(ms.Spaces) || t.Kernel == nil {
			err = fmt.Errorf("linear term %d on %s is invalid", i, t.Integral)
			return
		}
		if t.Integral == InteriorFacet {
			err = fmt.Errorf("linear term %d: interior facet sources are not supported", i)
			return
		}
	}
	for i, c := range form.Coefficients {
		if c.Eval == nil || c.Integral > InteriorFacet {
			err = fmt.Errorf("coefficient %d on %s is invalid", i, c.Integral)
			return
		}
	}
	for _, fs := range ms.Spaces {
		maxDeg = max(maxDeg, fs.Element.Degree)
	}
	qdeg := form.QuadratureDegree
	if qdeg <= 0 {
		qdeg = 2*maxDeg + 2
	}
	as = &Assembler{
		Space:    ms,
		Form:     form,
		Parallel: true,
		quad:     NewTriangleQuadrature(qdeg),
		line:     NewLineQuadrature(qdeg),
		cellTab:  make([]Tabulation, len(ms.Spaces)),
		edgeTab:  make([][3][2]Tabulation, len(ms.Spaces)),
		localOff: ms.LocalOffsets(),
		nloc:     ms.NLocal(),
	}
	for it := CellIntegral; it <= InteriorFacet; it++ {
		as.terms[it] = form.bilinear(it)
		as.sources[it] = form.linear(it)
	}
	for i, c := range form.Coefficients {
		as.coefs[c.Integral] = append(as.coefs[c.Integral], i)
	}
	for f, fs := range ms.Spaces {
		as.cellTab[f] = fs.Element.Tabulate(as.quad.R, as.quad.S)
		for e := 0; e < 3; e++ {
			for rev := 0; rev < 2; rev++ {
				R, S := EdgePoints(e, as.line.R, rev == 1)
				as.edgeTab[f][e][rev] = fs.Element.Tabulate(R, S)
			}
		}
	}
	return
}

// Assemble builds the global matrix and right hand side of form on ms
func Assemble(form *Form, ms *MixedSpace) (A utils.DOK, b []float64, err error) {
	var as *Assembler
	if as, err = NewAssembler(form, ms); err != nil {
		return
	}
	A, b = as.Assemble()
	return
}

type localSystem struct {
	dofs []int
	A    []float64
	b    []float64
}

func (ls *localSystem) reset(n int) {
	if cap(ls.A) < n*n {
		ls.A = make([]float64, n*n)
		ls.b = make([]float64, n)
	}
	ls.A, ls.b = ls.A[:n*n], ls.b[:n]
	for i := range ls.A {
		ls.A[i] = 0
	}
	for i := range ls.b {
		ls.b[i] = 0
	}
}

// workspace holds the basis Values of every sub space at one point, for one or both sides of a facet
type workspace struct {
	vals  [2][][]Value // [side][field][basis]
	zero  Value
	cdofs []int
	coef  []float64
}

func (as *Assembler) newWorkspace() (w *workspace) {
	w = &workspace{coef: make([]float64, len(as.Form.Coefficients))}
	for side := 0; side < 2; side++ {
		w.vals[side] = make([][]Value, len(as.Space.Spaces))
		for f, fs := range as.Space.Spaces {
			w.vals[side][f] = make([]Value, fs.NLocal())
		}
	}
	return
}

// tabulate fills vals with the basis functions of all sub spaces at point q of the tabulations
func (as *Assembler) tabulate(vals [][]Value, tabs func(f int) *Tabulation, q int, am geometry2D.AffineMap) {
	for f, fs := range as.Space.Spaces {
		var (
			tab     = tabs(f)
			np      = fs.Element.Np
			nc      = fs.NumComponents()
			prepare = as.Form.Prepare[f]
		)
		for j := 0; j < np; j++ {
			gx, gy := am.PhysicalGradient(tab.Dr[q][j], tab.Ds[q][j])
			for c := 0; c < nc; c++ {
				v := &vals[f][c*np+j]
				v.reset(fs.Rank)
				v.addComponent(c, tab.Phi[q][j], gx, gy)
				if prepare != nil {
					prepare(v)
				}
			}
		}
	}
}

// evalCoefficients fills p.Coef at the current point for the coefficients of one integral type
func (as *Assembler) evalCoefficients(p *Point, it IntegralType) {
	for _, i := range as.coefs[it] {
		p.Coef[i] = as.Form.Coefficients[i].Eval(p.X, p.Y)
	}
}

func (as *Assembler) Assemble() (A utils.DOK, b []float64) {
	var (
		ms = as.Space
		m  = ms.Mesh()
	)
	A = utils.NewDOK(ms.Dim(), ms.Dim())
	b = make([]float64, ms.Dim())
	if as.Form.has(CellIntegral) {
		cells := make([]int, m.K)
		for k := range cells {
			cells[k] = k
		}
		timer := utils.NewTimer(fmt.Sprintf("cell integrals over %d cells", m.K), as.Verbose)
		as.run(cells, as.cellLocal, A, b)
		timer.Stop()
	}
	var exterior, interior []int
	for fi, f := range m.Facets {
		if f.IsBoundary() {
			exterior = append(exterior, fi)
		} else {
			interior = append(interior, fi)
		}
	}
	if as.Form.has(ExteriorFacet) {
		timer := utils.NewTimer(fmt.Sprintf("exterior facet integrals over %d facets", len(exterior)), as.Verbose)
		as.run(exterior, as.exteriorLocal, A, b)
		timer.Stop()
	}
	if as.Form.has(InteriorFacet) {
		timer := utils.NewTimer(fmt.Sprintf("interior facet integrals over %d facets", len(interior)), as.Verbose)
		as.run(interior, as.interiorLocal, A, b)
		timer.Stop()
	}
	return
}

func (as *Assembler) run(items []int, local func(w *workspace, item int, ls *localSystem), A utils.DOK, b []float64) {
	if len(items) == 0 {
		return
	}
	var (
		pm    = utils.NewBatchMap(assemblyBatch, len(items))
		store = make([]localSystem, pm.GetBucketDimension(0))
		nGo   = 0
	)
	if !as.Parallel {
		nGo = 1
	}
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		start, end := pm.GetBucketRange(bn)
		parallel.Range(start, end, nGo, func(low, high int) {
			w := as.newWorkspace()
			for i := low; i < high; i++ {
				local(w, items[i], &store[i-start])
			}
		})
		for i := start; i < end; i++ {
			ls := &store[i-start]
			n := len(ls.dofs)
			for r, gr := range ls.dofs {
				b[gr] += ls.b[r]
				row := ls.A[r*n : (r+1)*n]
				for c, gc := range ls.dofs {
					if row[c] != 0 {
						A.Add(gr, gc, row[c])
					}
				}
			}
		}
	}
}

func (as *Assembler) cellLocal(w *workspace, k int, ls *localSystem) {
	var (
		m        = as.Space.Mesh()
		am       = m.CellMap(k)
		detJ     = math.Abs(am.Det)
		n        = as.nloc
		p        = Point{Cell: k, Facet: -1, H: m.CellDiameter(k), Coef: w.coef}
		bilinear = as.terms[CellIntegral]
		linear   = as.sources[CellIntegral]
		vals     = w.vals[0]
	)
	ls.reset(n)
	ls.dofs = as.Space.CellDofs(k, ls.dofs)
	for q, wq := range as.quad.W {
		wq *= detJ
		p.X, p.Y = am.ToPhysical(as.quad.R[q], as.quad.S[q])
		as.evalCoefficients(&p, CellIntegral)
		as.tabulate(vals, func(f int) *Tabulation { return &as.cellTab[f] }, q, am)
		as.accumulate(ls, n, &p, wq, vals, bilinear, linear)
	}
}

func (as *Assembler) accumulate(ls *localSystem, n int, p *Point, wq float64, vals [][]Value,
	bilinear []BilinearTerm, linear []LinearTerm) {
	for _, t := range bilinear {
		var (
			U, V       = vals[t.Trial], vals[t.Test]
			uOff, vOff = as.localOff[t.Trial], as.localOff[t.Test]
		)
		for i := range V {
			row := ls.A[(vOff+i)*n+uOff : (vOff+i)*n+uOff+len(U)]
			for j := range U {
				row[j] += wq * t.Kernel(p, &U[j], &V[i])
			}
		}
	}
	for _, t := range linear {
		var (
			V    = vals[t.Test]
			vOff = as.localOff[t.Test]
		)
		for i := range V {
			ls.b[vOff+i] += wq * t.Kernel(p, &V[i])
		}
	}
}

func (as *Assembler) exteriorLocal(w *workspace, fi int, ls *localSystem) {
	var (
		m        = as.Space.Mesh()
		facet    = m.Facets[fi]
		k, e     = facet.Cells[0], facet.LocalEdge[0]
		am       = m.CellMap(k)
		length   = m.FacetLength(fi)
		n        = as.nloc
		bilinear = as.terms[ExteriorFacet]
		linear   = as.sources[ExteriorFacet]
		vals     = w.vals[0]
		p        = Point{Cell: k, Facet: fi, Tag: facet.Tag, H: m.CellDiameter(k), Coef: w.coef}
	)
	p.N = m.FacetNormal(fi)
	p.T = [2]float64{-p.N[1], p.N[0]}
	ls.reset(n)
	ls.dofs = as.Space.CellDofs(k, ls.dofs)
	for q, wq := range as.line.W {
		wq *= length
		p.X, p.Y = m.FacetPoint(fi, as.line.R[q])
		as.evalCoefficients(&p, ExteriorFacet)
		as.tabulate(vals, func(f int) *Tabulation { return &as.edgeTab[f][e][0] }, q, am)
		as.accumulate(ls, n, &p, wq, vals, bilinear, linear)
	}
}

func (as *Assembler) interiorLocal(w *workspace, fi int, ls *localSystem) {
	var (
		m        = as.Space.Mesh()
		facet    = m.Facets[fi]
		kp, km   = facet.Cells[0], facet.Cells[1]
		ep, em   = facet.LocalEdge[0], facet.LocalEdge[1]
		amp, amm = m.CellMap(kp), m.CellMap(km)
		length   = m.FacetLength(fi)
		nl       = as.nloc
		n        = 2 * nl
		bilinear = as.terms[InteriorFacet]
		p        = Point{Cell: kp, Facet: fi, Tag: facet.Tag,
			H: 0.5 * (m.CellDiameter(kp) + m.CellDiameter(km)), Coef: w.coef}
	)
	p.N = m.FacetNormal(fi)
	p.T = [2]float64{-p.N[1], p.N[0]}
	ls.reset(n)
	ls.dofs = as.Space.CellDofs(kp, ls.dofs)
	w.cdofs = as.Space.CellDofs(km, w.cdofs)
	ls.dofs = append(ls.dofs, w.cdofs...)
	for q, wq := range as.line.W {
		wq *= length
		p.X, p.Y = m.FacetPoint(fi, as.line.R[q])
		as.evalCoefficients(&p, InteriorFacet)
		as.tabulate(w.vals[0], func(f int) *Tabulation { return &as.edgeTab[f][ep][0] }, q, amp)
		as.tabulate(w.vals[1], func(f int) *Tabulation { return &as.edgeTab[f][em][1] }, q, amm)
		for _, t := range bilinear {
			uOff, vOff := as.localOff[t.Trial], as.localOff[t.Test]
			for vs := 0; vs < 2; vs++ {
				V := w.vals[vs][t.Test]
				for i := range V {
					vPlus, vMinus := as.sides(w, vs, &V[i])
					row := (vs*nl + vOff + i) * n
					for us := 0; us < 2; us++ {
						U := w.vals[us][t.Trial]
						for j := range U {
							uPlus, uMinus := as.sides(w, us, &U[j])
							ls.A[row+us*nl+uOff+j] += wq * t.Jump(&p, uPlus, uMinus, vPlus, vMinus)
						}
					}
				}
			}
		}
	}
}

func (as *Assembler) sides(w *workspace, side int, v *Value) (plus, minus *Value) {
	if side == 0 {
		return v, &w.zero
	}
	return &w.zero, v
}
