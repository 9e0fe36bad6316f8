package R13

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/InputParameters"
	"github.com/notargets/gor13/expression"
	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/types"
	"github.com/notargets/gor13/utils"
	"github.com/notargets/gor13/writefiles"
)

/*
Solver runs the R13 workflow on one mesh:
	SetupFunctionSpaces -> Assemble -> Solve -> LoadExactSolution -> CalcErrors
and writes the fields. Time labels the output files, within a convergence study it
is the index of the mesh.
*/
type Solver struct {
	Params       *InputParameters.R13Parameters
	Mesh         *geometry2D.Mesh
	Mode         types.Mode
	Time         int
	Verbose      bool
	OutputFolder string
	LinearSolver utils.LinearSolver

	Spaces map[types.Field]*CG2D.FunctionSpace
	Mixed  *CG2D.MixedSpace
	Form   *CG2D.Form
	A      utils.DOK
	B      []float64
	Sol    map[types.Field]*CG2D.Function
	Exact  *expression.ExactSolution
	Errors Errors

	heatSource, massSource *expression.Expression
}

func NewSolver(ip *InputParameters.R13Parameters, m *geometry2D.Mesh, time int) (c *Solver, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	c = &Solver{
		Params:       ip,
		Mesh:         m,
		Mode:         ip.ModeType(),
		Time:         time,
		OutputFolder: ip.OutputFolder(),
		Sol:          make(map[types.Field]*CG2D.Function),
		Errors:       NewErrors(),
	}
	if c.LinearSolver, err = ip.NewLinearSolver(); err != nil {
		return
	}
	if c.heatSource, err = compileSource("heat_source", ip.HeatSource, ip.Constants(), m); err != nil {
		return
	}
	if c.massSource, err = compileSource("mass_source", ip.MassSource, ip.Constants(), m); err != nil {
		return
	}
	return
}

// compileSource also evaluates the expression once so that assembly kernels cannot fail on it
func compileSource(name, src string, consts map[string]float64, m *geometry2D.Mesh) (e *expression.Expression, err error) {
	if e, err = expression.New(src, consts); err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		return
	}
	if m.Nv > 0 {
		if _, err = e.Eval(m.VX[0], m.VY[0]); err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
	}
	return
}

func (c *Solver) SetupFunctionSpaces() (err error) {
	var (
		spaces []*CG2D.FunctionSpace
		fs     *CG2D.FunctionSpace
	)
	c.Spaces = make(map[types.Field]*CG2D.FunctionSpace)
	for _, f := range c.Mode.Fields() {
		if fs, err = CG2D.NewFunctionSpace(f.String(), c.Mesh, c.Params.Degree(f), f.Rank()); err != nil {
			return
		}
		c.Spaces[f] = fs
		spaces = append(spaces, fs)
	}
	if c.Mixed, err = CG2D.NewMixedSpace(spaces...); err != nil {
		return
	}
	if c.Verbose {
		fmt.Printf("Mode %s, %d cells, %d vertices, h_max = %8.5f\n", c.Mode, c.Mesh.K, c.Mesh.Nv, c.Mesh.HMax())
		for _, fs := range spaces {
			fmt.Printf("\t%-6s P%d, %d dofs\n", fs.Name, fs.Element.Degree, fs.Dim())
		}
		fmt.Printf("\ttotal  %d dofs\n", c.Mixed.Dim())
	}
	return
}

// CheckBCs requires a boundary condition for every tagged boundary, untagged facets (tag 0) are allowed
func (c *Solver) CheckBCs() (err error) {
	for _, tag := range c.Mesh.BoundaryTags() {
		if tag == 0 {
			continue
		}
		if _, ok := c.Params.BCs[tag]; !ok {
			return fmt.Errorf("mesh edge id %d has no bcs", tag)
		}
	}
	return
}

func (c *Solver) Assemble() (err error) {
	var (
		as *CG2D.Assembler
	)
	if err = c.CheckBCs(); err != nil {
		return
	}
	if c.Mixed == nil {
		if err = c.SetupFunctionSpaces(); err != nil {
			return
		}
	}
	fb := &formBuilder{
		ip:         c.Params,
		ms:         c.Mixed,
		heatSource: c.heatSource,
		massSource: c.massSource,
	}
	c.Form = fb.build(c.Mode)
	if as, err = CG2D.NewAssembler(c.Form, c.Mixed); err != nil {
		return
	}
	as.Parallel = c.Params.Parallel
	as.Verbose = c.Verbose
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assembly failed: %v", r)
		}
	}()
	c.A, c.B = as.Assemble()
	return
}

/*
Solve solves the assembled system. Pressure is determined up to a constant, the
first pressure dof is pinned and the solution is shifted to zero mean of its dof
values afterwards.
*/
func (c *Solver) Solve() (err error) {
	if len(c.B) == 0 {
		return fmt.Errorf("system has not been assembled")
	}
	var (
		A  = c.A.ToCSR()
		b  = make([]float64, len(c.B))
		mf = CG2D.NewMixedFunction(c.Mixed)
		x  []float64
	)
	copy(b, c.B)
	if c.Mode.HasStress() {
		pi := c.Mixed.GlobalIndex(c.Mixed.Index(types.P.String()), 0, 0)
		A = A.PinRow(pi)
		b[pi] = 0
	}
	timer := utils.NewTimer(fmt.Sprintf("solve %d unknowns, %d nonzeros, %s",
		A.N, A.NNZ(), c.LinearSolver.Name()), c.Verbose)
	if x, err = c.LinearSolver.Solve(A, b); err != nil {
		return
	}
	timer.Stop()
	if utils.IsNan(x) {
		return fmt.Errorf("solution contains NaN values")
	}
	copy(mf.Coeffs, x)
	for i, f := range mf.Split() {
		c.Sol[c.Mode.Fields()[i]] = f
	}
	if c.Mode.HasStress() {
		p := c.Sol[types.P]
		p.AddConstant(0, -p.Mean(0))
	}
	return
}

func (c *Solver) LoadExactSolution() (err error) {
	var es *expression.ExactSolution
	if es, err = expression.LoadExactSolution(c.Params.ConvergenceStudy.ExactSolution, c.Params.Constants()); err != nil {
		return
	}
	if missing := es.Missing(c.Mode.Fields()); len(missing) != 0 {
		return fmt.Errorf("exact solution has no expression for %v", missing)
	}
	c.Exact = es
	return
}

/*
CalcErrors compares the discrete solution with the exact solution. Scalar fields
get the L2 error against the exact expression and the largest dof difference to its
interpolant; vector and tensor fields get per component L2 and vertex errors of the
interpolant. The interpolated exact solution and the difference are written as fields.
*/
func (c *Solver) CalcErrors() (err error) {
	if c.Exact == nil {
		return fmt.Errorf("no exact solution loaded")
	}
	for _, f := range c.Mode.Fields() {
		var (
			sol     = c.Sol[f]
			exactFn func(x, y float64) []float64
		)
		if sol == nil {
			return fmt.Errorf("field %s has not been solved for", f)
		}
		if exactFn, err = c.Exact.Func(f); err != nil {
			return
		}
		fe := CG2D.NewFunction(sol.Space)
		if err = fe.Interpolate(exactFn); err != nil {
			return
		}
		if f == types.P && c.Params.ConvergenceStudy.RescalePressure {
			sol.AddConstant(0, fe.Mean(0)-sol.Mean(0))
		}
		nc := sol.Space.NumComponents()
		l2, linf := make([]float64, nc), make([]float64, nc)
		for comp := 0; comp < nc; comp++ {
			if f.Rank() == 0 {
				l2[comp] = CG2D.ErrorNormL2(sol, exactFn, comp)
				linf[comp] = CG2D.LinfDofs(fe, sol, comp)
			} else {
				l2[comp] = CG2D.InterpolantErrorL2(fe, sol, comp)
				linf[comp] = CG2D.LinfVertices(fe, sol, comp)
			}
		}
		c.Errors.L2[f], c.Errors.Linf[f] = l2, linf
		if c.Verbose {
			fmt.Printf("%s: L_2 error: %v, l_inf error: %v\n", f, l2, linf)
		}
		if c.Params.WriteFields() {
			if err = c.writeXDMF("difference_"+f.String(), fe.Subtract(sol)); err != nil {
				return
			}
			if err = c.writeXDMF(f.String()+"_e", fe); err != nil {
				return
			}
		}
	}
	return
}

func (c *Solver) filename(name, ext string) string {
	return filepath.Join(c.OutputFolder, fmt.Sprintf("%s_%d.%s", name, c.Time, ext))
}

func (c *Solver) writeXDMF(name string, f *CG2D.Function) error {
	return writefiles.WriteXDMFFile(c.filename(name, "xdmf"), name, c.Mesh, float64(c.Time),
		writefiles.NewAttribute(name, f))
}

func (c *Solver) WriteSolutions() (err error) {
	for _, f := range c.Mode.Fields() {
		if sol := c.Sol[f]; sol != nil {
			if err = c.writeXDMF(f.String(), sol); err != nil {
				return
			}
		}
	}
	return
}

// WriteParameters writes the heat and mass sources interpolated onto piecewise linears
func (c *Solver) WriteParameters() (err error) {
	var (
		fs *CG2D.FunctionSpace
	)
	if fs, err = CG2D.NewFunctionSpace("source", c.Mesh, 1, 0); err != nil {
		return
	}
	for _, src := range []struct {
		name string
		e    *expression.Expression
	}{{"f_heat", c.heatSource}, {"f_mass", c.massSource}} {
		f := CG2D.NewFunction(fs)
		if err = f.Interpolate(src.e.Func()); err != nil {
			return
		}
		if err = c.writeXDMF(src.name, f); err != nil {
			return
		}
	}
	return
}

// WriteSystemMatrix writes the assembled matrix densely, e.g. for condition number studies
func (c *Solver) WriteSystemMatrix() (err error) {
	var (
		file *os.File
	)
	if err = os.MkdirAll(c.OutputFolder, 0755); err != nil {
		return
	}
	if file, err = os.Create(c.filename("A", "txt")); err != nil {
		return
	}
	if err = writefiles.WriteMatrix(file, c.A.ToCSR()); err != nil {
		_ = file.Close()
		return
	}
	return file.Close()
}
