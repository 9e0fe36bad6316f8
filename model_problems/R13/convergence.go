package R13

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/notargets/gor13/InputParameters"
	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/readfiles"
	"github.com/notargets/gor13/types"
	"github.com/notargets/gor13/utils"
	"github.com/notargets/gor13/writefiles"
)

// ConvergenceStudy collects the errors of one case solved on a sequence of refined meshes
type ConvergenceStudy struct {
	Mode   types.Mode
	H      []float64
	Errors []Errors
}

func NewConvergenceStudy(mode types.Mode) *ConvergenceStudy {
	return &ConvergenceStudy{Mode: mode}
}

func (cs *ConvergenceStudy) Add(h float64, e Errors) {
	cs.H = append(cs.H, h)
	cs.Errors = append(cs.Errors, e)
}

// Header names the columns of the error table: h, then name_L2 and name_linf per component
func (cs *ConvergenceStudy) Header() (header []string) {
	header = []string{"h"}
	for _, f := range cs.Mode.Fields() {
		for _, name := range ComponentNames(f) {
			header = append(header, name+"_L2", name+"_linf")
		}
	}
	return
}

func (cs *ConvergenceStudy) Rows() (rows [][]float64) {
	for i, e := range cs.Errors {
		row := []float64{cs.H[i]}
		for _, f := range cs.Mode.Fields() {
			for comp := range ComponentNames(f) {
				var l2, linf float64
				if comp < len(e.L2[f]) {
					l2, linf = e.L2[f][comp], e.Linf[f][comp]
				}
				row = append(row, l2, linf)
			}
		}
		rows = append(rows, row)
	}
	return
}

func (cs *ConvergenceStudy) WriteCSV(w io.Writer) error {
	return writefiles.WriteCSV(w, cs.Header(), cs.Rows())
}

// EOC is the experimental order of convergence between consecutive entries, log(e_i/e_i+1)/log(h_i/h_i+1)
func EOC(h, e []float64) (orders []float64) {
	if len(h) != len(e) {
		panic(fmt.Errorf("have %d mesh sizes and %d errors", len(h), len(e)))
	}
	for i := 0; i+1 < len(h); i++ {
		orders = append(orders, math.Log(e[i]/e[i+1])/math.Log(h[i]/h[i+1]))
	}
	return
}

// Orders returns the EOC of every error column of a table whose first column is h
func Orders(rows [][]float64) (orders [][]float64) {
	if len(rows) < 2 {
		return
	}
	var (
		ncol = len(rows[0])
		h    = make([]float64, len(rows))
	)
	for i, row := range rows {
		h[i] = row[0]
	}
	orders = make([][]float64, len(rows)-1)
	for i := range orders {
		orders[i] = make([]float64, ncol-1)
	}
	col := make([]float64, len(rows))
	for j := 1; j < ncol; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		for i, o := range EOC(h, col) {
			orders[i][j-1] = o
		}
	}
	return
}

func (cs *ConvergenceStudy) Orders() [][]float64 {
	return Orders(cs.Rows())
}

// PrintOrders prints a table of EOC values with the same columns as the error table, less h
func PrintOrders(header []string, orders [][]float64) {
	for _, name := range header[1:] {
		fmt.Printf("%14s", name)
	}
	fmt.Printf("\n")
	for _, row := range orders {
		for _, o := range row {
			fmt.Printf("%14.4f", o)
		}
		fmt.Printf("\n")
	}
}

/*
RunCase solves the case on every mesh of the input, or on the given meshes if any.
With the convergence study enabled the errors of each mesh are collected and
written to errors.csv in the output folder.
*/
func RunCase(ip *InputParameters.R13Parameters, meshes []*geometry2D.Mesh, verbose bool) (cs *ConvergenceStudy, err error) {
	var (
		m *geometry2D.Mesh
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if len(meshes) == 0 && len(ip.Meshes) == 0 {
		return nil, fmt.Errorf("no meshes to solve on")
	}
	cs = NewConvergenceStudy(ip.ModeType())
	nMesh := len(meshes)
	if nMesh == 0 {
		nMesh = len(ip.Meshes)
	}
	for i := 0; i < nMesh; i++ {
		if len(meshes) != 0 {
			m = meshes[i]
		} else if m, err = readfiles.ReadMesh(ip.Meshes[i]); err != nil {
			return
		}
		if verbose {
			fmt.Printf("Mesh %d of %d\n", i+1, nMesh)
		}
		var c *Solver
		if c, err = NewSolver(ip, m, i); err != nil {
			return
		}
		c.Verbose = verbose
		if err = solveOne(c); err != nil {
			err = fmt.Errorf("mesh %d: %w", i, err)
			return
		}
		if ip.ConvergenceStudy.Enable {
			cs.Add(m.HMax(), c.Errors)
			if verbose {
				c.Errors.Print(c.Mode)
			}
		}
		if verbose {
			fmt.Printf("%s\n", utils.GetMemUsage())
		}
	}
	if ip.ConvergenceStudy.Enable {
		if err = cs.writeErrors(ip.OutputFolder()); err != nil {
			return
		}
		if verbose && len(cs.H) > 1 {
			PrintOrders(cs.Header(), cs.Orders())
		}
	}
	return
}

func solveOne(c *Solver) (err error) {
	ip := c.Params
	if err = c.SetupFunctionSpaces(); err != nil {
		return
	}
	if err = c.Assemble(); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	if ip.WriteFields() {
		if err = c.WriteSolutions(); err != nil {
			return
		}
		if err = c.WriteParameters(); err != nil {
			return
		}
	}
	if ip.ConvergenceStudy.Enable {
		if err = c.LoadExactSolution(); err != nil {
			return
		}
		if err = c.CalcErrors(); err != nil {
			return
		}
		if ip.ConvergenceStudy.WriteSystemMatrix {
			if err = c.WriteSystemMatrix(); err != nil {
				return
			}
		}
	}
	return
}

func (cs *ConvergenceStudy) writeErrors(folder string) (err error) {
	var (
		file *os.File
	)
	if err = os.MkdirAll(folder, 0755); err != nil {
		return
	}
	if file, err = os.Create(filepath.Join(folder, "errors.csv")); err != nil {
		return
	}
	if err = cs.WriteCSV(file); err != nil {
		_ = file.Close()
		return
	}
	return file.Close()
}
