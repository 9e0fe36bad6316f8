package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/types"
	"github.com/notargets/gor13/utils"
)

type ElementParameters struct {
	Shape  string `json:"shape"`
	Degree int    `json:"degree"`
}

type CIPParameters struct {
	Enable bool    `json:"enable"`
	Delta1 float64 `json:"delta_1"`
	Delta2 float64 `json:"delta_2"`
	Delta3 float64 `json:"delta_3"`
}

type Stabilization struct {
	CIP CIPParameters `json:"cip"`
}

// BoundaryCondition holds the wall temperature and tangential wall velocity of one boundary tag
type BoundaryCondition struct {
	ThetaW float64 `json:"theta_w"`
	VT     float64 `json:"v_t"`
}

type ConvergenceStudy struct {
	Enable            bool   `json:"enable"`
	ExactSolution     string `json:"exact_solution"`
	WriteSystemMatrix bool   `json:"write_systemmatrix"`
	RescalePressure   bool   `json:"rescale_pressure"`
}

type Postprocessing struct {
	WriteFields *bool `json:"write_fields"` // Defaults to true
}

type SolverParameters struct {
	Name          string  `json:"name"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
	Restart       int     `json:"restart"`
}

// Parameters obtained from the YAML input file
type R13Parameters struct {
	CaseName         string                       `json:"case_name"`
	Output           string                       `json:"output_folder"`
	Meshes           []string                     `json:"meshes"`
	Mode             string                       `json:"mode"`
	Elements         map[string]ElementParameters `json:"elements"`
	Stabilization    Stabilization                `json:"stabilization"`
	Tau              float64                      `json:"tau"`
	XiTilde          float64                      `json:"xi_tilde"`
	UseCoeffs        bool                         `json:"use_coeffs"`
	HeatSource       string                       `json:"heat_source"`
	MassSource       string                       `json:"mass_source"`
	BCs              map[int]BoundaryCondition    `json:"bcs"`
	ConvergenceStudy ConvergenceStudy             `json:"convergence_study"`
	Postprocessing   Postprocessing               `json:"postprocessing"`
	Solver           SolverParameters             `json:"solver"`
	Parallel         bool                         `json:"parallel"`
}

func ReadFile(filename string) (ip *R13Parameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	ip = &R13Parameters{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
		return
	}
	// Relative mesh and exact solution paths are relative to the input file
	dir := filepath.Dir(filename)
	for i, m := range ip.Meshes {
		if !filepath.IsAbs(m) {
			ip.Meshes[i] = filepath.Join(dir, m)
		}
	}
	if es := ip.ConvergenceStudy.ExactSolution; es != "" && !filepath.IsAbs(es) {
		ip.ConvergenceStudy.ExactSolution = filepath.Join(dir, es)
	}
	return
}

// Parse reads the YAML input, fills defaults and validates the result
func (ip *R13Parameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *R13Parameters) setDefaults() {
	if ip.HeatSource == "" {
		ip.HeatSource = "0"
	}
	if ip.MassSource == "" {
		ip.MassSource = "0"
	}
	if ip.Solver.Name == "" {
		ip.Solver.Name = "direct"
	}
	for name, el := range ip.Elements {
		if el.Shape == "" {
			el.Shape = "Lagrange"
			ip.Elements[name] = el
		}
	}
}

func (ip *R13Parameters) Validate() (err error) {
	var (
		mode types.Mode
	)
	if mode, err = types.ParseMode(ip.Mode); err != nil {
		return
	}
	if ip.Tau <= 0 {
		return fmt.Errorf("tau must be positive, have %g", ip.Tau)
	}
	if ip.XiTilde <= 0 {
		return fmt.Errorf("xi_tilde must be positive, have %g", ip.XiTilde)
	}
	if mode.HasStress() && !ip.UseCoeffs {
		return fmt.Errorf("mode %s is only formulated with use_coeffs: true", mode)
	}
	for _, f := range mode.Fields() {
		el, ok := ip.Elements[f.String()]
		if !ok {
			return fmt.Errorf("no element given for field %s", f)
		}
		switch strings.ToLower(el.Shape) {
		case "lagrange", "cg", "p":
		default:
			return fmt.Errorf("field %s: unsupported element shape %q, only Lagrange is available", f, el.Shape)
		}
		if el.Degree < 1 || el.Degree > CG2D.MaxDegree {
			return fmt.Errorf("field %s: element degree %d out of range [1,%d]", f, el.Degree, CG2D.MaxDegree)
		}
	}
	cip := ip.Stabilization.CIP
	if cip.Delta1 < 0 || cip.Delta2 < 0 || cip.Delta3 < 0 {
		return fmt.Errorf("cip parameters must be non negative, have %g %g %g", cip.Delta1, cip.Delta2, cip.Delta3)
	}
	if ip.ConvergenceStudy.Enable && ip.ConvergenceStudy.ExactSolution == "" {
		return fmt.Errorf("convergence study needs an exact_solution file")
	}
	if _, err = ip.NewLinearSolver(); err != nil {
		return
	}
	if ip.CaseName == "" && ip.Output == "" {
		return fmt.Errorf("one of case_name or output_folder is required")
	}
	return
}

func (ip *R13Parameters) ModeType() types.Mode {
	mode, err := types.ParseMode(ip.Mode)
	if err != nil {
		panic(err)
	}
	return mode
}

func (ip *R13Parameters) Degree(f types.Field) int {
	return ip.Elements[f.String()].Degree
}

func (ip *R13Parameters) NewLinearSolver() (utils.LinearSolver, error) {
	return utils.NewLinearSolver(ip.Solver.Name, ip.Solver.Tolerance, ip.Solver.MaxIterations, ip.Solver.Restart)
}

// OutputFolder is where solution files are written, output_folder if given, otherwise the case name
func (ip *R13Parameters) OutputFolder() string {
	if ip.Output != "" {
		return ip.Output
	}
	return ip.CaseName
}

func (ip *R13Parameters) WriteFields() bool {
	return ip.Postprocessing.WriteFields == nil || *ip.Postprocessing.WriteFields
}

// Constants are the named parameters visible in source and exact solution expressions
func (ip *R13Parameters) Constants() map[string]float64 {
	return map[string]float64{
		"tau":      ip.Tau,
		"xi_tilde": ip.XiTilde,
	}
}

// BoundaryTags returns the tags with boundary conditions in ascending order
func (ip *R13Parameters) BoundaryTags() (tags []int) {
	for tag := range ip.BCs {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return
}

func (ip *R13Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Case Name\n", ip.CaseName)
	fmt.Printf("[%s]\t\t\t= Mode\n", ip.Mode)
	fmt.Printf("%8.5f\t\t= Tau\n", ip.Tau)
	fmt.Printf("%8.5f\t\t= Xi Tilde\n", ip.XiTilde)
	fmt.Printf("[%v]\t\t\t= Use Coefficients\n", ip.UseCoeffs)
	for _, f := range ip.ModeType().Fields() {
		el := ip.Elements[f.String()]
		fmt.Printf("[%s P%d]\t\t= Element %s\n", el.Shape, el.Degree, f)
	}
	cip := ip.Stabilization.CIP
	fmt.Printf("[%v] %g %g %g\t= CIP Stabilization, delta 1,2,3\n", cip.Enable, cip.Delta1, cip.Delta2, cip.Delta3)
	fmt.Printf("\"%s\"\t\t= Heat Source\n", ip.HeatSource)
	fmt.Printf("\"%s\"\t\t= Mass Source\n", ip.MassSource)
	for _, tag := range ip.BoundaryTags() {
		bc := ip.BCs[tag]
		fmt.Printf("BCs[%d] = theta_w: %g, v_t: %g\n", tag, bc.ThetaW, bc.VT)
	}
	fmt.Printf("[%s]\t\t\t= Linear Solver\n", ip.Solver.Name)
	fmt.Printf("%d\t\t\t\t= Meshes\n", len(ip.Meshes))
}
