package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gor13/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputYAML = `
case_name: heat_ring
meshes:
  - ring0.msh
  - /abs/ring1.msh
mode: heat
elements:
  theta:
    shape: Lagrange
    degree: 1
  s:
    degree: 2
stabilization:
  cip:
    enable: true
    delta_1: 1.0
    delta_2: 1.0
    delta_3: 0.01
tau: 0.1
xi_tilde: 1.0
use_coeffs: true
heat_source: "2 - pow(x[0],2) - pow(x[1],2)"
bcs:
  3000:
    theta_w: 1.0
  3100:
    theta_w: 0.5
    v_t: 0.25
convergence_study:
  enable: true
  exact_solution: exact.yml
  write_systemmatrix: false
solver:
  name: gmres
  tolerance: 1.e-12
`

func TestParse(t *testing.T) {
	{
		var ip R13Parameters
		require.NoError(t, ip.Parse([]byte(inputYAML)))
		assert.Equal(t, types.Heat, ip.ModeType())
		assert.Equal(t, "heat_ring", ip.OutputFolder())
		assert.Equal(t, 1, ip.Degree(types.Theta))
		assert.Equal(t, 2, ip.Degree(types.S))
		assert.Equal(t, "Lagrange", ip.Elements["s"].Shape)
		assert.Equal(t, 0.01, ip.Stabilization.CIP.Delta3)
		assert.True(t, ip.Stabilization.CIP.Enable)
		assert.Equal(t, []int{3000, 3100}, ip.BoundaryTags())
		assert.Equal(t, BoundaryCondition{ThetaW: 0.5, VT: 0.25}, ip.BCs[3100])
		assert.Equal(t, "0", ip.MassSource)
		assert.True(t, ip.WriteFields())
		no := false
		ip.Postprocessing.WriteFields = &no
		assert.False(t, ip.WriteFields())
		assert.Equal(t, map[string]float64{"tau": 0.1, "xi_tilde": 1}, ip.Constants())
		ls, err := ip.NewLinearSolver()
		require.NoError(t, err)
		assert.Contains(t, ls.Name(), "GMRES")
		ip.Output = "out"
		assert.Equal(t, "out", ip.OutputFolder())
	}
	{ // Paths are taken relative to the input file
		dir := t.TempDir()
		fn := filepath.Join(dir, "input.yml")
		require.NoError(t, os.WriteFile(fn, []byte(inputYAML), 0644))
		ip, err := ReadFile(fn)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "ring0.msh"), "/abs/ring1.msh"}, ip.Meshes)
		assert.Equal(t, filepath.Join(dir, "exact.yml"), ip.ConvergenceStudy.ExactSolution)
		_, err = ReadFile(filepath.Join(dir, "nothere.yml"))
		assert.Error(t, err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *R13Parameters {
		var ip R13Parameters
		require.NoError(t, ip.Parse([]byte(inputYAML)))
		return &ip
	}
	{
		ip := valid()
		ip.Mode = "plasma"
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.Tau = 0
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.XiTilde = -1
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.Mode = "stress"
		// p, u and sigma have no elements
		assert.Error(t, ip.Validate())
		ip.Elements["p"] = ElementParameters{Shape: "Lagrange", Degree: 1}
		ip.Elements["u"] = ElementParameters{Shape: "Lagrange", Degree: 2}
		ip.Elements["sigma"] = ElementParameters{Shape: "Lagrange", Degree: 2}
		assert.NoError(t, ip.Validate())
		ip.UseCoeffs = false
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.Elements["theta"] = ElementParameters{Shape: "DG", Degree: 1}
		assert.Error(t, ip.Validate())
		ip.Elements["theta"] = ElementParameters{Shape: "Lagrange", Degree: 9}
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.Stabilization.CIP.Delta1 = -1
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.ConvergenceStudy.ExactSolution = ""
		assert.Error(t, ip.Validate())
	}
	{
		ip := valid()
		ip.Solver.Name = "cholesky"
		assert.Error(t, ip.Validate())
	}
	{
		var ip R13Parameters
		assert.Error(t, ip.Parse([]byte("mode: [heat")))
	}
}
