package R13

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/InputParameters"
	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/types"
	"github.com/notargets/gor13/writefiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	inner, outer = 3000, 3100
	r1, r2       = 0.5, 2.0
)

func ring(t *testing.T, nr, nt int) *geometry2D.Mesh {
	m, err := geometry2D.NewRingMesh(r1, r2, nr, nt, inner, outer)
	require.NoError(t, err)
	return m
}

func heatParams(dir string) *InputParameters.R13Parameters {
	no := false
	return &InputParameters.R13Parameters{
		CaseName: "heat",
		Output:   dir,
		Mode:     "heat",
		Elements: map[string]InputParameters.ElementParameters{
			"theta": {Shape: "Lagrange", Degree: 1},
			"s":     {Shape: "Lagrange", Degree: 2},
			"p":     {Shape: "Lagrange", Degree: 1},
			"u":     {Shape: "Lagrange", Degree: 1},
			"sigma": {Shape: "Lagrange", Degree: 1},
		},
		Stabilization: InputParameters.Stabilization{
			CIP: InputParameters.CIPParameters{Enable: true, Delta1: 1, Delta2: 1, Delta3: 0.01},
		},
		Tau:        1,
		XiTilde:    1,
		UseCoeffs:  true,
		HeatSource: "0",
		MassSource: "0",
		BCs: map[int]InputParameters.BoundaryCondition{
			inner: {ThetaW: 1},
			outer: {ThetaW: 0.5},
		},
		Postprocessing: InputParameters.Postprocessing{WriteFields: &no},
		Solver:         InputParameters.SolverParameters{Name: "direct"},
		Parallel:       true,
	}
}

func solve(t *testing.T, ip *InputParameters.R13Parameters, m *geometry2D.Mesh) *Solver {
	c, err := NewSolver(ip, m, 0)
	require.NoError(t, err)
	require.NoError(t, c.SetupFunctionSpaces())
	require.NoError(t, c.Assemble())
	require.NoError(t, c.Solve())
	return c
}

func TestSolverSetup(t *testing.T) {
	m := ring(t, 2, 12)
	{
		ip := heatParams(t.TempDir())
		delete(ip.BCs, outer)
		c, err := NewSolver(ip, m, 0)
		require.NoError(t, err)
		err = c.CheckBCs()
		require.Error(t, err)
		assert.Equal(t, "mesh edge id 3100 has no bcs", err.Error())
		assert.Error(t, c.Assemble())
	}
	{
		ip := heatParams(t.TempDir())
		ip.HeatSource = "x + kappa"
		_, err := NewSolver(ip, m, 0)
		assert.Error(t, err)
		ip.HeatSource = "pow(x)"
		_, err = NewSolver(ip, m, 0)
		assert.Error(t, err)
	}
	{
		ip := heatParams(t.TempDir())
		ip.Mode = "coupled"
		c, err := NewSolver(ip, m, 0)
		require.NoError(t, err)
		require.NoError(t, c.SetupFunctionSpaces())
		assert.Equal(t, 5, len(c.Mixed.Spaces))
		assert.Equal(t, []string{"theta", "s", "p", "u", "sigma"}, []string{
			c.Mixed.Spaces[0].Name, c.Mixed.Spaces[1].Name, c.Mixed.Spaces[2].Name,
			c.Mixed.Spaces[3].Name, c.Mixed.Spaces[4].Name})
		assert.Equal(t, 3, c.Spaces[types.Sigma].NumComponents())
		assert.Error(t, c.Solve())
		assert.Error(t, c.CalcErrors())
	}
}

func TestHeatConstantTemperature(t *testing.T) {
	// Equal wall temperatures without a source give a constant temperature and no heat flux
	var (
		m  = ring(t, 2, 12)
		ip = heatParams(t.TempDir())
	)
	ip.BCs[inner] = InputParameters.BoundaryCondition{ThetaW: 0.7}
	ip.BCs[outer] = InputParameters.BoundaryCondition{ThetaW: 0.7}
	for _, name := range []string{"direct", "lu"} {
		ip.Solver.Name = name
		c := solve(t, ip, m)
		theta, s := c.Sol[types.Theta], c.Sol[types.S]
		for _, v := range theta.Coeffs {
			assert.InDelta(t, 0.7, v, 1.e-10)
		}
		assert.InDelta(t, 0., s.MaxAbs(0)+s.MaxAbs(1), 1.e-10)
	}
}

func TestHeatSystem(t *testing.T) {
	var (
		m  = ring(t, 3, 24)
		ip = heatParams(t.TempDir())
	)
	{ // Without coefficients the heat system is symmetric
		ip.UseCoeffs = false
		c, err := NewSolver(ip, m, 0)
		require.NoError(t, err)
		require.NoError(t, c.Assemble())
		assert.True(t, c.A.ToCSR().IsSymmetric(1.e-12))
		ip.UseCoeffs = true
		require.NoError(t, c.Assemble())
		assert.False(t, c.A.ToCSR().IsSymmetric(1.e-12))
	}
	{
		c := solve(t, ip, m)
		s := c.Sol[types.S]
		// Without a source the net flux through the domain vanishes
		div := CG2D.Integrate(m, 4, func(k int, x, y, r, ss float64) float64 {
			val := s.Eval(k, r, ss)
			d, _ := val.Div()
			return d
		})
		assert.InDelta(t, 0., div, 1.e-10)
		// Heat flows outward from the hot inner wall
		radial := CG2D.Integrate(m, 4, func(k int, x, y, r, ss float64) float64 {
			val := s.Eval(k, r, ss)
			return (val.V[0]*x + val.V[1]*y) / math.Hypot(x, y)
		})
		assert.Greater(t, radial, 0.)
		theta := c.Sol[types.Theta]
		assert.Greater(t, theta.Coeffs[0], theta.Coeffs[m.Nv-1])
	}
	{ // Serial assembly gives the same solution
		ip.Parallel = false
		cs := solve(t, ip, m)
		ip.Parallel = true
		cp := solve(t, ip, m)
		assert.InDeltaSlice(t, cp.Sol[types.Theta].Coeffs, cs.Sol[types.Theta].Coeffs, 1.e-12)
	}
}

func TestStressAndCoupled(t *testing.T) {
	var (
		m  = ring(t, 2, 16)
		ip = heatParams(t.TempDir())
	)
	ip.BCs[outer] = InputParameters.BoundaryCondition{ThetaW: 0.5, VT: 1}
	ip.MassSource = "0"
	ip.HeatSource = "2 - pow(x[0],2) - pow(x[1],2)"
	ip.Mode = "stress"
	st := solve(t, ip, m)
	p, u := st.Sol[types.P], st.Sol[types.U]
	assert.InDelta(t, 0., p.Mean(0), 1.e-12)
	assert.Greater(t, u.MaxAbs(0)+u.MaxAbs(1), 1.e-3)
	{
		ip.BCs[outer] = InputParameters.BoundaryCondition{ThetaW: 0.5}
		zero := solve(t, ip, m)
		ip.BCs[outer] = InputParameters.BoundaryCondition{ThetaW: 0.5, VT: 1}
		for _, f := range []types.Field{types.P, types.U, types.Sigma} {
			sol := zero.Sol[f]
			for comp := 0; comp < sol.Space.NumComponents(); comp++ {
				assert.InDelta(t, 0., sol.MaxAbs(comp), 1.e-10)
			}
		}
	}
	ip.Mode = "heat"
	ht := solve(t, ip, m)
	ip.Mode = "coupled"
	cp := solve(t, ip, m)
	// The linearized systems decouple
	for _, f := range []types.Field{types.Theta, types.S} {
		assert.InDeltaSlice(t, ht.Sol[f].Coeffs, cp.Sol[f].Coeffs, 1.e-9)
	}
	for _, f := range []types.Field{types.P, types.U, types.Sigma} {
		assert.InDeltaSlice(t, st.Sol[f].Coeffs, cp.Sol[f].Coeffs, 1.e-9)
	}
}

/*
radialHeatConstants fixes A and B of the rotationally symmetric solution with source
f = 2 - R^2:
	s     = (R - R^3/4 + A/R) e_R
	theta = -16/25 tau R^2 - 2R^2/(15 tau) + R^4/(60 tau) - 4A/(15 tau) ln R + B
from the normal wall condition 12/5 tau dev(grad s)_nn + 5/(4 xi) s_n = 5/2 (theta - theta_w)
*/
func radialHeatConstants(tau, xi, thetaInner, thetaOuter float64) (A, B float64) {
	var (
		P = func(R float64) float64 {
			return -16./25.*tau*R*R - 2*R*R/(15*tau) + math.Pow(R, 4)/(60*tau)
		}
		row = func(R, sign, thetaW float64) (a, b, rhs float64) {
			a = -12./5.*tau/(R*R) + sign*5/(4*xi*R) + 2/(3*tau)*math.Log(R)
			b = -5. / 2.
			rhs = 5./2.*(P(R)-thetaW) - 12./5.*tau*(1-3*R*R/4-(2-R*R)/3) - sign*5/(4*xi)*(R-R*R*R/4)
			return
		}
		a1, b1, c1 = row(r1, -1, thetaInner)
		a2, b2, c2 = row(r2, 1, thetaOuter)
		det        = a1*b2 - a2*b1
	)
	A = (c1*b2 - c2*b1) / det
	B = (a1*c2 - a2*c1) / det
	return
}

func TestHeatConvergence(t *testing.T) {
	var (
		dir  = t.TempDir()
		ip   = heatParams(dir)
		A, B = radialHeatConstants(1, 1, 1, 0.5)
	)
	exact := fmt.Sprintf(`constants:
  A: %.17g
  B: %.17g
theta: "-16/25*tau*pow(R,2) - 2*pow(R,2)/(15*tau) + pow(R,4)/(60*tau) - 4*A/(15*tau)*log(R) + B"
s: ["(R - pow(R,3)/4 + A/R)*x[0]/R", "(R - pow(R,3)/4 + A/R)*x[1]/R"]
`, A, B)
	ip.ConvergenceStudy = InputParameters.ConvergenceStudy{
		Enable:        true,
		ExactSolution: filepath.Join(dir, "exact.yml"),
	}
	require.NoError(t, os.WriteFile(ip.ConvergenceStudy.ExactSolution, []byte(exact), 0644))
	ip.HeatSource = "2 - pow(x[0],2) - pow(x[1],2)"
	write := true
	ip.Postprocessing.WriteFields = &write
	cs, err := RunCase(ip, []*geometry2D.Mesh{ring(t, 4, 24), ring(t, 8, 48)}, false)
	require.NoError(t, err)
	require.Len(t, cs.H, 2)
	assert.Greater(t, cs.H[0], cs.H[1])

	file, err := os.Open(filepath.Join(dir, "errors.csv"))
	require.NoError(t, err)
	defer file.Close()
	header, rows, err := writefiles.ReadCSV(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "theta_L2", "theta_linf", "sx_L2", "sx_linf", "sy_L2", "sy_linf"}, header)
	require.Len(t, rows, 2)
	orders := Orders(rows)
	for j, name := range header[1:] {
		if name == "theta_L2" || name == "sx_L2" || name == "sy_L2" {
			assert.Greater(t, orders[0][j], 1., name)
		}
	}
	for _, name := range []string{"theta_1", "s_1", "difference_theta_1", "theta_e_1", "f_heat_1", "f_mass_1"} {
		_, err = os.Stat(filepath.Join(dir, name+".xdmf"))
		assert.NoError(t, err, name)
	}
}

/*
ringFlowExact is a closed form solution of the stress system on the ring for
tau = xi_tilde = 1, wall velocities v_t = -1/2 inside and 1 outside and the mass
source f = 6R^4 - 17R^2 + 2. It superposes a rotating flow
	u = (C/(2R) + D0 R) e_phi,   sigma_Rphi = C/R^2
and a radial flow u = R(R^2 - 1/4)(R^2 - 4) e_R, whose stress is dev(grad grad chi)
with
	chi = d1 R^2 + d2 R^4 + d3 R^6 + AI I0(lam R) + AK K0(lam R),  lam^2 = 5/6
plus the divergence free part
	sigma_RR = -2/(mu R) (g1 I1(mu R) - g2 K1(mu R)),
	sigma_phiphi = -2 g1 I1'(mu R) + 2 g2 K1'(mu R),  mu^2 = 3/2
and p = -2/3 Lap chi. C and D0 solve the tangential wall conditions, AI, AK, g1 and
g2 the two normal ones on each wall.
*/
func ringFlowExact() string {
	var (
		I      = func(n int, arg string) string { return fmt.Sprintf("cyl_bessel_i(%d,%s)", n, arg) }
		K      = func(n int, arg string) string { return fmt.Sprintf("cyl_bessel_k(%d,%s)", n, arg) }
		lr, mr = "lam*R", "mu*R"
		chi1   = fmt.Sprintf("(2*d1*R + 4*d2*pow(R,3) + 6*d3*pow(R,5) + AI*lam*%s - AK*lam*%s)", I(1, lr), K(1, lr))
		chi2   = fmt.Sprintf("(2*d1 + 12*d2*pow(R,2) + 30*d3*pow(R,4) + AI*pow(lam,2)*(%s - %s/(%s)) + AK*pow(lam,2)*(%s + %s/(%s)))",
			I(0, lr), I(1, lr), lr, K(0, lr), K(1, lr), lr)
		lap = fmt.Sprintf("(4*d1 + 16*d2*pow(R,2) + 36*d3*pow(R,4) + pow(lam,2)*(AI*%s + AK*%s))", I(0, lr), K(0, lr))
		hRR = fmt.Sprintf("(-2/(%s)*(g1*%s - g2*%s))", mr, I(1, mr), K(1, mr))
		hPP = fmt.Sprintf("(-2*g1*(%s - %s/(%s)) - 2*g2*(%s + %s/(%s)))", I(0, mr), I(1, mr), mr, K(0, mr), K(1, mr), mr)
		// Polar components sigma_RR, sigma_phiphi and sigma_Rphi, radial and azimuthal velocity
		alpha  = fmt.Sprintf("((2*%s - %s/R)/3 + %s)", chi2, chi1, hRR)
		beta   = fmt.Sprintf("((2*%s/R - %s)/3 + %s)", chi1, chi2, hPP)
		shear  = "(C/pow(R,2))"
		radial = "(R*(pow(R,2) - 0.25)*(pow(R,2) - 4))"
		swirl  = "(C/(2*R) + D0*R)"
		c, s   = "(x[0]/R)", "(x[1]/R)"
	)
	var (
		sxx = fmt.Sprintf("%s*pow(%s,2) + %s*pow(%s,2) - 2*%s*%s*%s", alpha, c, beta, s, shear, c, s)
		sxy = fmt.Sprintf("(%s - %s)*%s*%s + %s*(pow(%s,2) - pow(%s,2))", alpha, beta, c, s, shear, c, s)
		syy = fmt.Sprintf("%s*pow(%s,2) + %s*pow(%s,2) + 2*%s*%s*%s", alpha, s, beta, c, shear, c, s)
		ux  = fmt.Sprintf("%s*%s - %s*%s", radial, c, swirl, s)
		uy  = fmt.Sprintf("%s*%s + %s*%s", radial, s, swirl, c)
	)
	return fmt.Sprintf(`constants:
  C: 0.006779661016949154
  D0: 0.4983050847457627
  AI: 1137.1870390431454
  AK: -0.2499913551041363
  g1: -0.3276165910276378
  g2: 0.19041380296991878
  d1: -236.68
  d2: -12.275
  d3: %.17g
  lam: %.17g
  mu: %.17g
p: "-2*%s/3"
u: ["%s", "%s"]
sigma: [["%s", "%s"], ["%s", "%s"]]
`, -1./3., math.Sqrt(5./6.), math.Sqrt(3./2.), lap, ux, uy, sxx, sxy, sxy, syy)
}

func TestStressConvergence(t *testing.T) {
	var (
		dir = t.TempDir()
		ip  = heatParams(dir)
	)
	ip.Mode = "stress"
	ip.Elements["u"] = InputParameters.ElementParameters{Shape: "Lagrange", Degree: 2}
	ip.Elements["sigma"] = InputParameters.ElementParameters{Shape: "Lagrange", Degree: 2}
	ip.BCs[inner] = InputParameters.BoundaryCondition{VT: -0.5}
	ip.BCs[outer] = InputParameters.BoundaryCondition{VT: 1}
	ip.MassSource = "6*pow(R,4) - 17*pow(R,2) + 2"
	ip.ConvergenceStudy = InputParameters.ConvergenceStudy{
		Enable:          true,
		ExactSolution:   filepath.Join(dir, "exact.yml"),
		RescalePressure: true,
	}
	require.NoError(t, os.WriteFile(ip.ConvergenceStudy.ExactSolution, []byte(ringFlowExact()), 0644))
	cs, err := RunCase(ip, []*geometry2D.Mesh{ring(t, 4, 24), ring(t, 8, 48)}, false)
	require.NoError(t, err)
	header := cs.Header()
	assert.Equal(t, []string{"h", "p_L2", "p_linf", "ux_L2", "ux_linf", "uy_L2", "uy_linf",
		"sigmaxx_L2", "sigmaxx_linf", "sigmaxy_L2", "sigmaxy_linf", "sigmayy_L2", "sigmayy_linf"}, header)
	orders := cs.Orders()
	require.Len(t, orders, 1)
	rows := cs.Rows()
	for j, name := range header[1:] {
		if strings.HasSuffix(name, "_L2") {
			assert.Less(t, rows[1][j+1], rows[0][j+1], name)
			assert.Greater(t, orders[0][j], 1., name)
		}
	}
	{ // The wall velocity enters with its sign
		ip.BCs[inner] = InputParameters.BoundaryCondition{VT: 0.5}
		ip.BCs[outer] = InputParameters.BoundaryCondition{VT: -1}
		ip.Output = t.TempDir()
		wrong, err := RunCase(ip, []*geometry2D.Mesh{ring(t, 8, 48)}, false)
		require.NoError(t, err)
		assert.Greater(t, wrong.Errors[0].L2[types.U][0], 10*cs.Errors[1].L2[types.U][0])
	}
}
