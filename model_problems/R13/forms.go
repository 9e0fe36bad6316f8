package R13

import (
	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/InputParameters"
	"github.com/notargets/gor13/expression"
	"github.com/notargets/gor13/types"
	"github.com/notargets/gor13/utils"
)

// heatCoefficients scale the terms of the heat system, with or without the physical R13 coefficients
type heatCoefficients struct {
	dev, mass, div, normal, tangential, wall float64
}

func newHeatCoefficients(tau, xi float64, useCoeffs bool) heatCoefficients {
	if useCoeffs {
		return heatCoefficients{
			dev:        12. / 5. * tau,
			mass:       2. / 3. / tau,
			div:        5. / 2.,
			normal:     5. / (4 * xi),
			tangential: 11. / 10. * xi,
			wall:       5. / 2.,
		}
	}
	return heatCoefficients{
		dev:        tau,
		mass:       1 / tau,
		div:        1,
		normal:     1 / xi,
		tangential: xi,
		wall:       1,
	}
}

// Length of dev3(grad3d(sigma)) cached in Value.Aux of the stress sub space
const devGradSize = 27

func prepareStress(val *CG2D.Value) {
	if cap(val.Aux) < devGradSize {
		val.Aux = make([]float64, devGradSize)
	}
	val.Aux = val.Aux[:devGradSize]
	d := Dev3(Grad3dOf2(val.DT))
	var ii int
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				val.Aux[ii] = d[i][j][k]
				ii++
			}
		}
	}
}

func dot(a, b [2]float64) float64 { return a[0]*b[0] + a[1]*b[1] }

// tensorProject is a^T T b for a symmetric tensor
func tensorProject(T [2][2]float64, a, b [2]float64) (s float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			s += a[i] * T[i][j] * b[j]
		}
	}
	return
}

// scalarJump is [grad f] . n across an interior facet, n pointing out of the plus side
func scalarJump(plus, minus *CG2D.Value, n [2]float64) float64 {
	return (plus.DS[0]-minus.DS[0])*n[0] + (plus.DS[1]-minus.DS[1])*n[1]
}

func vectorJump(plus, minus *CG2D.Value, n [2]float64) (j [2]float64) {
	for i := 0; i < 2; i++ {
		j[i] = (plus.DV[i][0]-minus.DV[i][0])*n[0] + (plus.DV[i][1]-minus.DV[i][1])*n[1]
	}
	return
}

/*
formBuilder adds the R13 terms to a form over a mixed space whose sub spaces are
named after the fields. Sub space indices come from the mixed space so that the
decoupled and coupled systems share the same kernels.
*/
type formBuilder struct {
	ip         *InputParameters.R13Parameters
	ms         *CG2D.MixedSpace
	heatSource *expression.Expression
	massSource *expression.Expression
}

func (fb *formBuilder) index(f types.Field) int {
	return fb.ms.Index(f.String())
}

func (fb *formBuilder) build(mode types.Mode) (form *CG2D.Form) {
	form = CG2D.NewForm()
	if mode.HasHeat() {
		fb.heat(form)
	}
	if mode.HasStress() {
		fb.stress(form)
	}
	return
}

func (fb *formBuilder) heat(form *CG2D.Form) {
	var (
		theta, s = fb.index(types.Theta), fb.index(types.S)
		c        = newHeatCoefficients(fb.ip.Tau, fb.ip.XiTilde, fb.ip.UseCoeffs)
		bcs      = fb.ip.BCs
		delta1   = fb.ip.Stabilization.CIP.Delta1
		f        = fb.heatSource
	)
	// a1
	form.AddCell(s, s, func(p *CG2D.Point, u, v *CG2D.Value) float64 {
		return c.dev*Inner(Dev3d(u.DV), v.DV) + c.mass*dot(u.V, v.V)
	})
	form.AddCell(theta, s, func(p *CG2D.Point, u, v *CG2D.Value) float64 {
		divR, _ := v.Div()
		return -c.div * u.S * divR
	})
	form.AddExteriorFacet(s, s, func(p *CG2D.Point, u, v *CG2D.Value) float64 {
		return c.normal*dot(u.V, p.N)*dot(v.V, p.N) + c.tangential*dot(u.V, p.T)*dot(v.V, p.T)
	})
	form.AddSource(CG2D.ExteriorFacet, s, func(p *CG2D.Point, v *CG2D.Value) float64 {
		bc, ok := bcs[p.Tag]
		if !ok {
			return 0
		}
		return -c.wall * dot(v.V, p.N) * bc.ThetaW
	})
	// a2
	form.AddCell(s, theta, func(p *CG2D.Point, u, v *CG2D.Value) float64 {
		divS, _ := u.Div()
		return -divS * v.S
	})
	fi := form.AddCoefficient(CG2D.CellIntegral, f.MustEval)
	form.AddSource(CG2D.CellIntegral, theta, func(p *CG2D.Point, v *CG2D.Value) float64 {
		return -p.Coef[fi] * v.S
	})
	if fb.ip.Stabilization.CIP.Enable {
		form.AddInteriorFacet(theta, theta, func(p *CG2D.Point, uP, uM, vP, vM *CG2D.Value) float64 {
			return -delta1 * utils.POW(p.H, 3) * scalarJump(uP, uM, p.N) * scalarJump(vP, vM, p.N)
		})
	}
}

func (fb *formBuilder) stress(form *CG2D.Form) {
	var (
		pres, u, sigma = fb.index(types.P), fb.index(types.U), fb.index(types.Sigma)
		tau, xi        = fb.ip.Tau, fb.ip.XiTilde
		bcs            = fb.ip.BCs
		cip            = fb.ip.Stabilization.CIP
		f              = fb.massSource
	)
	form.Prepare[sigma] = prepareStress
	// a3
	form.AddCell(sigma, sigma, func(p *CG2D.Point, s, psi *CG2D.Value) (val float64) {
		for i := 0; i < devGradSize; i++ {
			val += s.Aux[i] * psi.Aux[i]
		}
		return 2*tau*val + InnerOfTracefree2(s.T, psi.T)/tau
	})
	form.AddCell(u, sigma, func(p *CG2D.Point, uu, psi *CG2D.Value) float64 {
		_, divPsi := psi.Div()
		return -2 * dot(uu.V, divPsi)
	})
	form.AddExteriorFacet(sigma, sigma, func(p *CG2D.Point, s, psi *CG2D.Value) float64 {
		var (
			sNN, pNN = tensorProject(s.T, p.N, p.N), tensorProject(psi.T, p.N, p.N)
			sTT, pTT = tensorProject(s.T, p.T, p.T), tensorProject(psi.T, p.T, p.T)
			sNT, pNT = tensorProject(s.T, p.N, p.T), tensorProject(psi.T, p.N, p.T)
		)
		return 21./10.*xi*sNN*pNN + 2*xi*(sTT+0.5*sNN)*(pTT+0.5*pNN) + 2/xi*sNT*pNT
	})
	form.AddSource(CG2D.ExteriorFacet, sigma, func(p *CG2D.Point, psi *CG2D.Value) float64 {
		bc, ok := bcs[p.Tag]
		if !ok {
			return 0
		}
		return -2 * tensorProject(psi.T, p.N, p.T) * bc.VT
	})
	// a4, the right hand side l4 vanishes
	form.AddCell(sigma, u, func(p *CG2D.Point, s, v *CG2D.Value) float64 {
		_, divS := s.Div()
		return dot(divS, v.V)
	})
	form.AddCell(pres, u, func(p *CG2D.Point, pp, v *CG2D.Value) float64 {
		return dot(pp.DS, v.V)
	})
	// a5
	form.AddCell(u, pres, func(p *CG2D.Point, uu, q *CG2D.Value) float64 {
		return dot(uu.V, q.DS)
	})
	fi := form.AddCoefficient(CG2D.CellIntegral, f.MustEval)
	form.AddSource(CG2D.CellIntegral, pres, func(p *CG2D.Point, q *CG2D.Value) float64 {
		return -p.Coef[fi] * q.S
	})
	if cip.Enable {
		form.AddInteriorFacet(u, u, func(p *CG2D.Point, uP, uM, vP, vM *CG2D.Value) float64 {
			return cip.Delta2 * utils.POW(p.H, 3) * dot(vectorJump(uP, uM, p.N), vectorJump(vP, vM, p.N))
		})
		form.AddInteriorFacet(pres, pres, func(p *CG2D.Point, uP, uM, vP, vM *CG2D.Value) float64 {
			return -cip.Delta3 * p.H * scalarJump(uP, uM, p.N) * scalarJump(vP, vM, p.N)
		})
	}
}
