package R13

/*
Tensor algebra for 3D quantities reconstructed from 2D fields. The planar problem
is the cross section of a 3D flow that is homogeneous in z, so a symmetric
tracefree 2D stress carries the zz component -(xx+yy) and all z derivatives
vanish.
*/

type (
	Tensor2  [2][2]float64
	Tensor3D [3][3]float64
	Rank3    [3][3][3]float64
)

// Dev3d is the deviator of the 2D matrix m embedded in 3D: sym(m) - tr(m)/3 I
func Dev3d(m Tensor2) (d Tensor2) {
	tr := m[0][0] + m[1][1]
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			d[i][j] = 0.5 * (m[i][j] + m[j][i])
		}
		d[i][i] -= tr / 3
	}
	return
}

// Inner is the full contraction a:b
func Inner(a, b Tensor2) (s float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			s += a[i][j] * b[i][j]
		}
	}
	return
}

// InnerOfTracefree2 is the 3D inner product of two tracefree tensors given by their 2D part
func InnerOfTracefree2(a, b Tensor2) float64 {
	return Inner(a, b) + (a[0][0]+a[1][1])*(b[0][0]+b[1][1])
}

func Gen3dTracefreeTensor(a Tensor2) (A Tensor3D) {
	A[0][0], A[0][1] = a[0][0], a[0][1]
	A[1][0], A[1][1] = a[1][0], a[1][1]
	A[2][2] = -a[0][0] - a[1][1]
	return
}

/*
Grad3dOf2 is the gradient of the synthetic 3D tracefree tensor built from a 2D
tensor field with derivatives da[i][j][k] = d a_ij / d x_k:
	G[k][i][j] = d A_ij / d x_k, G[2] = 0
*/
func Grad3dOf2(da [2][2][2]float64) (G Rank3) {
	for k := 0; k < 2; k++ {
		var da2 [2][2]float64
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				da2[i][j] = da[i][j][k]
			}
		}
		A := Gen3dTracefreeTensor(da2)
		G[k] = A
	}
	return
}

// Sym3 averages a rank 3 tensor over all index permutations
func Sym3(r Rank3) (s Rank3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				s[i][j][k] = (r[i][j][k] + r[i][k][j] + r[j][i][k] +
					r[j][k][i] + r[k][i][j] + r[k][j][i]) / 6
			}
		}
	}
	return
}

// Dev3 is the symmetric tracefree part of a rank 3 tensor
func Dev3(r Rank3) (d Rank3) {
	var (
		s  = Sym3(r)
		tr [3]float64
	)
	for i := 0; i < 3; i++ {
		for l := 0; l < 3; l++ {
			tr[i] += s[i][l][l]
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				d[i][j][k] = s[i][j][k]
				if j == k {
					d[i][j][k] -= tr[i] / 5
				}
				if i == k {
					d[i][j][k] -= tr[j] / 5
				}
				if i == j {
					d[i][j][k] -= tr[k] / 5
				}
			}
		}
	}
	return
}

func InnerRank3(a, b *Rank3) (s float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				s += a[i][j][k] * b[i][j][k]
			}
		}
	}
	return
}

// InnerOfDevOfGrad2AndGrad2 is dev3(grad sigma) : grad psi for 2D stress fields reconstructed in 3D
func InnerOfDevOfGrad2AndGrad2(dsigma, dpsi [2][2][2]float64) float64 {
	var (
		gs = Dev3(Grad3dOf2(dsigma))
		gp = Grad3dOf2(dpsi)
	)
	return InnerRank3(&gs, &gp)
}
