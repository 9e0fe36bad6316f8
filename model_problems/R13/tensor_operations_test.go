package R13

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randomRank3(rng *rand.Rand) (r Rank3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j][k] = rng.Float64() - 0.5
			}
		}
	}
	return
}

func randomGrad(rng *rand.Rand) (d [2][2][2]float64) {
	for k := 0; k < 2; k++ {
		d[0][0][k] = rng.Float64() - 0.5
		d[0][1][k] = rng.Float64() - 0.5
		d[1][0][k] = d[0][1][k]
		d[1][1][k] = rng.Float64() - 0.5
	}
	return
}

func TestTensorOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	{
		d := Dev3d(Tensor2{{1, 2}, {4, 3}})
		assert.InDeltaSlice(t, []float64{1 - 4./3., 3, 3, 3 - 4./3.},
			[]float64{d[0][0], d[0][1], d[1][0], d[1][1]}, 1.e-15)
	}
	{ // The tracefree inner product is the 3D inner product of the reconstructed tensors
		a, b := Tensor2{{1, -2}, {-2, 0.5}}, Tensor2{{0.3, 0.7}, {0.7, -1.1}}
		A, B := Gen3dTracefreeTensor(a), Gen3dTracefreeTensor(b)
		var full float64
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				full += A[i][j] * B[i][j]
			}
		}
		assert.InDelta(t, full, InnerOfTracefree2(a, b), 1.e-14)
		assert.Equal(t, 0., A[0][0]+A[1][1]+A[2][2])
	}
	{
		da := randomGrad(rng)
		G := Grad3dOf2(da)
		assert.Equal(t, Tensor3D{}, Tensor3D(G[2]))
		for k := 0; k < 2; k++ {
			assert.InDelta(t, -(da[0][0][k] + da[1][1][k]), G[k][2][2], 1.e-15)
			assert.Equal(t, da[0][1][k], G[k][0][1])
		}
	}
	{ // Dev3 is symmetric, tracefree and a projection
		r := randomRank3(rng)
		d := Dev3(r)
		for i := 0; i < 3; i++ {
			var tr float64
			for l := 0; l < 3; l++ {
				tr += d[i][l][l]
			}
			assert.InDelta(t, 0., tr, 1.e-14)
			for j := 0; j < 3; j++ {
				for k := 0; k < 3; k++ {
					assert.InDelta(t, d[i][j][k], d[j][i][k], 1.e-15)
					assert.InDelta(t, d[i][j][k], d[i][k][j], 1.e-15)
				}
			}
		}
		dd := Dev3(d)
		assert.InDelta(t, 0., InnerRank3(&dd, &dd)-InnerRank3(&d, &d), 1.e-13)
		s := Sym3(r)
		ss := Sym3(s)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDeltaSlice(t, s[i][j][:], ss[i][j][:], 1.e-15)
			}
		}
	}
	{ // The stress gradient term is symmetric in its arguments
		a, b := randomGrad(rng), randomGrad(rng)
		assert.InDelta(t, InnerOfDevOfGrad2AndGrad2(a, b), InnerOfDevOfGrad2AndGrad2(b, a), 1.e-14)
		assert.Greater(t, InnerOfDevOfGrad2AndGrad2(a, a), 0.)
	}
}

func TestEOC(t *testing.T) {
	assert.InDeltaSlice(t, []float64{2, 1}, EOC([]float64{1, 0.5, 0.25}, []float64{1, 0.25, 0.125}), 1.e-14)
	assert.Panics(t, func() { EOC([]float64{1}, []float64{1, 2}) })
	orders := Orders([][]float64{{0.2, 4e-2, 1}, {0.1, 1e-2, 1}})
	assert.InDeltaSlice(t, []float64{2, 0}, orders[0], 1.e-14)
	assert.Nil(t, Orders([][]float64{{0.2, 1}}))
}
