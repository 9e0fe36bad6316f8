package CG2D

/*
Value is a scalar, vector or symmetric tensor quantity with its physical gradient
at one point. Trial and test basis functions as well as discrete functions are
evaluated into Values, kernels read the members matching the field's Rank.

	DV[i][j]    = dv_i / dx_j
	DT[i][j][k] = dT_ij / dx_k

Aux is scratch space filled by a Form's Prepare hook for derived quantities that
would otherwise be recomputed for every trial and test pair.
*/
type Value struct {
	Rank int
	S    float64
	DS   [2]float64
	V    [2]float64
	DV   [2][2]float64
	T    [2][2]float64
	DT   [2][2][2]float64
	Aux  []float64
}

func (v *Value) reset(rank int) {
	aux := v.Aux
	*v = Value{Rank: rank, Aux: aux}
}

// addComponent adds phi and its gradient to component comp of a rank 0, 1 or symmetric rank 2 quantity
func (v *Value) addComponent(comp int, phi, gx, gy float64) {
	switch v.Rank {
	case 0:
		v.S += phi
		v.DS[0] += gx
		v.DS[1] += gy
	case 1:
		v.V[comp] += phi
		v.DV[comp][0] += gx
		v.DV[comp][1] += gy
	case 2:
		i, j := TensorIndex(comp)
		v.T[i][j] += phi
		v.DT[i][j][0] += gx
		v.DT[i][j][1] += gy
		if i != j {
			v.T[j][i] += phi
			v.DT[j][i][0] += gx
			v.DT[j][i][1] += gy
		}
	}
}

// Div is the divergence of a vector, or the row-wise divergence of a tensor
func (v *Value) Div() (s float64, vec [2]float64) {
	switch v.Rank {
	case 1:
		s = v.DV[0][0] + v.DV[1][1]
	case 2:
		vec[0] = v.DT[0][0][0] + v.DT[0][1][1]
		vec[1] = v.DT[1][0][0] + v.DT[1][1][1]
	}
	return
}

// Component returns component comp in storage order (xx, xy, yy for tensors)
func (v *Value) Component(comp int) float64 {
	switch v.Rank {
	case 0:
		return v.S
	case 1:
		return v.V[comp]
	default:
		i, j := TensorIndex(comp)
		return v.T[i][j]
	}
}
