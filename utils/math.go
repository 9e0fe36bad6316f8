package utils

import (
	"math"
)

// POW is x^p for small integer p by repeated squaring, math.Pow beyond |p| > 8
func POW(x float64, p int) (y float64) {
	if p > 8 || p < -8 {
		return math.Pow(x, float64(p))
	}
	var (
		n = p
	)
	if n < 0 {
		n = -n
	}
	y = 1
	for base := x; n > 0; n >>= 1 {
		if n&1 == 1 {
			y *= base
		}
		base *= base
	}
	if p < 0 {
		y = 1. / y
	}
	return
}

// Mean is the arithmetic mean of v, zero for an empty slice
func Mean(v []float64) (mean float64) {
	if len(v) == 0 {
		return
	}
	for _, val := range v {
		mean += val
	}
	return mean / float64(len(v))
}
