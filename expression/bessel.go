package expression

import (
	"math"
)

/*
BesselI is the modified Bessel function of the first kind of integer order,
	I_n(x) = 1/pi int_0^pi exp(x cos t) cos(n t) dt
evaluated with the trapezoidal rule, which converges geometrically for periodic
analytic integrands.
*/
func BesselI(n int, x float64) float64 {
	if n < 0 {
		n = -n
	}
	var (
		M   = 64 + 2*int(math.Ceil(math.Abs(x))) + 2*n
		sum float64
	)
	for k := 0; k < M; k++ {
		t := 2 * math.Pi * float64(k) / float64(M)
		sum += math.Exp(x*math.Cos(t)) * math.Cos(float64(n)*t)
	}
	return sum / float64(M)
}

/*
BesselK is the modified Bessel function of the second kind of integer order for x > 0,
	K_n(x) = int_0^inf exp(-x cosh t) cosh(n t) dt
with the trapezoidal rule on the even extension of the integrand.
*/
func BesselK(n int, x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return math.NaN()
	case x == 0:
		return math.Inf(1)
	}
	if n < 0 {
		n = -n
	}
	var (
		h   = 0.05
		nf  = float64(n)
		sum = 0.5 * math.Exp(-x)
	)
	for k := 1; k < 1000000; k++ {
		t := h * float64(k)
		term := math.Exp(-x*math.Cosh(t)) * math.Cosh(nf*t)
		sum += term
		// Past the maximum of the integrand the terms fall off double exponentially
		if x*math.Sinh(t) > nf*math.Tanh(nf*t) && term < 1.e-18*sum {
			break
		}
	}
	return h * sum
}
