package expression

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes one argument, have %d", name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument is not numeric", name)
		}
		return f(x), nil
	}
}

func binary(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes two arguments, have %d", name, len(args))
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: argument is not numeric", name)
		}
		return f(x, y), nil
	}
}

// functions are the C math library names exact solutions and sources are written with
var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":         unary("sqrt", math.Sqrt),
	"exp":          unary("exp", math.Exp),
	"log":          unary("log", math.Log),
	"log2":         unary("log2", math.Log2),
	"log10":        unary("log10", math.Log10),
	"sin":          unary("sin", math.Sin),
	"cos":          unary("cos", math.Cos),
	"tan":          unary("tan", math.Tan),
	"asin":         unary("asin", math.Asin),
	"acos":         unary("acos", math.Acos),
	"atan":         unary("atan", math.Atan),
	"sinh":         unary("sinh", math.Sinh),
	"cosh":         unary("cosh", math.Cosh),
	"tanh":         unary("tanh", math.Tanh),
	"abs":          unary("abs", math.Abs),
	"fabs":         unary("fabs", math.Abs),
	"pow":          binary("pow", math.Pow),
	"atan2":        binary("atan2", math.Atan2),
	"cyl_bessel_i": binary("cyl_bessel_i", func(n, x float64) float64 { return BesselI(int(n), x) }),
	"cyl_bessel_k": binary("cyl_bessel_k", func(n, x float64) float64 { return BesselK(int(n), x) }),
}
