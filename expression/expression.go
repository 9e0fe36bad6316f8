package expression

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

/*
Expression is a scalar function of the point (x,y) written in C syntax, e.g.
"2 - pow(x[0],2) - pow(x[1],2)". Besides x and y the variables R (radius), phi
(polar angle) and pi are always defined, further named parameters such as tau are
bound when the expression is created.
*/
type Expression struct {
	Source string
	expr   *govaluate.EvaluableExpression
	params map[string]interface{}
}

var (
	coordRegex      = regexp.MustCompile(`x\s*\[\s*([01])\s*\]`)
	scientificRegex = regexp.MustCompile(`(^|[^A-Za-z0-9_.])((?:\d+\.?\d*|\.\d+)[eE][+-]?\d+)`)
	pointVariables  = map[string]bool{"x": true, "y": true, "R": true, "phi": true, "pi": true}
)

// translate rewrites C syntax that govaluate reads differently: x[i] is an escaped variable there and exponents are not parsed
func translate(src string) (out string, err error) {
	out = coordRegex.ReplaceAllStringFunc(src, func(m string) string {
		if coordRegex.FindStringSubmatch(m)[1] == "0" {
			return "x"
		}
		return "y"
	})
	out = strings.ReplaceAll(out, "M_PI", "pi")
	out = scientificRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := scientificRegex.FindStringSubmatch(m)
		v, perr := strconv.ParseFloat(sub[2], 64)
		if perr != nil {
			err = fmt.Errorf("invalid number %q: %w", sub[2], perr)
			return m
		}
		return sub[1] + "(" + strconv.FormatFloat(v, 'f', -1, 64) + ")"
	})
	return
}

func New(src string, params map[string]float64) (e *Expression, err error) {
	var (
		translated string
	)
	if strings.TrimSpace(src) == "" {
		err = fmt.Errorf("empty expression")
		return
	}
	if translated, err = translate(src); err != nil {
		return
	}
	e = &Expression{Source: src, params: make(map[string]interface{}, len(params))}
	for k, v := range params {
		e.params[k] = v
	}
	if e.expr, err = govaluate.NewEvaluableExpressionWithFunctions(translated, functions); err != nil {
		err = fmt.Errorf("parsing expression %q: %w", src, err)
		return
	}
	var missing []string
	for _, v := range e.expr.Vars() {
		if _, ok := e.params[v]; !ok && !pointVariables[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) != 0 {
		sort.Strings(missing)
		err = fmt.Errorf("expression %q uses undefined variables %v", src, missing)
		return
	}
	return
}

// Constant builds an expression that evaluates to val everywhere
func Constant(val float64) *Expression {
	e, err := New(strconv.FormatFloat(val, 'f', -1, 64), nil)
	if err != nil {
		panic(err)
	}
	return e
}

type pointParameters struct {
	x, y  float64
	named map[string]interface{}
}

func (pp *pointParameters) Get(name string) (interface{}, error) {
	switch name {
	case "x":
		return pp.x, nil
	case "y":
		return pp.y, nil
	case "R":
		return math.Hypot(pp.x, pp.y), nil
	case "phi":
		return math.Atan2(pp.y, pp.x), nil
	}
	if v, ok := pp.named[name]; ok {
		return v, nil
	}
	if name == "pi" {
		return math.Pi, nil
	}
	return nil, fmt.Errorf("no parameter %q", name)
}

func (e *Expression) Eval(x, y float64) (val float64, err error) {
	var (
		res interface{}
		ok  bool
	)
	if res, err = e.expr.Eval(&pointParameters{x: x, y: y, named: e.params}); err != nil {
		err = fmt.Errorf("evaluating %q at (%g,%g): %w", e.Source, x, y, err)
		return
	}
	if val, ok = res.(float64); !ok {
		err = fmt.Errorf("expression %q is not numeric, evaluates to %v", e.Source, res)
	}
	return
}

// MustEval panics on evaluation errors, for use inside assembly kernels where variables were checked up front
func (e *Expression) MustEval(x, y float64) float64 {
	val, err := e.Eval(x, y)
	if err != nil {
		panic(err)
	}
	return val
}

// Func adapts the expression to the component function form used for interpolation
func (e *Expression) Func() func(x, y float64) []float64 {
	return func(x, y float64) []float64 { return []float64{e.MustEval(x, y)} }
}
