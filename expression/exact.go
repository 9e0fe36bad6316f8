package expression

import (
	"fmt"
	"os"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/gor13/types"
)

/*
ExactSolutionFile is the YAML layout of a closed form solution:

	constants:
	  C1: -0.40855716127979214
	theta: "(-20*C1*log(R) + 5*pow(R,4)/4)/(75*tau) + C2"
	s: ["...", "..."]
	p: "..."
	u: ["...", "..."]
	sigma: [["xx", "xy"], ["xy", "yy"]]

Fields not present are simply unavailable, constants are visible to all fields.
*/
type ExactSolutionFile struct {
	Constants map[string]float64 `json:"constants"`
	Theta     string             `json:"theta"`
	S         []string           `json:"s"`
	P         string             `json:"p"`
	U         []string           `json:"u"`
	Sigma     [][]string         `json:"sigma"`
}

type ExactSolution struct {
	Theta, P *Expression
	S, U     []*Expression // x and y components
	Sigma    []*Expression // xx, xy, yy
}

func LoadExactSolution(filename string, params map[string]float64) (es *ExactSolution, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	if es, err = ParseExactSolution(data, params); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func ParseExactSolution(data []byte, params map[string]float64) (es *ExactSolution, err error) {
	var (
		esf ExactSolutionFile
		all = make(map[string]float64)
	)
	if err = yaml.Unmarshal(data, &esf); err != nil {
		return
	}
	for k, v := range params {
		all[k] = v
	}
	for k, v := range esf.Constants {
		all[k] = v
	}
	es = &ExactSolution{}
	compile := func(name, src string) (e *Expression, err error) {
		if e, err = New(src, all); err != nil {
			err = fmt.Errorf("field %s: %w", name, err)
		}
		return
	}
	compileList := func(name string, srcs []string) (list []*Expression, err error) {
		if len(srcs) == 0 {
			return
		}
		if len(srcs) != 2 {
			err = fmt.Errorf("field %s needs 2 components, have %d", name, len(srcs))
			return
		}
		list = make([]*Expression, 2)
		for i, src := range srcs {
			if list[i], err = compile(fmt.Sprintf("%s[%d]", name, i), src); err != nil {
				return
			}
		}
		return
	}
	if esf.Theta != "" {
		if es.Theta, err = compile("theta", esf.Theta); err != nil {
			return
		}
	}
	if esf.P != "" {
		if es.P, err = compile("p", esf.P); err != nil {
			return
		}
	}
	if es.S, err = compileList("s", esf.S); err != nil {
		return
	}
	if es.U, err = compileList("u", esf.U); err != nil {
		return
	}
	if len(esf.Sigma) != 0 {
		if len(esf.Sigma) != 2 || len(esf.Sigma[0]) != 2 || len(esf.Sigma[1]) != 2 {
			err = fmt.Errorf("field sigma must be a 2x2 list of expressions")
			return
		}
		// The stress is symmetric, the lower off diagonal entry is only checked to compile
		srcs := []string{esf.Sigma[0][0], esf.Sigma[0][1], esf.Sigma[1][1]}
		es.Sigma = make([]*Expression, 3)
		for i, src := range srcs {
			if es.Sigma[i], err = compile("sigma", src); err != nil {
				return
			}
		}
		if _, err = compile("sigma", esf.Sigma[1][0]); err != nil {
			return
		}
	}
	return
}

func (es *ExactSolution) expressions(f types.Field) []*Expression {
	switch f {
	case types.Theta:
		if es.Theta != nil {
			return []*Expression{es.Theta}
		}
	case types.P:
		if es.P != nil {
			return []*Expression{es.P}
		}
	case types.S:
		return es.S
	case types.U:
		return es.U
	case types.Sigma:
		return es.Sigma
	}
	return nil
}

func (es *ExactSolution) Has(f types.Field) bool {
	return len(es.expressions(f)) != 0
}

// Missing lists the fields of mode that have no exact expression
func (es *ExactSolution) Missing(fields []types.Field) (missing []string) {
	for _, f := range fields {
		if !es.Has(f) {
			missing = append(missing, f.String())
		}
	}
	sort.Strings(missing)
	return
}

// Func evaluates all components of field f at (x,y), tensors in xx, xy, yy order
func (es *ExactSolution) Func(f types.Field) (fn func(x, y float64) []float64, err error) {
	exprs := es.expressions(f)
	if len(exprs) == 0 {
		err = fmt.Errorf("no exact solution for field %s", f)
		return
	}
	fn = func(x, y float64) []float64 {
		vals := make([]float64, len(exprs))
		for i, e := range exprs {
			vals[i] = e.MustEval(x, y)
		}
		return vals
	}
	return
}
