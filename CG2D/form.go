package CG2D

type IntegralType uint8

const (
	CellIntegral IntegralType = iota
	ExteriorFacet
	InteriorFacet
)

func (it IntegralType) String() string {
	switch it {
	case CellIntegral:
		return "dx"
	case ExteriorFacet:
		return "ds"
	case InteriorFacet:
		return "dS"
	}
	return "unknown"
}

/*
Point carries the geometric context of a quadrature point. On facets N is the unit
normal pointing out of the cell on the plus side and T = (-N_y, N_x). H is the
cell diameter, on interior facets the average over both cells.
*/
type Point struct {
	X, Y  float64
	N, T  [2]float64
	H     float64
	Tag   int
	Cell  int
	Facet int
	// Coef holds the form's coefficients at (X,Y), indexed as returned by AddCoefficient
	Coef []float64
}

type (
	BilinearKernel func(p *Point, u, v *Value) float64
	LinearKernel   func(p *Point, v *Value) float64
	// JumpKernel receives the trial and test function on both sides of an interior facet
	JumpKernel  func(p *Point, uPlus, uMinus, vPlus, vMinus *Value) float64
	PrepareFunc func(val *Value)
	// CoefficientFunc is a spatially varying coefficient, evaluated once per quadrature point
	CoefficientFunc func(x, y float64) float64
)

type Coefficient struct {
	Integral IntegralType
	Eval     CoefficientFunc
}

type BilinearTerm struct {
	Integral    IntegralType
	Trial, Test int // Sub space index within the mixed space
	Kernel      BilinearKernel
	Jump        JumpKernel
}

type LinearTerm struct {
	Integral IntegralType
	Test     int
	Kernel   LinearKernel
}

/*
Form is the sum of bilinear and linear integrals over a mixed space. Exterior facet
kernels see every boundary facet and select by Point.Tag.
*/
type Form struct {
	Bilinear []BilinearTerm
	Linear   []LinearTerm
	// Prepare runs on every tabulated basis Value of a sub space before the kernels
	Prepare          map[int]PrepareFunc
	Coefficients     []Coefficient
	QuadratureDegree int
}

func NewForm() *Form {
	return &Form{Prepare: make(map[int]PrepareFunc)}
}

func (f *Form) AddCell(trial, test int, k BilinearKernel) *Form {
	f.Bilinear = append(f.Bilinear, BilinearTerm{Integral: CellIntegral, Trial: trial, Test: test, Kernel: k})
	return f
}

func (f *Form) AddExteriorFacet(trial, test int, k BilinearKernel) *Form {
	f.Bilinear = append(f.Bilinear, BilinearTerm{Integral: ExteriorFacet, Trial: trial, Test: test, Kernel: k})
	return f
}

func (f *Form) AddInteriorFacet(trial, test int, k JumpKernel) *Form {
	f.Bilinear = append(f.Bilinear, BilinearTerm{Integral: InteriorFacet, Trial: trial, Test: test, Jump: k})
	return f
}

func (f *Form) AddSource(integral IntegralType, test int, k LinearKernel) *Form {
	f.Linear = append(f.Linear, LinearTerm{Integral: integral, Test: test, Kernel: k})
	return f
}

/*
AddCoefficient registers fn on the quadrature points of one integral type and returns
its index into Point.Coef. Kernels read the value instead of evaluating fn for every
basis function.
*/
func (f *Form) AddCoefficient(integral IntegralType, fn CoefficientFunc) (index int) {
	index = len(f.Coefficients)
	f.Coefficients = append(f.Coefficients, Coefficient{Integral: integral, Eval: fn})
	return
}

func (f *Form) has(it IntegralType) bool {
	for _, t := range f.Bilinear {
		if t.Integral == it {
			return true
		}
	}
	for _, t := range f.Linear {
		if t.Integral == it {
			return true
		}
	}
	return false
}

func (f *Form) bilinear(it IntegralType) (terms []BilinearTerm) {
	for _, t := range f.Bilinear {
		if t.Integral == it {
			terms = append(terms, t)
		}
	}
	return
}

func (f *Form) linear(it IntegralType) (terms []LinearTerm) {
	for _, t := range f.Linear {
		if t.Integral == it {
			terms = append(terms, t)
		}
	}
	return
}
