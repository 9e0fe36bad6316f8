package R13

import (
	"fmt"

	"github.com/notargets/gor13/types"
)

// Errors holds per component L2 and maximum errors of each solved field
type Errors struct {
	L2, Linf map[types.Field][]float64
}

func NewErrors() Errors {
	return Errors{
		L2:   make(map[types.Field][]float64),
		Linf: make(map[types.Field][]float64),
	}
}

// ComponentNames labels the stored components of a field: theta, sx, sy, sigmaxx, sigmaxy, sigmayy
func ComponentNames(f types.Field) []string {
	name := f.String()
	switch f.Rank() {
	case 0:
		return []string{name}
	case 1:
		return []string{name + "x", name + "y"}
	default:
		return []string{name + "xx", name + "xy", name + "yy"}
	}
}

func (e Errors) Print(mode types.Mode) {
	for _, f := range mode.Fields() {
		for i, name := range ComponentNames(f) {
			var l2, linf float64
			if i < len(e.L2[f]) {
				l2, linf = e.L2[f][i], e.Linf[f][i]
			}
			fmt.Printf("%-8s L2 = %12.6e, Linf = %12.6e\n", name, l2, linf)
		}
	}
}
