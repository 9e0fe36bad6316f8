package CG2D

import (
	"fmt"

	"github.com/notargets/gor13/geometry2D"
)

/*
FunctionSpace is a continuous Lagrange space of rank 0 (scalar), 1 (vector) or
2 (symmetric 2x2 tensor). Components are stored in blocks of NScalar() dofs, a
symmetric tensor stores the xx, xy and yy components.
*/
type FunctionSpace struct {
	Name    string
	Mesh    *geometry2D.Mesh
	Element *LagrangeElement
	DofMap  *DofMap
	Rank    int
}

func NewFunctionSpace(name string, m *geometry2D.Mesh, degree, rank int) (fs *FunctionSpace, err error) {
	var (
		el *LagrangeElement
	)
	if rank < 0 || rank > 2 {
		err = fmt.Errorf("unsupported rank %d for function space %s", rank, name)
		return
	}
	if el, err = NewLagrangeElement(degree); err != nil {
		return
	}
	fs = &FunctionSpace{
		Name:    name,
		Mesh:    m,
		Element: el,
		DofMap:  NewDofMap(m, el),
		Rank:    rank,
	}
	return
}

func (fs *FunctionSpace) NumComponents() int {
	switch fs.Rank {
	case 0:
		return 1
	case 1:
		return 2
	default:
		return 3
	}
}

func (fs *FunctionSpace) NScalar() int { return fs.DofMap.NDofs }

func (fs *FunctionSpace) Dim() int { return fs.NumComponents() * fs.NScalar() }

// NLocal is the number of basis functions per cell
func (fs *FunctionSpace) NLocal() int { return fs.NumComponents() * fs.Element.Np }

// TensorIndex maps a symmetric tensor component onto its (row, column)
func TensorIndex(comp int) (i, j int) {
	switch comp {
	case 0:
		return 0, 0
	case 1:
		return 0, 1
	default:
		return 1, 1
	}
}

// MixedSpace is the ordered product of function spaces, each occupying a contiguous block of the global vector
type MixedSpace struct {
	Spaces  []*FunctionSpace
	Offsets []int
	dim     int
}

func NewMixedSpace(spaces ...*FunctionSpace) (ms *MixedSpace, err error) {
	if len(spaces) == 0 {
		err = fmt.Errorf("mixed space needs at least one function space")
		return
	}
	ms = &MixedSpace{Spaces: spaces, Offsets: make([]int, len(spaces))}
	for i, fs := range spaces {
		if fs.Mesh != spaces[0].Mesh {
			err = fmt.Errorf("function space %s is defined on a different mesh", fs.Name)
			return
		}
		ms.Offsets[i] = ms.dim
		ms.dim += fs.Dim()
	}
	return
}

func (ms *MixedSpace) Dim() int { return ms.dim }

func (ms *MixedSpace) Mesh() *geometry2D.Mesh { return ms.Spaces[0].Mesh }

// Index returns the position of the named sub space, or -1
func (ms *MixedSpace) Index(name string) int {
	for i, fs := range ms.Spaces {
		if fs.Name == name {
			return i
		}
	}
	return -1
}

// GlobalIndex = offset + comp*NScalar + scalar dof
func (ms *MixedSpace) GlobalIndex(field, comp, dof int) int {
	return ms.Offsets[field] + comp*ms.Spaces[field].NScalar() + dof
}

// CellDofs lists the global indices of all local basis functions of cell k, field by field and component by component
func (ms *MixedSpace) CellDofs(k int, dofs []int) []int {
	dofs = dofs[:0]
	for f, fs := range ms.Spaces {
		for c := 0; c < fs.NumComponents(); c++ {
			for _, d := range fs.DofMap.CellDofs[k] {
				dofs = append(dofs, ms.GlobalIndex(f, c, d))
			}
		}
	}
	return dofs
}

// NLocal is the number of basis functions of all fields on one cell
func (ms *MixedSpace) NLocal() (n int) {
	for _, fs := range ms.Spaces {
		n += fs.NLocal()
	}
	return
}

// LocalOffsets gives the position of each field's first basis function in the cell-local ordering
func (ms *MixedSpace) LocalOffsets() (off []int) {
	off = make([]int, len(ms.Spaces)+1)
	for i, fs := range ms.Spaces {
		off[i+1] = off[i] + fs.NLocal()
	}
	return
}
