package CG2D

import (
	"github.com/notargets/gor13/geometry2D"
)

/*
DofMap numbers the scalar degrees of freedom of a continuous Lagrange space:
vertex dofs first (dof = vertex index), then Degree-1 dofs per facet ordered from
Facet.Verts[0] to Facet.Verts[1], then the interior dofs of each cell.
*/
type DofMap struct {
	NDofs    int
	CellDofs [][]int // [cell][local node]
	X, Y     []float64
}

func NewDofMap(m *geometry2D.Mesh, el *LagrangeElement) (dm *DofMap) {
	var (
		edgeBase = m.Nv
		intBase  = m.Nv + len(m.Facets)*el.NpEdge
	)
	dm = &DofMap{
		NDofs:    intBase + m.K*el.NpInt,
		CellDofs: make([][]int, m.K),
	}
	dm.X, dm.Y = make([]float64, dm.NDofs), make([]float64, dm.NDofs)
	for k := 0; k < m.K; k++ {
		var (
			verts = m.EToV[k]
			dofs  = make([]int, el.Np)
			am    = m.CellMap(k)
		)
		for i := 0; i < 3; i++ {
			dofs[i] = verts[i]
		}
		for e := 0; e < 3; e++ {
			var (
				fi      = m.CellFacets[k][e]
				a, _    = geometry2D.LocalEdgeVertices(e)
				forward = m.Facets[fi].Verts[0] == verts[a]
			)
			for i, ln := range el.EdgeNode[e] {
				gi := i
				if !forward {
					gi = el.NpEdge - 1 - i
				}
				dofs[ln] = edgeBase + fi*el.NpEdge + gi
			}
		}
		for i := 0; i < el.NpInt; i++ {
			dofs[3+3*el.NpEdge+i] = intBase + k*el.NpInt + i
		}
		for i, d := range dofs {
			dm.X[d], dm.Y[d] = am.ToPhysical(el.R[i], el.S[i])
		}
		dm.CellDofs[k] = dofs
	}
	return
}
