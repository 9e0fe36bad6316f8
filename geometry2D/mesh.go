package geometry2D

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gor13/types"
)

/*
Mesh is an unstructured triangle mesh with boundary and subdomain tags.

Local edge i of a triangle is the edge opposite local vertex i, so that the edge
runs from vertex (i+1)%3 to vertex (i+2)%3. Triangles are stored counter-clockwise.
*/
type Mesh struct {
	VX, VY     []float64
	EToV       [][3]int
	CellTags   []int
	Facets     []Facet
	CellFacets [][3]int // Facet index of each local edge
	K          int      // Number of cells
	Nv         int      // Number of vertices
}

type Facet struct {
	Verts     [2]int // Oriented counter-clockwise with respect to Cells[0]
	Cells     [2]int // Cells[1] is -1 on the boundary
	LocalEdge [2]int
	Tag       int // Boundary tag, 0 for interior and untagged boundary facets
}

func (f Facet) IsBoundary() bool { return f.Cells[1] < 0 }

// LocalEdgeVertices returns the local vertex pair of edge e, oriented counter-clockwise
func LocalEdgeVertices(e int) (a, b int) {
	return (e + 1) % 3, (e + 2) % 3
}

func NewMesh(VX, VY []float64, EToV [][3]int, cellTags []int, boundaryTags map[types.EdgeKey]int) (m *Mesh, err error) {
	if len(VX) != len(VY) {
		err = fmt.Errorf("vertex coordinate arrays differ in length: %d and %d", len(VX), len(VY))
		return
	}
	m = &Mesh{
		VX:       VX,
		VY:       VY,
		EToV:     make([][3]int, len(EToV)),
		CellTags: make([]int, len(EToV)),
		K:        len(EToV),
		Nv:       len(VX),
	}
	copy(m.EToV, EToV)
	if cellTags != nil {
		if len(cellTags) != len(EToV) {
			err = fmt.Errorf("have %d cell tags for %d cells", len(cellTags), len(EToV))
			return
		}
		copy(m.CellTags, cellTags)
	}
	for k := range m.EToV {
		for _, v := range m.EToV[k] {
			if v < 0 || v >= m.Nv {
				err = fmt.Errorf("cell %d references vertex %d, have %d vertices", k, v, m.Nv)
				return
			}
		}
		var (
			det = m.signedDet(k)
			h   = m.CellDiameter(k)
		)
		if math.Abs(det) < 1.e-14*h*h {
			err = fmt.Errorf("cell %d is degenerate, det = %g", k, det)
			return
		}
		if det < 0 {
			m.EToV[k][1], m.EToV[k][2] = m.EToV[k][2], m.EToV[k][1]
		}
	}
	if err = m.connect(boundaryTags); err != nil {
		return
	}
	return
}

func (m *Mesh) signedDet(k int) float64 {
	v := m.EToV[k]
	return (m.VX[v[1]]-m.VX[v[0]])*(m.VY[v[2]]-m.VY[v[0]]) -
		(m.VX[v[2]]-m.VX[v[0]])*(m.VY[v[1]]-m.VY[v[0]])
}

func (m *Mesh) connect(boundaryTags map[types.EdgeKey]int) (err error) {
	var (
		facetIndex = make(map[types.EdgeKey]int, 3*m.K/2+m.K)
	)
	m.CellFacets = make([][3]int, m.K)
	m.Facets = make([]Facet, 0, 3*m.K/2+m.K)
	for k, verts := range m.EToV {
		for e := 0; e < 3; e++ {
			a, b := LocalEdgeVertices(e)
			ek := types.NewEdgeKey([2]int{verts[a], verts[b]})
			fi, ok := facetIndex[ek]
			if !ok {
				fi = len(m.Facets)
				facetIndex[ek] = fi
				m.Facets = append(m.Facets, Facet{
					Verts:     [2]int{verts[a], verts[b]},
					Cells:     [2]int{k, -1},
					LocalEdge: [2]int{e, -1},
				})
			} else {
				f := &m.Facets[fi]
				if f.Cells[1] >= 0 {
					err = fmt.Errorf("edge [%d,%d] is shared by more than two cells", verts[a], verts[b])
					return
				}
				f.Cells[1] = k
				f.LocalEdge[1] = e
			}
			m.CellFacets[k][e] = fi
		}
	}
	for ek, tag := range boundaryTags {
		fi, ok := facetIndex[ek]
		if !ok {
			verts := ek.GetVertices(false)
			err = fmt.Errorf("tagged boundary edge [%d,%d] is not an edge of the mesh", verts[0], verts[1])
			return
		}
		if !m.Facets[fi].IsBoundary() {
			continue
		}
		m.Facets[fi].Tag = tag
	}
	return
}

// CellArea returns the area of cell k
func (m *Mesh) CellArea(k int) float64 {
	return 0.5 * math.Abs(m.signedDet(k))
}

// CellDiameter is the largest distance between two vertices of cell k
func (m *Mesh) CellDiameter(k int) (h float64) {
	v := m.EToV[k]
	for e := 0; e < 3; e++ {
		a, b := LocalEdgeVertices(e)
		h = math.Max(h, math.Hypot(m.VX[v[b]]-m.VX[v[a]], m.VY[v[b]]-m.VY[v[a]]))
	}
	return
}

func (m *Mesh) HMax() (h float64) {
	for k := 0; k < m.K; k++ {
		h = math.Max(h, m.CellDiameter(k))
	}
	return
}

func (m *Mesh) HMin() (h float64) {
	h = math.MaxFloat64
	for k := 0; k < m.K; k++ {
		h = math.Min(h, m.CellDiameter(k))
	}
	return
}

func (m *Mesh) FacetLength(fi int) float64 {
	f := m.Facets[fi]
	return math.Hypot(m.VX[f.Verts[1]]-m.VX[f.Verts[0]], m.VY[f.Verts[1]]-m.VY[f.Verts[0]])
}

// FacetNormal returns the unit normal of facet fi pointing out of Cells[0]
func (m *Mesh) FacetNormal(fi int) (n [2]float64) {
	var (
		f      = m.Facets[fi]
		dx, dy = m.VX[f.Verts[1]] - m.VX[f.Verts[0]], m.VY[f.Verts[1]] - m.VY[f.Verts[0]]
		l      = math.Hypot(dx, dy)
	)
	// Counter-clockwise traversal has the domain on the left
	n[0], n[1] = dy/l, -dx/l
	return
}

// FacetPoint maps t in [0,1] onto the facet
func (m *Mesh) FacetPoint(fi int, t float64) (x, y float64) {
	f := m.Facets[fi]
	x = (1-t)*m.VX[f.Verts[0]] + t*m.VX[f.Verts[1]]
	y = (1-t)*m.VY[f.Verts[0]] + t*m.VY[f.Verts[1]]
	return
}

// BoundaryTags returns the sorted set of tags found on boundary facets
func (m *Mesh) BoundaryTags() (tags []int) {
	seen := make(map[int]bool)
	for _, f := range m.Facets {
		if f.IsBoundary() && !seen[f.Tag] {
			seen[f.Tag] = true
			tags = append(tags, f.Tag)
		}
	}
	sort.Ints(tags)
	return
}

func (m *Mesh) NumBoundaryFacets() (n int) {
	for _, f := range m.Facets {
		if f.IsBoundary() {
			n++
		}
	}
	return
}

func (m *Mesh) NumInteriorFacets() int {
	return len(m.Facets) - m.NumBoundaryFacets()
}

func (m *Mesh) TotalArea() (a float64) {
	for k := 0; k < m.K; k++ {
		a += m.CellArea(k)
	}
	return
}

/*
Affine map from the unit reference triangle (r,s) in [(0,0),(1,0),(0,1)]:
	x = x0 + J [r,s]^T, J = [[x1-x0, x2-x0],[y1-y0, y2-y0]]
*/
type AffineMap struct {
	X0, Y0 float64
	J      [2][2]float64
	Jinv   [2][2]float64
	Det    float64
}

func (m *Mesh) CellMap(k int) (am AffineMap) {
	v := m.EToV[k]
	am.X0, am.Y0 = m.VX[v[0]], m.VY[v[0]]
	am.J[0][0], am.J[0][1] = m.VX[v[1]]-am.X0, m.VX[v[2]]-am.X0
	am.J[1][0], am.J[1][1] = m.VY[v[1]]-am.Y0, m.VY[v[2]]-am.Y0
	am.Det = am.J[0][0]*am.J[1][1] - am.J[0][1]*am.J[1][0]
	am.Jinv[0][0], am.Jinv[0][1] = am.J[1][1]/am.Det, -am.J[0][1]/am.Det
	am.Jinv[1][0], am.Jinv[1][1] = -am.J[1][0]/am.Det, am.J[0][0]/am.Det
	return
}

func (am AffineMap) ToPhysical(r, s float64) (x, y float64) {
	x = am.X0 + am.J[0][0]*r + am.J[0][1]*s
	y = am.Y0 + am.J[1][0]*r + am.J[1][1]*s
	return
}

func (am AffineMap) ToReference(x, y float64) (r, s float64) {
	dx, dy := x-am.X0, y-am.Y0
	r = am.Jinv[0][0]*dx + am.Jinv[0][1]*dy
	s = am.Jinv[1][0]*dx + am.Jinv[1][1]*dy
	return
}

// PhysicalGradient transforms a reference gradient with J^-T
func (am AffineMap) PhysicalGradient(dr, ds float64) (dx, dy float64) {
	dx = am.Jinv[0][0]*dr + am.Jinv[1][0]*ds
	dy = am.Jinv[0][1]*dr + am.Jinv[1][1]*ds
	return
}
