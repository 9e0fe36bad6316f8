package geometry2D

import (
	"fmt"
	"math"

	"github.com/notargets/gor13/types"
)

/*
NewRingMesh triangulates the annulus r1 < R < r2 with nRadial layers of nAngular
quadrilaterals, each split into two triangles. The diagonal alternates between
layers so the mesh has no preferred direction. Edges on R = r1 carry innerTag and
edges on R = r2 carry outerTag.
*/
func NewRingMesh(r1, r2 float64, nRadial, nAngular int, innerTag, outerTag int) (m *Mesh, err error) {
	switch {
	case r1 <= 0 || r2 <= r1:
		err = fmt.Errorf("ring radii must satisfy 0 < r1 < r2, have r1 = %g, r2 = %g", r1, r2)
		return
	case nRadial < 1:
		err = fmt.Errorf("need at least one radial layer, have %d", nRadial)
		return
	case nAngular < 3:
		err = fmt.Errorf("need at least three angular divisions, have %d", nAngular)
		return
	}
	var (
		Nv       = (nRadial + 1) * nAngular
		VX, VY   = make([]float64, Nv), make([]float64, Nv)
		EToV     = make([][3]int, 0, 2*nRadial*nAngular)
		tags     = make(map[types.EdgeKey]int, 2*nAngular)
		vertexID = func(i, j int) int { return i*nAngular + (j % nAngular) }
	)
	for i := 0; i <= nRadial; i++ {
		r := r1 + (r2-r1)*float64(i)/float64(nRadial)
		for j := 0; j < nAngular; j++ {
			phi := 2 * math.Pi * float64(j) / float64(nAngular)
			VX[vertexID(i, j)], VY[vertexID(i, j)] = r*math.Cos(phi), r*math.Sin(phi)
		}
	}
	for i := 0; i < nRadial; i++ {
		for j := 0; j < nAngular; j++ {
			var (
				v00, v01 = vertexID(i, j), vertexID(i, j+1)
				v10, v11 = vertexID(i+1, j), vertexID(i+1, j+1)
			)
			if (i+j)%2 == 0 {
				EToV = append(EToV, [3]int{v00, v01, v11}, [3]int{v00, v11, v10})
			} else {
				EToV = append(EToV, [3]int{v00, v01, v10}, [3]int{v01, v11, v10})
			}
		}
	}
	for j := 0; j < nAngular; j++ {
		tags[types.NewEdgeKey([2]int{vertexID(0, j), vertexID(0, j+1)})] = innerTag
		tags[types.NewEdgeKey([2]int{vertexID(nRadial, j), vertexID(nRadial, j+1)})] = outerTag
	}
	return NewMesh(VX, VY, EToV, nil, tags)
}
