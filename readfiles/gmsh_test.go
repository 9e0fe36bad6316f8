package readfiles

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/gor13/geometry2D"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square41 = `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
2
1 10 "bottom"
2 5 "domain"
$EndPhysicalNames
$Entities
0 1 1 0
1 0 0 0 1 0 0 1 10 0
1 0 0 0 1 1 0 1 5 0
$EndEntities
$Nodes
2 4 1 4
1 1 0 2
1
2
0 0 0
1 0 0
2 1 0 2
3
4
1 1 0
0 1 0
$EndNodes
$Elements
2 3 1 3
1 1 1 1
1 1 2
2 1 2 2
2 1 2 3
3 1 3 4
$EndElements
`

const square22 = `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
4
1 0 0 0
2 1 0 0
3 1 1 0
4 0 1 0
$EndNodes
$Elements
4
1 15 2 0 1 1
2 1 2 10 1 1 2
3 2 2 5 1 1 2 3
4 2 2 5 1 1 3 4
$EndElements
`

func checkSquare(t *testing.T, m *geometry2D.Mesh) {
	assert.Equal(t, 2, m.K)
	assert.Equal(t, 4, m.Nv)
	assert.Equal(t, []int{5, 5}, m.CellTags)
	assert.Equal(t, []int{0, 10}, m.BoundaryTags())
	assert.InDelta(t, 1., m.TotalArea(), 1.e-14)
	var tagged int
	for _, f := range m.Facets {
		if f.Tag == 10 {
			tagged++
			assert.ElementsMatch(t, []int{0, 1}, f.Verts[:])
		}
	}
	assert.Equal(t, 1, tagged)
}

func TestReadGmsh(t *testing.T) {
	{ // Format 4.1
		m, err := ReadGmsh41(strings.NewReader(square41))
		require.NoError(t, err)
		checkSquare(t, m)
	}
	{ // Format 2.2, point element is skipped
		m, err := ReadGmsh22(strings.NewReader(square22))
		require.NoError(t, err)
		checkSquare(t, m)
	}
	{ // Version detection from file
		dir := t.TempDir()
		for name, content := range map[string]string{"a.msh": square41, "b.msh": square22} {
			fn := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
			m, err := ReadMesh(fn)
			require.NoError(t, err)
			checkSquare(t, m)
		}
		_, err := ReadMesh(filepath.Join(dir, "c.xml"))
		assert.Error(t, err)
	}
	{ // Binary and malformed input
		binary := strings.Replace(square22, "2.2 0 8", "2.2 1 8", 1)
		_, err := ReadGmsh22(strings.NewReader(binary))
		assert.Error(t, err)
		_, err = gmshVersion(strings.NewReader(binary))
		assert.Error(t, err)
		truncated := square22[:strings.Index(square22, "3 2 2 5")]
		_, err = ReadGmsh22(strings.NewReader(truncated))
		assert.Error(t, err)
		badNode := strings.Replace(square22, "3 2 2 5 1 1 2 3", "3 2 2 5 1 1 2 9", 1)
		_, err = ReadGmsh22(strings.NewReader(badNode))
		assert.Error(t, err)
	}
	{ // Unreferenced nodes are dropped, the rest keep their file order
		withCenter := strings.Replace(square22, "4\n1 0 0 0\n", "5\n7 0.5 0.5 0\n1 0 0 0\n", 1)
		m, err := ReadGmsh22(strings.NewReader(withCenter))
		require.NoError(t, err)
		checkSquare(t, m)
		assert.Equal(t, []float64{0, 1, 1, 0}, m.VX)
		assert.Equal(t, []float64{0, 0, 1, 1}, m.VY)
	}
	{ // Higher order and quadrangle elements are reported, not skipped
		quadratic := strings.Replace(square22, "4 2 2 5 1 1 3 4", "4 9 2 5 1 1 3 4 1 2 3", 1)
		_, err := ReadGmsh22(strings.NewReader(quadratic))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type 9")
		curved := strings.Replace(square22, "2 1 2 10 1 1 2", "2 8 2 10 1 1 2 3", 1)
		_, err = ReadGmsh22(strings.NewReader(curved))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type 8")
		quads := strings.Replace(square41, "2 1 2 2\n2 1 2 3\n3 1 3 4", "2 1 3 1\n2 1 2 3 4", 1)
		quads = strings.Replace(quads, "2 3 1 3", "2 2 1 2", 1)
		_, err = ReadGmsh41(strings.NewReader(quads))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type 3")
		unknown := strings.Replace(square41, "2 1 2 2", "2 1 23 2", 1)
		_, err = ReadGmsh41(strings.NewReader(unknown))
		assert.Error(t, err)
	}
}

func TestWriteGmsh22(t *testing.T) {
	m, err := geometry2D.NewRingMesh(0.5, 2, 3, 16, 3000, 3100)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteGmsh22(&buf, m))
	m2, err := ReadGmsh22(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.K, m2.K)
	assert.Equal(t, m.Nv, m2.Nv)
	// every ring node is referenced, so the numbering survives the round trip
	assert.Equal(t, m.EToV, m2.EToV)
	assert.InDeltaSlice(t, m.VX, m2.VX, 1.e-15)
	assert.InDeltaSlice(t, m.VY, m2.VY, 1.e-15)
	assert.Equal(t, m.BoundaryTags(), m2.BoundaryTags())
	assert.Equal(t, m.NumBoundaryFacets(), m2.NumBoundaryFacets())
}
