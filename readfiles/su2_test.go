package readfiles

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSU2(t *testing.T) {
	{ // Triangles, points and integer markers
		m, err := ReadSU2(bytes.NewReader(su2File))
		require.NoError(t, err)
		assert.Equal(t, 22, m.K)
		assert.Equal(t, 18, m.Nv)
		assert.InDelta(t, 200., m.TotalArea(), 1.e-9)
		assert.Equal(t, 12, m.NumBoundaryFacets())
		assert.Equal(t, []int{1, 2, 3, 4}, m.BoundaryTags())
		for _, f := range m.Facets {
			if f.IsBoundary() {
				assert.NotZero(t, f.Tag)
			}
		}
	}
	{ // Dispatch on the file extension
		dir := t.TempDir()
		filename := filepath.Join(dir, "square.su2")
		require.NoError(t, os.WriteFile(filename, su2File, 0644))
		m, err := ReadMesh(filename)
		require.NoError(t, err)
		assert.Equal(t, 22, m.K)
	}
	{ // Named markers are rejected
		input := strings.Replace(string(su2File), "MARKER_TAG= 3", "MARKER_TAG= top", 1)
		_, err := ReadSU2(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "top")
	}
	{ // Quadrilaterals are rejected
		input := strings.Replace(string(su2File), "5 5 6 13 0", "9 5 6 13 0", 1)
		_, err := ReadSU2(strings.NewReader(input))
		assert.Error(t, err)
	}
	{ // Truncated file
		_, err := ReadSU2(bytes.NewReader(su2File[:200]))
		assert.Error(t, err)
	}
	{ // Three dimensional meshes are rejected
		input := strings.Replace(string(su2File), "NDIME= 2", "NDIME= 3", 1)
		_, err := ReadSU2(strings.NewReader(input))
		assert.Error(t, err)
	}
}

var (
	su2File = []byte(` %This is an example input file in SU2 format, output from gmsh
% Comments can appear outside of data areas
NDIME= 2
% Comments can appear outside of data areas
NELEM= 22
5 5 6 13 0
5 9 10 12 1
5 12 5 13 2
5 9 12 13 3
5 13 6 14 4
5 12 10 15 5
5 8 9 13 6
5 4 5 12 7
5 1 7 14 8
5 6 1 14 9
5 3 11 15 10
5 10 3 15 11
5 8 13 16 12
5 4 12 17 13
5 13 14 16 14
5 12 15 17 15
5 7 2 16 16
5 11 0 17 17
5 2 8 16 18
5 0 4 17 19
5 14 7 16 20
5 15 11 17 21
% Comments can appear outside of data areas
NPOIN= 18
-10 0 0
10 0 1
10 10 2
-10 10 3
-5.000000000004944 0 4
-1.231725832440134e-11 0 5
4.99999999999384 0 6
10 4.999999999992398 7
5.000000000004944 10 8
1.231725832440134e-11 10 9
-4.99999999999384 10 10
-10 5 11
-2.500000000008632 4.330127018915808 12
2.50000000000863 5.669872981084192 13
6.712741669205853 3.668411415814691 14
-6.712741669205681 6.331588584184096 15
7.100939331384343 7.110089675963254 16
-7.100939331382065 2.889910324036197 17
NMARK= 4
% Comments can appear outside of data areas
MARKER_TAG= 1
% Comments can appear outside of data areas
MARKER_ELEMS= 2
3 3 11
3 11 0
% Comments can appear outside of data areas
MARKER_TAG= 2
MARKER_ELEMS= 2
3 1 7
3 7 2
% Comments can appear outside of data areas
MARKER_TAG= 3
MARKER_ELEMS= 4
3 2 8
3 8 9
3 9 10
3 10 3
MARKER_TAG= 4
% Comments can appear outside of data areas
MARKER_ELEMS= 4
3 0 4
3 4 5
3 5 6
3 6 1
% Comments can appear outside of data areas
`)
)
