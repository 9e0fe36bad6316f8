package writefiles

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/geometry2D"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func parseData(t *testing.T, txt string) (vals []float64) {
	for _, f := range strings.Fields(txt) {
		v, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err)
		vals = append(vals, v)
	}
	return
}

func TestWriteXDMF(t *testing.T) {
	m, err := geometry2D.NewRingMesh(0.5, 1, 2, 12, 3000, 3100)
	require.NoError(t, err)
	theta, err := CG2D.NewFunctionSpace("theta", m, 2, 0)
	require.NoError(t, err)
	s, err := CG2D.NewFunctionSpace("s", m, 1, 1)
	require.NoError(t, err)
	sigma, err := CG2D.NewFunctionSpace("sigma", m, 1, 2)
	require.NoError(t, err)
	ft, fs, fsig := CG2D.NewFunction(theta), CG2D.NewFunction(s), CG2D.NewFunction(sigma)
	require.NoError(t, ft.Interpolate(func(x, y float64) []float64 { return []float64{x + 2*y} }))
	require.NoError(t, fs.Interpolate(func(x, y float64) []float64 { return []float64{x, y} }))
	require.NoError(t, fsig.Interpolate(func(x, y float64) []float64 { return []float64{1, 2, 3} }))
	{
		a := NewAttribute("s", fs)
		assert.Equal(t, "Vector", a.Type)
		assert.Equal(t, 3*m.Nv, len(a.Data))
		assert.InDeltaSlice(t, []float64{m.VX[5], m.VY[5], 0}, a.Data[15:18], 1.e-15)
		a = NewAttribute("sigma", fsig)
		assert.Equal(t, "Tensor", a.Type)
		assert.Equal(t, []float64{1, 2, 0, 2, 3, 0, 0, 0, 0}, a.Data[:9])
	}
	{
		var (
			buf bytes.Buffer
			doc xdmfDoc
		)
		require.NoError(t, WriteXDMF(&buf, "theta", m, 2, NewAttribute("theta", ft)))
		assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
		require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
		grid := doc.Domain.Grid.Grid
		assert.Equal(t, "TimeSeries_theta", doc.Domain.Grid.Name)
		assert.Equal(t, m.K, grid.Topology.NumberOfElements)
		assert.Equal(t, "2", grid.Time.Value)
		conn := parseData(t, grid.Topology.DataItem.Data)
		require.Equal(t, 3*m.K, len(conn))
		assert.Equal(t, float64(m.EToV[m.K-1][2]), conn[3*m.K-1])
		xy := parseData(t, grid.Geometry.DataItem.Data)
		assert.Equal(t, 2*m.Nv, len(xy))
		require.Len(t, grid.Attributes, 1)
		assert.Equal(t, "Node", grid.Attributes[0].Center)
		vals := parseData(t, grid.Attributes[0].DataItem.Data)
		require.Equal(t, m.Nv, len(vals))
		for i := 0; i < m.Nv; i++ {
			assert.InDelta(t, m.VX[i]+2*m.VY[i], vals[i], 1.e-14)
		}
	}
	{
		fn := filepath.Join(t.TempDir(), "out", "theta_0.xdmf")
		require.NoError(t, WriteXDMFFile(fn, "theta", m, 0, NewAttribute("theta", ft)))
		_, err = os.Stat(fn)
		assert.NoError(t, err)
		bad := Attribute{Name: "bad", Type: "Scalar", NComp: 1, Data: []float64{1}}
		assert.Error(t, WriteXDMF(&bytes.Buffer{}, "bad", m, 0, bad))
	}
}

func TestWriteText(t *testing.T) {
	{
		var buf bytes.Buffer
		require.NoError(t, WriteMatrix(&buf, mat.NewDense(2, 2, []float64{1, -2, 0, 0.5})))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "1.000000000000000000e+00 -2.000000000000000000e+00", lines[0])
		assert.Equal(t, []float64{0, 0.5}, parseData(t, lines[1]))
	}
	{
		var buf bytes.Buffer
		header := []string{"h", "theta_L2"}
		rows := [][]float64{{0.5, 1.25e-3}, {0.25, 3.1e-4}}
		require.NoError(t, WriteCSV(&buf, header, rows))
		h, r, err := ReadCSV(&buf)
		require.NoError(t, err)
		assert.Equal(t, header, h)
		assert.Equal(t, rows, r)
		assert.Error(t, WriteCSV(&bytes.Buffer{}, header, [][]float64{{1}}))
		_, _, err = ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
		_, _, err = ReadCSV(strings.NewReader("h\nabc\n"))
		assert.Error(t, err)
	}
}
