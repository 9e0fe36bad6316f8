package writefiles

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/gor13/CG2D"
	"github.com/notargets/gor13/geometry2D"
)

// Attribute is vertex centred data with NComp values per vertex, stored vertex by vertex
type Attribute struct {
	Name  string
	Type  string // Scalar, Vector or Tensor
	NComp int
	Data  []float64
}

/*
NewAttribute samples f at the mesh vertices. Vectors are padded to three components
and symmetric tensors expanded to a full 3x3 tensor with zero z entries, which is
what visualization tools expect in XDMF.
*/
func NewAttribute(name string, f *CG2D.Function) (a Attribute) {
	var (
		nv    = f.Space.Mesh.Nv
		comps = make([][]float64, f.Space.NumComponents())
	)
	for c := range comps {
		comps[c] = f.VertexValues(c)
	}
	a.Name = name
	switch f.Space.Rank {
	case 0:
		a.Type, a.NComp = "Scalar", 1
	case 1:
		a.Type, a.NComp = "Vector", 3
	case 2:
		a.Type, a.NComp = "Tensor", 9
	default:
		panic(fmt.Errorf("unsupported rank %d for XDMF attribute %s", f.Space.Rank, name))
	}
	a.Data = make([]float64, nv*a.NComp)
	for v := 0; v < nv; v++ {
		row := a.Data[v*a.NComp : (v+1)*a.NComp]
		switch f.Space.Rank {
		case 0:
			row[0] = comps[0][v]
		case 1:
			row[0], row[1] = comps[0][v], comps[1][v]
		case 2:
			xx, xy, yy := comps[0][v], comps[1][v], comps[2][v]
			row[0], row[1] = xx, xy
			row[3], row[4] = xy, yy
		}
	}
	return
}

type xdmfDoc struct {
	XMLName xml.Name   `xml:"Xdmf"`
	Version string     `xml:"Version,attr"`
	Domain  xdmfDomain `xml:"Domain"`
}

type xdmfDomain struct {
	Grid xdmfCollection `xml:"Grid"`
}

type xdmfCollection struct {
	Name           string   `xml:"Name,attr"`
	GridType       string   `xml:"GridType,attr"`
	CollectionType string   `xml:"CollectionType,attr"`
	Grid           xdmfGrid `xml:"Grid"`
}

type xdmfGrid struct {
	Name       string          `xml:"Name,attr"`
	GridType   string          `xml:"GridType,attr"`
	Topology   xdmfTopology    `xml:"Topology"`
	Geometry   xdmfGeometry    `xml:"Geometry"`
	Time       xdmfTime        `xml:"Time"`
	Attributes []xdmfAttribute `xml:"Attribute"`
}

type xdmfTopology struct {
	TopologyType     string       `xml:"TopologyType,attr"`
	NumberOfElements int          `xml:"NumberOfElements,attr"`
	NodesPerElement  int          `xml:"NodesPerElement,attr"`
	DataItem         xdmfDataItem `xml:"DataItem"`
}

type xdmfGeometry struct {
	GeometryType string       `xml:"GeometryType,attr"`
	DataItem     xdmfDataItem `xml:"DataItem"`
}

type xdmfTime struct {
	Value string `xml:"Value,attr"`
}

type xdmfAttribute struct {
	Name          string       `xml:"Name,attr"`
	AttributeType string       `xml:"AttributeType,attr"`
	Center        string       `xml:"Center,attr"`
	DataItem      xdmfDataItem `xml:"DataItem"`
}

type xdmfDataItem struct {
	Dimensions string `xml:"Dimensions,attr"`
	NumberType string `xml:"NumberType,attr,omitempty"`
	Precision  string `xml:"Precision,attr,omitempty"`
	Format     string `xml:"Format,attr"`
	Data       string `xml:",chardata"`
}

func formatRows(data []float64, ncol int) string {
	var sb strings.Builder
	sb.WriteString("\n")
	for i, v := range data {
		sb.WriteString(strconv.FormatFloat(v, 'g', 16, 64))
		if (i+1)%ncol == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func floatItem(rows, cols int, data []float64) xdmfDataItem {
	return xdmfDataItem{
		Dimensions: fmt.Sprintf("%d %d", rows, cols),
		NumberType: "Float",
		Precision:  "8",
		Format:     "XML",
		Data:       formatRows(data, cols),
	}
}

// WriteXDMF writes one time step of vertex data on m as an XDMF 3 document with inline XML data
func WriteXDMF(w io.Writer, name string, m *geometry2D.Mesh, time float64, attrs ...Attribute) (err error) {
	var (
		conn = make([]string, 0, m.K)
		xy   = make([]float64, 0, 2*m.Nv)
	)
	for _, verts := range m.EToV {
		conn = append(conn, fmt.Sprintf("%d %d %d", verts[0], verts[1], verts[2]))
	}
	for i := 0; i < m.Nv; i++ {
		xy = append(xy, m.VX[i], m.VY[i])
	}
	doc := xdmfDoc{Version: "3.0"}
	doc.Domain.Grid = xdmfCollection{
		Name:           "TimeSeries_" + name,
		GridType:       "Collection",
		CollectionType: "Temporal",
		Grid: xdmfGrid{
			Name:     "mesh",
			GridType: "Uniform",
			Topology: xdmfTopology{
				TopologyType:     "Triangle",
				NumberOfElements: m.K,
				NodesPerElement:  3,
				DataItem: xdmfDataItem{
					Dimensions: fmt.Sprintf("%d 3", m.K),
					NumberType: "UInt",
					Format:     "XML",
					Data:       "\n" + strings.Join(conn, "\n") + "\n",
				},
			},
			Geometry: xdmfGeometry{
				GeometryType: "XY",
				DataItem:     floatItem(m.Nv, 2, xy),
			},
			Time: xdmfTime{Value: strconv.FormatFloat(time, 'g', -1, 64)},
		},
	}
	for _, a := range attrs {
		if len(a.Data) != a.NComp*m.Nv {
			return fmt.Errorf("attribute %s has %d values, need %d", a.Name, len(a.Data), a.NComp*m.Nv)
		}
		doc.Domain.Grid.Grid.Attributes = append(doc.Domain.Grid.Grid.Attributes, xdmfAttribute{
			Name:          a.Name,
			AttributeType: a.Type,
			Center:        "Node",
			DataItem:      floatItem(m.Nv, a.NComp, a.Data),
		})
	}
	bw := bufio.NewWriter(w)
	if _, err = io.WriteString(bw, xml.Header); err != nil {
		return
	}
	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")
	if err = enc.Encode(doc); err != nil {
		return
	}
	if _, err = io.WriteString(bw, "\n"); err != nil {
		return
	}
	return bw.Flush()
}

// WriteXDMFFile creates the parent directories of filename and writes the XDMF document
func WriteXDMFFile(filename, name string, m *geometry2D.Mesh, time float64, attrs ...Attribute) (err error) {
	var f *os.File
	if err = os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return
	}
	if f, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteXDMF(f, name, m, time, attrs...); err != nil {
		_ = f.Close()
		return
	}
	return f.Close()
}
