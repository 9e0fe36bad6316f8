package readfiles

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/types"
)

const (
	gmshLine     = 1
	gmshTriangle = 2
)

// ReadMesh reads a mesh file, dispatching on the file extension
func ReadMesh(filename string) (m *geometry2D.Mesh, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".msh":
		return ReadGmsh(filename)
	case ".su2":
		return ReadSU2File(filename)
	default:
		err = fmt.Errorf("unsupported mesh file type: %s", filename)
	}
	return
}

// ReadGmsh reads an ASCII Gmsh file in format 2.2 or 4.1
func ReadGmsh(filename string) (m *geometry2D.Mesh, err error) {
	var (
		data    []byte
		version string
	)
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	if version, err = gmshVersion(bytes.NewReader(data)); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
		return
	}
	switch {
	case strings.HasPrefix(version, "2"):
		m, err = ReadGmsh22(bytes.NewReader(data))
	case strings.HasPrefix(version, "4.1"):
		m, err = ReadGmsh41(bytes.NewReader(data))
	default:
		err = fmt.Errorf("unsupported Gmsh version: %s", version)
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func gmshVersion(r io.Reader) (version string, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "$MeshFormat" {
			continue
		}
		if !scanner.Scan() {
			err = fmt.Errorf("unexpected EOF after $MeshFormat")
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			err = fmt.Errorf("invalid MeshFormat line: %q", scanner.Text())
			return
		}
		if fields[1] != "0" {
			err = fmt.Errorf("binary Gmsh files are not supported")
			return
		}
		version = fields[0]
		return
	}
	err = fmt.Errorf("no $MeshFormat section found")
	return
}

// gmshMesh accumulates what we keep from a Gmsh file: nodes, triangles and tagged lines
type gmshMesh struct {
	nodeIndex map[int]int
	VX, VY    []float64
	EToV      [][3]int
	cellTags  []int
	lineTags  map[types.EdgeKey]int
}

func newGmshMesh() *gmshMesh {
	return &gmshMesh{
		nodeIndex: make(map[int]int),
		lineTags:  make(map[types.EdgeKey]int),
	}
}

func (gm *gmshMesh) addNode(tag int, x, y float64) {
	gm.nodeIndex[tag] = len(gm.VX)
	gm.VX = append(gm.VX, x)
	gm.VY = append(gm.VY, y)
}

func (gm *gmshMesh) lookup(nodeTags []int) (verts []int, err error) {
	verts = make([]int, len(nodeTags))
	for i, nt := range nodeTags {
		var ok bool
		if verts[i], ok = gm.nodeIndex[nt]; !ok {
			err = fmt.Errorf("element references unknown node %d", nt)
			return
		}
	}
	return
}

func (gm *gmshMesh) addElement(gmshType, physicalTag int, nodeTags []int) (err error) {
	var verts []int
	switch gmshType {
	case gmshLine:
		if verts, err = gm.lookup(nodeTags[:2]); err != nil {
			return
		}
		gm.lineTags[types.NewEdgeKey([2]int{verts[0], verts[1]})] = physicalTag
	case gmshTriangle:
		if verts, err = gm.lookup(nodeTags[:3]); err != nil {
			return
		}
		gm.EToV = append(gm.EToV, [3]int{verts[0], verts[1], verts[2]})
		gm.cellTags = append(gm.cellTags, physicalTag)
	default:
		if name, found := gmshUnsupported[gmshType]; found {
			err = fmt.Errorf("unsupported Gmsh element type %d (%s), only 3-node triangles and 2-node lines are read",
				gmshType, name)
		}
	}
	return
}

// build drops nodes that no triangle references, such as arc centers, and renumbers the rest in file order
func (gm *gmshMesh) build() (m *geometry2D.Mesh, err error) {
	if len(gm.EToV) == 0 {
		err = fmt.Errorf("mesh contains no triangles")
		return
	}
	var (
		referenced = make([]bool, len(gm.VX))
		newIndex   = make([]int, len(gm.VX))
		VX, VY     []float64
		EToV       = make([][3]int, len(gm.EToV))
		lineTags   = make(map[types.EdgeKey]int, len(gm.lineTags))
	)
	for _, verts := range gm.EToV {
		for _, v := range verts {
			referenced[v] = true
		}
	}
	for i := range newIndex {
		newIndex[i] = -1
		if referenced[i] {
			newIndex[i] = len(VX)
			VX = append(VX, gm.VX[i])
			VY = append(VY, gm.VY[i])
		}
	}
	for k, verts := range gm.EToV {
		for i, v := range verts {
			EToV[k][i] = newIndex[v]
		}
	}
	for ek, tag := range gm.lineTags {
		verts := ek.GetVertices(false)
		a, b := newIndex[verts[0]], newIndex[verts[1]]
		if a < 0 || b < 0 {
			err = fmt.Errorf("boundary line [%d,%d] is not attached to a triangle", verts[0], verts[1])
			return
		}
		lineTags[types.NewEdgeKey([2]int{a, b})] = tag
	}
	return geometry2D.NewMesh(VX, VY, EToV, gm.cellTags, lineTags)
}

// gmshNodesPerElement covers the element types we need to skip past in 2D files
var gmshNodesPerElement = map[int]int{
	1: 2, 2: 3, 3: 4, 8: 3, 9: 6, 10: 9, 15: 1, 16: 8, 20: 9, 21: 10,
}

// gmshUnsupported are curve and surface elements that would silently drop geometry if skipped
var gmshUnsupported = map[int]string{
	3:  "4-node quadrangle",
	8:  "3-node second order line",
	9:  "6-node second order triangle",
	10: "9-node second order quadrangle",
	16: "8-node second order quadrangle",
	20: "9-node incomplete third order triangle",
	21: "10-node third order triangle",
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	const maxScanTokenSize = 1024 * 1024 * 10
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	return scanner
}

func scanFields(scanner *bufio.Scanner, section string) (fields []string, err error) {
	if !scanner.Scan() {
		err = fmt.Errorf("unexpected EOF in %s", section)
		return
	}
	fields = strings.Fields(scanner.Text())
	return
}

func atoiFields(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			err = fmt.Errorf("invalid integer %q: %w", f, err)
			return
		}
	}
	return
}

func skipTo(scanner *bufio.Scanner, end string) (err error) {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == end {
			return
		}
	}
	return fmt.Errorf("missing %s", end)
}

// ReadGmsh22 reads the legacy ASCII format 2.2
func ReadGmsh22(r io.Reader) (m *geometry2D.Mesh, err error) {
	var (
		scanner = newScanner(r)
		gm      = newGmshMesh()
	)
	for scanner.Scan() {
		switch line := strings.TrimSpace(scanner.Text()); line {
		case "$MeshFormat":
			var fields []string
			if fields, err = scanFields(scanner, "MeshFormat"); err != nil {
				return
			}
			if len(fields) < 3 || fields[1] != "0" {
				err = fmt.Errorf("only ASCII Gmsh 2.2 is supported")
				return
			}
			err = skipTo(scanner, "$EndMeshFormat")
		case "$Nodes":
			err = readNodes22(scanner, gm)
		case "$Elements":
			err = readElements22(scanner, gm)
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				err = skipTo(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	return gm.build()
}

func readNodes22(scanner *bufio.Scanner, gm *gmshMesh) (err error) {
	var (
		fields   []string
		numNodes int
	)
	if fields, err = scanFields(scanner, "Nodes"); err != nil {
		return
	}
	if len(fields) != 1 {
		return fmt.Errorf("invalid number of nodes line")
	}
	if numNodes, err = strconv.Atoi(fields[0]); err != nil {
		return fmt.Errorf("invalid number of nodes: %w", err)
	}
	for i := 0; i < numNodes; i++ {
		if fields, err = scanFields(scanner, "Nodes"); err != nil {
			return
		}
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry %d", i+1)
		}
		var (
			tag  int
			x, y float64
		)
		if tag, err = strconv.Atoi(fields[0]); err != nil {
			return fmt.Errorf("invalid node ID: %w", err)
		}
		if x, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return fmt.Errorf("invalid coordinate: %w", err)
		}
		if y, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return fmt.Errorf("invalid coordinate: %w", err)
		}
		gm.addNode(tag, x, y)
	}
	return skipTo(scanner, "$EndNodes")
}

func readElements22(scanner *bufio.Scanner, gm *gmshMesh) (err error) {
	var (
		fields   []string
		numElems int
	)
	if fields, err = scanFields(scanner, "Elements"); err != nil {
		return
	}
	if len(fields) != 1 {
		return fmt.Errorf("invalid number of elements line")
	}
	if numElems, err = strconv.Atoi(fields[0]); err != nil {
		return fmt.Errorf("invalid number of elements: %w", err)
	}
	for i := 0; i < numElems; i++ {
		var vals []int
		if fields, err = scanFields(scanner, "Elements"); err != nil {
			return
		}
		if vals, err = atoiFields(fields); err != nil {
			return
		}
		// elm-number elm-type number-of-tags <tags> node-number-list
		if len(vals) < 3 {
			return fmt.Errorf("invalid element entry %d", i+1)
		}
		var (
			gmshType = vals[1]
			numTags  = vals[2]
			physical int
		)
		nNodes, known := gmshNodesPerElement[gmshType]
		if !known {
			continue
		}
		if len(vals) < 3+numTags+nNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d", vals[0], nNodes, len(vals)-3-numTags)
		}
		if numTags > 0 {
			physical = vals[3]
		}
		if err = gm.addElement(gmshType, physical, vals[3+numTags:3+numTags+nNodes]); err != nil {
			return
		}
	}
	return skipTo(scanner, "$EndElements")
}

// ReadGmsh41 reads the ASCII format 4.1, physical tags come from the $Entities section
func ReadGmsh41(r io.Reader) (m *geometry2D.Mesh, err error) {
	var (
		scanner = newScanner(r)
		gm      = newGmshMesh()
		// Physical tag of each (dimension, entity tag)
		physical = [4]map[int]int{{}, {}, {}, {}}
	)
	for scanner.Scan() {
		switch line := strings.TrimSpace(scanner.Text()); line {
		case "$MeshFormat":
			var fields []string
			if fields, err = scanFields(scanner, "MeshFormat"); err != nil {
				return
			}
			if len(fields) < 3 || fields[1] != "0" {
				err = fmt.Errorf("only ASCII Gmsh 4.1 is supported")
				return
			}
			err = skipTo(scanner, "$EndMeshFormat")
		case "$Entities":
			err = readEntities41(scanner, &physical)
		case "$Nodes":
			err = readNodes41(scanner, gm)
		case "$Elements":
			err = readElements41(scanner, gm, &physical)
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				err = skipTo(scanner, "$End"+line[1:])
			}
		}
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	return gm.build()
}

func readEntities41(scanner *bufio.Scanner, physical *[4]map[int]int) (err error) {
	var (
		fields []string
		counts []int
	)
	if fields, err = scanFields(scanner, "Entities"); err != nil {
		return
	}
	if counts, err = atoiFields(fields); err != nil {
		return
	}
	if len(counts) < 4 {
		return fmt.Errorf("invalid entity counts")
	}
	for dim := 0; dim < 4; dim++ {
		// Points carry a single coordinate triple, the rest a bounding box
		physOffset := 7
		if dim == 0 {
			physOffset = 4
		}
		for i := 0; i < counts[dim]; i++ {
			if fields, err = scanFields(scanner, "Entities"); err != nil {
				return
			}
			if len(fields) < physOffset+1 {
				return fmt.Errorf("invalid entity of dimension %d", dim)
			}
			var tag, numPhys int
			if tag, err = strconv.Atoi(fields[0]); err != nil {
				return fmt.Errorf("invalid entity tag: %w", err)
			}
			if numPhys, err = strconv.Atoi(fields[physOffset]); err != nil {
				return fmt.Errorf("invalid physical tag count: %w", err)
			}
			if numPhys > 0 {
				if len(fields) < physOffset+1+numPhys {
					return fmt.Errorf("entity %d: missing physical tags", tag)
				}
				var pt int
				if pt, err = strconv.Atoi(fields[physOffset+1]); err != nil {
					return fmt.Errorf("invalid physical tag: %w", err)
				}
				// Gmsh allows negative physical tags for reversed orientation
				if pt < 0 {
					pt = -pt
				}
				physical[dim][tag] = pt
			}
		}
	}
	return skipTo(scanner, "$EndEntities")
}

func readNodes41(scanner *bufio.Scanner, gm *gmshMesh) (err error) {
	var (
		fields []string
		header []int
	)
	if fields, err = scanFields(scanner, "Nodes"); err != nil {
		return
	}
	// numEntityBlocks numNodes minNodeTag maxNodeTag
	if header, err = atoiFields(fields); err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Nodes header")
	}
	for b := 0; b < header[0]; b++ {
		var block []int
		if fields, err = scanFields(scanner, "Nodes"); err != nil {
			return
		}
		// entityDim entityTag parametric numNodesInBlock
		if block, err = atoiFields(fields); err != nil || len(block) < 4 {
			return fmt.Errorf("invalid node block header")
		}
		numInBlock := block[3]
		tags := make([]int, numInBlock)
		for j := range tags {
			if fields, err = scanFields(scanner, "Nodes"); err != nil {
				return
			}
			if len(fields) != 1 {
				return fmt.Errorf("invalid node tag line")
			}
			if tags[j], err = strconv.Atoi(fields[0]); err != nil {
				return fmt.Errorf("invalid node tag: %w", err)
			}
		}
		for j := range tags {
			var x, y float64
			if fields, err = scanFields(scanner, "Nodes"); err != nil {
				return
			}
			if len(fields) < 3 {
				return fmt.Errorf("invalid node coordinate line")
			}
			if x, err = strconv.ParseFloat(fields[0], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
			if y, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %w", err)
			}
			gm.addNode(tags[j], x, y)
		}
	}
	return skipTo(scanner, "$EndNodes")
}

func readElements41(scanner *bufio.Scanner, gm *gmshMesh, physical *[4]map[int]int) (err error) {
	var (
		fields []string
		header []int
	)
	if fields, err = scanFields(scanner, "Elements"); err != nil {
		return
	}
	// numEntityBlocks numElements minElementTag maxElementTag
	if header, err = atoiFields(fields); err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Elements header")
	}
	for b := 0; b < header[0]; b++ {
		var block []int
		if fields, err = scanFields(scanner, "Elements"); err != nil {
			return
		}
		// entityDim entityTag elementType numElementsInBlock
		if block, err = atoiFields(fields); err != nil || len(block) < 4 {
			return fmt.Errorf("invalid element block header")
		}
		var (
			dim, entity, gmshType, numInBlock = block[0], block[1], block[2], block[3]
			tag                               int
		)
		if dim >= 0 && dim < 4 {
			tag = physical[dim][entity]
		}
		nNodes, known := gmshNodesPerElement[gmshType]
		if !known && dim == 2 {
			return fmt.Errorf("unsupported Gmsh surface element type %d", gmshType)
		}
		for j := 0; j < numInBlock; j++ {
			var vals []int
			if fields, err = scanFields(scanner, "Elements"); err != nil {
				return
			}
			if !known {
				continue
			}
			if vals, err = atoiFields(fields); err != nil {
				return
			}
			if len(vals) < 1+nNodes {
				return fmt.Errorf("element block %d entry %d: expected %d nodes", b, j, nNodes)
			}
			if err = gm.addElement(gmshType, tag, vals[1:1+nNodes]); err != nil {
				return
			}
		}
	}
	return skipTo(scanner, "$EndElements")
}

// WriteGmsh22 writes the mesh in ASCII Gmsh 2.2, tagged boundary facets become line elements
func WriteGmsh22(w io.Writer, m *geometry2D.Mesh) (err error) {
	var (
		bw    = bufio.NewWriter(w)
		lines []int
	)
	for fi, f := range m.Facets {
		if f.IsBoundary() && f.Tag != 0 {
			lines = append(lines, fi)
		}
	}
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	fmt.Fprintf(bw, "$Nodes\n%d\n", m.Nv)
	for i := 0; i < m.Nv; i++ {
		fmt.Fprintf(bw, "%d %.17g %.17g 0\n", i+1, m.VX[i], m.VY[i])
	}
	fmt.Fprintf(bw, "$EndNodes\n$Elements\n%d\n", len(lines)+m.K)
	id := 1
	for _, fi := range lines {
		f := m.Facets[fi]
		fmt.Fprintf(bw, "%d %d 2 %d %d %d %d\n", id, gmshLine, f.Tag, f.Tag, f.Verts[0]+1, f.Verts[1]+1)
		id++
	}
	for k := 0; k < m.K; k++ {
		v := m.EToV[k]
		fmt.Fprintf(bw, "%d %d 2 %d %d %d %d %d\n", id, gmshTriangle, m.CellTags[k], m.CellTags[k], v[0]+1, v[1]+1, v[2]+1)
		id++
	}
	fmt.Fprintf(bw, "$EndElements\n")
	return bw.Flush()
}
