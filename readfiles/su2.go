package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gor13/geometry2D"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

func ReadSU2File(filename string) (m *geometry2D.Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	if m, err = ReadSU2(file); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

/*
ReadSU2 reads a two dimensional SU2 mesh of triangles. Marker labels are the
boundary ids of the solver and must be integers.
*/
func ReadSU2(r io.Reader) (m *geometry2D.Mesh, err error) {
	var (
		reader = bufio.NewReader(r)
		gm     = newGmshMesh()
		dim    int
	)
	if dim, err = readNumber(reader, "NDIME"); err != nil {
		return
	}
	if dim != 2 {
		err = fmt.Errorf("only two dimensional meshes are supported, have NDIME = %d", dim)
		return
	}
	// Elements come before the points they reference
	var elements [][3]int
	if elements, err = readElements(reader); err != nil {
		return
	}
	if err = readVertices(reader, gm); err != nil {
		return
	}
	for _, e := range elements {
		if err = gm.addElement(gmshTriangle, 0, e[:]); err != nil {
			return
		}
	}
	if err = readMarkers(reader, gm); err != nil {
		return
	}
	return gm.build()
}

func readElements(reader *bufio.Reader) (elements [][3]int, err error) {
	var (
		K     int
		vals  []int
		line  string
		nType SU2ElementType
	)
	if K, err = readNumber(reader, "NELEM"); err != nil {
		return
	}
	elements = make([][3]int, K)
	for k := 0; k < K; k++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if vals, err = atoiFields(strings.Fields(line)); err != nil {
			return
		}
		if len(vals) < 4 {
			err = fmt.Errorf("element %d: unable to read vertices from [%s]", k, line)
			return
		}
		if nType = SU2ElementType(vals[0]); nType != ELType_Triangle {
			err = fmt.Errorf("element %d: only triangles are supported, have type %d", k, nType)
			return
		}
		elements[k] = [3]int{vals[1], vals[2], vals[3]}
	}
	return
}

func readVertices(reader *bufio.Reader, gm *gmshMesh) (err error) {
	var (
		Nv   int
		line string
		x, y float64
	)
	if Nv, err = readNumber(reader, "NPOIN"); err != nil {
		return
	}
	for i := 0; i < Nv; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			err = fmt.Errorf("point %d: unable to read coordinates from [%s]", i, line)
			return
		}
		if x, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return
		}
		if y, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return
		}
		gm.addNode(i, x, y)
	}
	return
}

func readMarkers(reader *bufio.Reader, gm *gmshMesh) (err error) {
	var (
		NBCs, nEdges, tag int
		label, line       string
		vals              []int
	)
	if NBCs, err = readNumber(reader, "NMARK"); err != nil {
		return
	}
	for n := 0; n < NBCs; n++ {
		if label, err = getToken(reader, "MARKER_TAG"); err != nil {
			return
		}
		if tag, err = strconv.Atoi(label); err != nil {
			err = fmt.Errorf("marker %q is not an integer boundary id", label)
			return
		}
		if nEdges, err = readNumber(reader, "MARKER_ELEMS"); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			if line, err = getLine(reader); err != nil {
				return
			}
			if vals, err = atoiFields(strings.Fields(line)); err != nil {
				return
			}
			if len(vals) < 3 || SU2ElementType(vals[0]) != ELType_LINE {
				err = fmt.Errorf("marker %d: boundaries should only contain line elements in 2D, have [%s]", tag, line)
				return
			}
			if err = gm.addElement(gmshLine, tag, vals[1:3]); err != nil {
				return
			}
		}
	}
	return
}

// getToken returns the value of the next "KEY= value" line, skipping % comments
func getToken(reader *bufio.Reader, key string) (token string, err error) {
	var line string
	if line, err = getLineNoComments(reader); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		return
	}
	if k := strings.TrimSpace(line[:ind]); k != key {
		err = fmt.Errorf("expected %s, found %s", key, k)
		return
	}
	token = strings.TrimSpace(line[ind+1:])
	return
}

func readNumber(reader *bufio.Reader, key string) (num int, err error) {
	var token string
	if token, err = getToken(reader, key); err != nil {
		return
	}
	if num, err = strconv.Atoi(token); err != nil {
		err = fmt.Errorf("unable to read %s from token: [%s]", key, token)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	} else if err == io.EOF {
		err = fmt.Errorf("early end of file")
	}
	line = strings.TrimRight(line, "\r\n")
	return
}
