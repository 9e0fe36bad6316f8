package writefiles

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// WriteMatrix writes A densely, one row per line with space separated values
func WriteMatrix(w io.Writer, A mat.Matrix) (err error) {
	var (
		nr, nc = A.Dims()
		bw     = bufio.NewWriter(w)
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			sep := " "
			if j == nc-1 {
				sep = "\n"
			}
			if _, err = fmt.Fprintf(bw, "%.18e%s", A.At(i, j), sep); err != nil {
				return
			}
		}
	}
	return bw.Flush()
}

func WriteCSV(w io.Writer, header []string, rows [][]float64) (err error) {
	cw := csv.NewWriter(w)
	if err = cw.Write(header); err != nil {
		return
	}
	rec := make([]string, len(header))
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(header))
		}
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'e', -1, 64)
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV
func ReadCSV(r io.Reader) (header []string, rows [][]float64, err error) {
	var (
		records [][]string
	)
	if records, err = csv.NewReader(bufio.NewReader(r)).ReadAll(); err != nil {
		return
	}
	if len(records) == 0 {
		err = fmt.Errorf("empty csv table")
		return
	}
	header = records[0]
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, txt := range rec {
			if row[j], err = strconv.ParseFloat(txt, 64); err != nil {
				err = fmt.Errorf("row %d, column %s: %w", i+1, header[j], err)
				return
			}
		}
		rows = append(rows, row)
	}
	return
}
