package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/notargets/gor13/model_problems/R13"
	"github.com/notargets/gor13/writefiles"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "errors.csv file written by a convergence study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	header, rows := readCSV(csvFile)
	for _, name := range header {
		fmt.Printf("%14s", name)
	}
	fmt.Printf("\n")
	for _, row := range rows {
		for _, val := range row {
			fmt.Printf("%14.4e", val)
		}
		fmt.Printf("\n")
	}
	if len(rows) < 2 {
		fmt.Printf("need at least two meshes for convergence orders\n")
		return
	}
	fmt.Printf("Experimental orders of convergence\n")
	R13.PrintOrders(header, R13.Orders(rows))
}

func readCSV(csvFile string) (header []string, rows [][]float64) {
	var (
		err error
		f   *os.File
	)
	if f, err = os.Open(csvFile); err != nil {
		panic(err)
	}
	defer f.Close()
	if header, rows, err = writefiles.ReadCSV(bufio.NewReader(f)); err != nil {
		panic(err)
	}
	if len(header) == 0 || header[0] != "h" {
		panic(fmt.Errorf("%s: first column must be h, have %v", csvFile, header))
	}
	return
}
