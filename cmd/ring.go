/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gor13/geometry2D"
	"github.com/notargets/gor13/readfiles"
)

// RingCmd represents the ring command
var RingCmd = &cobra.Command{
	Use:   "ring",
	Short: "Write a structured annulus mesh in Gmsh 2.2 format",
	Long: `
Writes a structured triangulation of the ring r1 < R < r2 with tagged inner and
outer boundaries, for quick experiments without a mesh generator.

gor13 ring -o ring.msh --r1 0.5 --r2 2 --nr 4 --nt 32`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			rp RingParameters
		)
		rp.File, _ = cmd.Flags().GetString("output")
		rp.R1, _ = cmd.Flags().GetFloat64("r1")
		rp.R2, _ = cmd.Flags().GetFloat64("r2")
		rp.NRadial, _ = cmd.Flags().GetInt("nr")
		rp.NAngular, _ = cmd.Flags().GetInt("nt")
		rp.InnerTag, _ = cmd.Flags().GetInt("inner")
		rp.OuterTag, _ = cmd.Flags().GetInt("outer")
		if err := WriteRing(rp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

type RingParameters struct {
	File               string
	R1, R2             float64
	NRadial, NAngular  int
	InnerTag, OuterTag int
}

func init() {
	rootCmd.AddCommand(RingCmd)
	RingCmd.Flags().StringP("output", "o", "ring.msh", "mesh file to write")
	RingCmd.Flags().Float64("r1", 0.5, "inner radius")
	RingCmd.Flags().Float64("r2", 2.0, "outer radius")
	RingCmd.Flags().Int("nr", 4, "number of radial layers")
	RingCmd.Flags().Int("nt", 32, "number of angular divisions")
	RingCmd.Flags().Int("inner", 3000, "boundary tag of the inner circle")
	RingCmd.Flags().Int("outer", 3100, "boundary tag of the outer circle")
}

func WriteRing(rp RingParameters) (err error) {
	var (
		m    *geometry2D.Mesh
		file *os.File
	)
	if m, err = geometry2D.NewRingMesh(rp.R1, rp.R2, rp.NRadial, rp.NAngular, rp.InnerTag, rp.OuterTag); err != nil {
		return
	}
	if file, err = os.Create(rp.File); err != nil {
		return
	}
	if err = readfiles.WriteGmsh22(file, m); err != nil {
		_ = file.Close()
		return
	}
	return file.Close()
}
