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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gor13/InputParameters"
	"github.com/notargets/gor13/model_problems/R13"
)

const exampleInput = `
########################################
case_name: heat_ring
meshes:
  - ring0.msh
  - ring1.msh
mode: heat # heat, stress or coupled
elements:
  theta: {shape: Lagrange, degree: 1}
  s: {shape: Lagrange, degree: 2}
stabilization:
  cip: {enable: true, delta_1: 1.0, delta_2: 1.0, delta_3: 0.01}
tau: 1.0
xi_tilde: 1.0
use_coeffs: true
heat_source: "2 - pow(x[0],2) - pow(x[1],2)"
mass_source: "0"
bcs:
  3000: {theta_w: 1.0, v_t: 0.0}
  3100: {theta_w: 0.5, v_t: 0.0}
convergence_study:
  enable: true
  exact_solution: exact.yml
solver: {name: direct}
########################################
`

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve the case described by an input file on each of its meshes",
	Long: `
Solves the case of the input file on each mesh, writes the solution fields and,
with the convergence study enabled, the errors and their experimental orders.

gor13 run -I input.yml [--mesh ring.msh] [--profile cpu|mem]`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		inputFile, _ := cmd.Flags().GetString("inputFile")
		meshes, _ := cmd.Flags().GetStringSlice("mesh")
		prof, _ := cmd.Flags().GetString("profile")
		if viper.IsSet("parallel") {
			parallel := viper.GetBool("parallel")
			err = Run(inputFile, meshes, prof, viper.GetBool("verbose"), &parallel)
		} else {
			err = Run(inputFile, meshes, prof, viper.GetBool("verbose"), nil)
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputFile", "I", "", "YAML file with the case parameters")
	RunCmd.Flags().StringSlice("mesh", nil, "Gmsh mesh files, replacing the meshes of the input file")
	RunCmd.Flags().String("profile", "", "write a cpu or mem profile of the run")
	RunCmd.Flags().Bool("parallel", true, "assemble in parallel")
	_ = viper.BindPFlag("parallel", RunCmd.Flags().Lookup("parallel"))
}

// Run solves the case of inputFile, parallel overrides the input file's setting when not nil
func Run(inputFile string, meshes []string, prof string, verbose bool, parallel *bool) (err error) {
	var (
		ip *InputParameters.R13Parameters
		cs *R13.ConvergenceStudy
	)
	if len(inputFile) == 0 {
		return fmt.Errorf("must supply an input parameters file (-I, --inputFile), for example:%s", exampleInput)
	}
	switch prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile %q, use cpu or mem", prof)
	}
	if ip, err = InputParameters.ReadFile(inputFile); err != nil {
		return
	}
	if len(meshes) != 0 {
		ip.Meshes = meshes
	}
	if parallel != nil {
		ip.Parallel = *parallel
	}
	if verbose {
		ip.Print()
	}
	if cs, err = R13.RunCase(ip, nil, verbose); err != nil {
		return
	}
	// RunCase reports errors and orders itself when verbose
	if ip.ConvergenceStudy.Enable && !verbose {
		cs.Errors[len(cs.Errors)-1].Print(cs.Mode)
		if len(cs.H) > 1 {
			fmt.Printf("Experimental orders of convergence\n")
			R13.PrintOrders(cs.Header(), cs.Orders())
		}
	}
	return
}
