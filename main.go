package main

import "github.com/notargets/gor13/cmd"

func main() {
	cmd.Execute()
}
