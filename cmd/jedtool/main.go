package main

import "github.com/OpenTraceLab/OpenTraceJED/cmd/jedtool/cmd"

func main() {
	cmd.Execute()
}
