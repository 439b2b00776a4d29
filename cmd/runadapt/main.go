// Package main implements the runadapt CLI.
// It serves the sample application on any runtime and runs events through the
// Lambda adapter locally.
package main

import "github.com/runvoy/runadapt/cmd/runadapt/cmd"

func main() {
	cmd.Execute()
}
