// Command bitonicsort runs the distributed bitonic merge-sort engine over
// an in-process hypercube of rank goroutines.
package main

import "github.com/georrous6/bitonic-sort-mpi/cmd/bitonicsort/cmd"

func main() {
	cmd.Execute()
}
