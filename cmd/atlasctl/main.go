// Package main is the entry point for atlasctl.
//
// atlasctl lets operators run the cluster maintenance the service otherwise runs on its own:
// scheduled event cleanup, status refreshes and teardown of single clusters.
//
// For detailed usage information, run:
//
//	atlasctl --help
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Root(newServices).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
