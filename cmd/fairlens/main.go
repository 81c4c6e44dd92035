// Package main implements the fairlens command line tool. It inspects the
// column classification of CSV datasets, discretizes them into quartile
// bins and scores the local fidelity of a surrogate around each row.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
