// Command bikereport prints the dashboard's chart tables and detail panel
// from a rental CSV without starting the HTTP server.
//
// Usage:
//
//	bikereport seasons --year 2018
//	bikereport weekday --temp-min 20 --temp-max 25 --weekday Friday
//	bikereport detail 2018-06-01 --json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
