// Command ormc compiles declarative HTTP routing rules into a VCL-style
// cache-tier configuration and a load-balancer configuration.
package main

import (
	"fmt"
	"os"

	"github.com/svt/orm/cmd/ormc/cmd"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, buildDate)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
