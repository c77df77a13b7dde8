package main

import (
	"os"

	"github.com/tsinghua-fib-lab/jptax-sim/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
