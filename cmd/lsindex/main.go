package main

import (
	"os"

	"lsindex/src/cli"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
