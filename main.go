package main

import (
	"os"

	"github.com/cxg1987/specbench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
