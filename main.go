package main

import (
	"os"

	"github.com/snowmapper/snowmapper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
