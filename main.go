package main

import (
	"os"

	"github.com/rpaudel/gardenwatch-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
