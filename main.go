package main

import (
	"os"

	"github.com/GoodbyePlanet/vimark/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
