package main

import (
	"os"

	"github.com/mamisoa/lego/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
