package main

import (
	"os"

	"github.com/smkim/qflow/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
