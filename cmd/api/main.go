package main

import (
	"os"

	"github.com/noah-isme/nexus-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
