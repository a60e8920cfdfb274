package main

import (
	"os"

	"github.com/georgekikalishvili83/gzipper/cmd/gzipper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
