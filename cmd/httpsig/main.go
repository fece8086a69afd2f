package main

import (
	"os"

	"github.com/offblocks/httpsig-draft/cmd/httpsig/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
