package main

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed VERSION
var Version string

func main() {
	if err := newRootCmd(strings.TrimSpace(Version)).Execute(); err != nil {
		os.Exit(1)
	}
}
