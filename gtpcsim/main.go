package main

import (
	"os"
)

var logger Logger

func init() {
	logger = NewLogger(os.Stdout, os.Stderr)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
