//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildGtpcsim)
	fmt.Println("Compilation finished")
	return nil
}

// cgoCommand runs the go tool with the HDF5 flags of the environment.
func cgoCommand(args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildGtpcsim() error {
	fmt.Println("Building gtpcsim executable...")
	return cgoCommand("build", "-o", "./bin/gtpcsim", "./gtpcsim").Run()
}

// Test runs the tests of every package.
func Test() error {
	fmt.Println("Running tests...")
	return cgoCommand("test", "./...").Run()
}
