//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the geoingest binary into the bin/ directory.
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", "./bin/geoingest", "./cmd/geoingest")
}

// Install copies the geoingest binary to /usr/local/bin.
func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing...")
	return sh.Run("cp", "bin/geoingest", "/usr/local/bin/geoingest")
}

// Test runs all tests in the project with verbose output.
func Test() error {
	fmt.Println("Running Tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestPipeline runs only the pipeline and sink tests, the quick loop while
// changing transforms.
func TestPipeline() error {
	fmt.Println("Running Pipeline Tests...")
	return sh.Run("go", "test", "-timeout", "60s", "./pipeline/...", "./sinks/...")
}

// Schema prints the MySQL DDL of every built-in dataset.
func Schema() error {
	mg.Deps(Build)
	for _, ds := range []string{"attraction", "fountain", "toilet"} {
		if err := sh.RunV("./bin/geoingest", "schema", ds); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes the bin directory and test outputs.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	if err := os.RemoveAll("test_output"); err != nil {
		return err
	}
	return nil
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Running go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Check runs formatting and linting checks (fmt, vet).
func Check() error {
	mg.Deps(Fmt, Vet)
	return nil
}

// Fmt runs go fmt ./...
func Fmt() error {
	fmt.Println("Running go fmt...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet ./...
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}
