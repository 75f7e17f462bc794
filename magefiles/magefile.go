//go:build mage

// Package main provides build targets for tapegrad using Mage.
//
// Usage:
//
//	mage build          Compile tapegrad binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:bench     Run kernel benchmarks
//	mage lint           Run golangci-lint
//	mage gradcheck      Build and run the gradient check
//	mage clean          Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "tapegrad"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tapegrad"
)

// Build compiles the tapegrad binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test groups test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Bench runs the benchmarks of the kernel packages.
func (Test) Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "./internal/parallel/...", "./internal/autodiff/...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Gradcheck builds the binary and compares analytic with numerical
// gradients for every activation.
func Gradcheck() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "check")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}
