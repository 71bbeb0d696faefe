//go:build mage

// Package main provides build targets for the cellbuf project using Mage.
//
// Usage:
//
//	mage build             Compile cellbuf binary to bin/
//	mage test:all          Run all tests
//	mage test:unit         Run library tests (skips the binary tests)
//	mage test:binary       Build, then run the end-to-end binary tests
//	mage test:cover        Run all tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install cellbuf to GOPATH/bin
//	mage stats             Print Go LOC and documentation word counts
package main

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "cellbuf"
	binaryDir  = "bin"
	cmdDir     = "./cmd/cellbuf"
	coverFile  = "coverage.out"
)
