// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// binaryPkgSuffix marks the package whose tests build and exec the binary.
const binaryPkgSuffix = "/cmd/cellbuf"

// Test groups test targets (all, unit, binary, cover).
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the library tests, excluding the binary tests.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, binaryPkgSuffix) {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Binary builds first, then runs the end-to-end binary tests.
func (Test) Binary() error {
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "-v", "."+binaryPkgSuffix)
}

// Cover runs all tests with the race detector and prints per-function
// coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-race", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}
