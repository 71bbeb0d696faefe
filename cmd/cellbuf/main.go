// Package main provides the cellbuf CLI.
package main

import "github.com/mesh-intelligence/cellbuf/internal/cli"

func main() {
	cli.Execute()
}
