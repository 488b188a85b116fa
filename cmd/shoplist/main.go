// Package main is the entry point for the shoplist CLI.
package main

import "github.com/shoplist/shoplist-cli/internal/cli"

func main() {
	cli.Execute()
}
