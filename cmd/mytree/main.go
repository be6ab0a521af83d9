// Package main is the mytree command.
package main

import "github.com/mesh-intelligence/mytree/internal/cli"

func main() {
	cli.Execute()
}
