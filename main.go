package main

import (
	"github.com/formfit/formfit/cmd"
)

// main is the entry point for the formfit CLI. All command-line parsing,
// configuration, and execution happens in the cmd package.
func main() {
	cmd.Execute()
}
