//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Serve builds the CLI and runs the HTTP API on :3001.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}

// Explain builds the CLI and generates a sample explanation, useful for
// checking API keys and provider settings.
func Explain() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "generate",
		"--prompt", "Explain how a hash map resolves collisions",
		"--block", "Definition,Example,Analogy",
	)
}
