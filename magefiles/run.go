//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and starts the application window.
func (Run) App() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run laplace...")
	if _, err := executeCmd("bin/laplace", withStream()); err != nil {
		return err
	}
	return nil
}
