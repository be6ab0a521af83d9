//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, race, cover).
type Test mg.Namespace

// All runs every package's tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs the tests with the race detector. The store, the debouncer
// and the dashboard are shared between goroutines.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes coverage.out and prints the per-function summary total.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	out, err := sh.Output(binGo, "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}
	lines := strings.Split(out, "\n")
	fmt.Println(lines[len(lines)-1])
	return nil
}
