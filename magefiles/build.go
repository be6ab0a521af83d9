//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for mytree using Mage.
//
// Usage:
//
//	mage build       Compile the mytree binary to bin/
//	mage test:all    Run every test
//	mage test:race   Run tests with the race detector
//	mage test:cover  Write coverage.out and print a summary
//	mage lint        Run golangci-lint
//	mage template    Write the xlsx data-entry template
//	mage clean       Remove build artifacts
//	mage install     Install mytree to GOPATH/bin
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "mytree"
	binaryDir  = "bin"
	cmdDir     = "./cmd/mytree"
	versionVar = "github.com/mesh-intelligence/mytree/internal/cli.Version"
)

// ldflags stamps the version from MYTREE_VERSION or the latest git tag.
func ldflags() string {
	version := os.Getenv("MYTREE_VERSION")
	if version == "" {
		if tag, err := sh.Output("git", "describe", "--tags", "--abbrev=0"); err == nil {
			version = strings.TrimPrefix(tag, "v")
		}
	}
	if version == "" {
		return ""
	}
	return "-X " + versionVar + "=" + version
}

// Build compiles the mytree binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Template builds the binary and writes the xlsx data-entry template.
func Template() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "template")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	_ = os.Remove("coverage.out")
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
