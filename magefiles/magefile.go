// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the tiledoc project using Mage.
//
// Usage:
//
//	mage build        Compile the tiledoc binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run tests in short mode
//	mage test:cover   Run tests with a coverage profile
//	mage lint         Run golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install tiledoc to GOPATH/bin
package main

// Default target when mage runs without arguments.
var Default = Build
