//go:build tools
// +build tools

// Package tools pins development tool dependencies so `go run` in the
// go:generate directives (see internal/mocks/generate.go) resolves them
// from go.mod.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
