// Package main provides the go-provision CLI tool for inspecting Apple
// provisioning profiles.
//
// For the library API, see the provision subpackage:
//
//	import "github.com/aluedeke/go-provision/pkg/provision"
//
// # Installation
//
// Install the CLI:
//
//	go install github.com/aluedeke/go-provision@latest
package main
