// Package version reports build information for the scribed binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/scribekit/version.Version=1.0.0"
//
// Values left empty are filled from the VCS stamp embedded by the Go
// toolchain when available.
package version
