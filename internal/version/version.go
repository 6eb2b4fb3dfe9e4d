// Package version carries build metadata injected at link time.
package version

// Set via -ldflags at build time.
var (
	// Version is the semantic release version.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
)
