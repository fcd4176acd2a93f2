// Package version provides build version information for flowcheck.
//
// Version, git commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/flowcheck/version.Version=1.2.0"
//
// Reports stamp the engine version so artifacts can be traced back to the
// build that produced them.
package version
