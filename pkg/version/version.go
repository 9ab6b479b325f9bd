// Package version exposes the build version.
package version

// Version is the application version. Overridden at build time via
// -ldflags "-X liftlab/pkg/version.Version=v1.2.3".
var Version = "dev"
