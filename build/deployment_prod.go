//go:build !dev
// +build !dev

package build

const (
	// Deployment specifies a production build.
	Deployment = Production

	// LogLevel is unused in production builds, subsystem levels come
	// from the daemon's configuration.
	LogLevel = "info"
)
