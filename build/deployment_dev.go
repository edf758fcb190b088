//go:build dev
// +build dev

package build

const (
	// Deployment specifies a development build.
	Deployment = Development

	// LogLevel is the level applied to stdout loggers of development
	// builds, e.g. when running unit tests with the stdlog tag.
	LogLevel = "debug"
)
