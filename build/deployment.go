package build

// DeploymentType selects the flavour of towercheck a binary was compiled as.
type DeploymentType byte

const (
	// Development builds are compiled with the dev tag and default to
	// verbose stdout logging.
	Development DeploymentType = iota

	// Production builds log through the rotating file writer.
	Production
)

// String returns the name printed in the daemon's startup banner.
func (b DeploymentType) String() string {
	switch b {
	case Development:
		return "development"

	case Production:
		return "production"

	default:
		return "unknown"
	}
}
