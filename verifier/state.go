package verifier

// State is a step of the verification state machine. Verifications move
// strictly forward through the states until they reach StateVerified or
// StateFailed.
type State uint8

const (
	// StateStart is the state of a verification that has not passed any
	// check yet.
	StateStart State = iota

	// StateChainValidated is reached once all receipt signatures check
	// out.
	StateChainValidated

	// StateWindowChecked is reached once the appointment is known to lie
	// within the subscription.
	StateWindowChecked

	// StateChainCrossReferenced is reached once the broadcast
	// transaction matched the appointment.
	StateChainCrossReferenced

	// StateVerified is the terminal success state.
	StateVerified

	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns a human readable name of the state.
func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateChainValidated:
		return "ChainValidated"
	case StateWindowChecked:
		return "WindowChecked"
	case StateChainCrossReferenced:
		return "ChainCrossReferenced"
	case StateVerified:
		return "Verified"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
