package session

// Phase represents the session's connection lifecycle state.
type Phase uint8

const (
	// PhaseDisconnected means no link exists.
	PhaseDisconnected Phase = iota

	// PhaseConnecting means a connect attempt is in flight.
	PhaseConnecting

	// PhaseConnected means the link is up and idle.
	PhaseConnected

	// PhaseAwaitingResponse means a command has been written and the
	// response notification is outstanding.
	PhaseAwaitingResponse

	// PhaseFailed means the last attempt failed; the session will
	// retry or settle in PhaseDisconnected.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "Disconnected"
	case PhaseConnecting:
		return "Connecting"
	case PhaseConnected:
		return "Connected"
	case PhaseAwaitingResponse:
		return "AwaitingResponse"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
