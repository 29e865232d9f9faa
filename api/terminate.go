package api

// TerminateReason enumerates why a session ended, delivered via the
// synthetic connect-terminate command (spec.md section 7).
type TerminateReason uint8

const (
	TerminateNone TerminateReason = iota
	TerminateRequested
	TerminatePeerClosed
	TerminateMalformed
	TerminateTransportLost
	TerminateTimeout
	TerminateAuthFailed
)

// Fatal reports whether this reason always ends the session (spec.md
// section 7: "Fatal (session-terminating): Malformed, TransportLost,
// Timeout, AuthFailed"). TerminateRequested and TerminatePeerClosed
// are also terminal by construction — a session never continues past
// its own terminate command — so Fatal is true for every reason
// except the zero value.
func (r TerminateReason) Fatal() bool {
	return r != TerminateNone
}
