package model

// Readiness is the backend liveness state observed by the readiness probe.
type Readiness int

const (
	// ReadinessUnknown means no probe has finished yet.
	ReadinessUnknown Readiness = iota

	// ReadinessReady means the liveness endpoint answered with a 2xx status.
	ReadinessReady

	// ReadinessUnreachable means the probe timed out, failed, or got a non-2xx status.
	ReadinessUnreachable
)

// String returns a human-readable representation of the readiness state.
func (r Readiness) String() string {
	switch r {
	case ReadinessUnknown:
		return "unknown"
	case ReadinessReady:
		return "ready"
	case ReadinessUnreachable:
		return "unreachable"
	default:
		return "invalid"
	}
}

// Known reports whether a probe has produced a result.
func (r Readiness) Known() bool {
	return r == ReadinessReady || r == ReadinessUnreachable
}
