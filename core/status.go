package core

// SessionStatus is the lifecycle state guarding re-entrant start/stop.
// Transitions: Stopped → Starting → Running → Stopping → Stopped.
type SessionStatus int32

const (
	StatusStopped SessionStatus = iota
	StatusStarting
	StatusRunning
	StatusStopping
)

// String returns the lowercase label used in logs and wire payloads.
func (s SessionStatus) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "stopped"
	}
}
