package cancellation

import "unsubly-be/internal/entity"

// MethodAuto lets the engine pick the method itself.
const MethodAuto = "auto"

// Preferences carries the caller's per-orchestration choices.
type Preferences struct {
	// PreferredMethod is "auto" or one of api/automation/manual.
	PreferredMethod string
	// AllowFallback permits trying the next method in the chain after a
	// failure. When false the first failure is terminal.
	AllowFallback bool
	// Notifications is forwarded verbatim to the automation collaborator.
	Notifications map[string]bool
}

// DefaultPreferences is what initiation uses when the caller sends nothing.
func DefaultPreferences() *Preferences {
	return &Preferences{
		PreferredMethod: MethodAuto,
		AllowFallback:   true,
	}
}

// ParseMethod validates a method string. The empty string and "auto" both
// mean automatic selection.
func ParseMethod(raw string) (entity.CancellationMethod, bool) {
	switch raw {
	case "", MethodAuto:
		return "", true
	case string(entity.CancellationMethodApi):
		return entity.CancellationMethodApi, true
	case string(entity.CancellationMethodAutomation):
		return entity.CancellationMethodAutomation, true
	case string(entity.CancellationMethodManual):
		return entity.CancellationMethodManual, true
	default:
		return "", false
	}
}
