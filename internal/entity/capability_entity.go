package entity

import "time"

// CapabilitySource tags where a capability snapshot came from. The set is
// closed: a snapshot is either derived from the provider registry or from
// name-based heuristics, never a mix of the two.
type CapabilitySource string

const (
	CapabilitySourceDatabase  CapabilitySource = "database"
	CapabilitySourceHeuristic CapabilitySource = "heuristic"
)

// ProviderCapability is the derived, cached knowledge about a provider's
// cancellation support. It is immutable once produced; the assessor builds
// a fresh snapshot on every cache miss.
type ProviderCapability struct {
	ProviderName          string
	NormalizedName        string
	SupportsApi           bool
	SupportsAutomation    bool
	SupportsManual        bool
	ApiSuccessRate        float64
	AutomationSuccessRate float64
	ManualSuccessRate     float64
	ApiEstimatedMinutes   int
	AutoEstimatedMinutes  int
	ManualEstimatedMins   int
	Difficulty            ProviderDifficulty
	Requires2FA           bool
	HasRetentionOffers    bool
	DataSource            CapabilitySource
	LastAssessed          time.Time
	ExpiresAt             time.Time
}

// Supports reports whether the given method is available for this provider.
func (c *ProviderCapability) Supports(method CancellationMethod) bool {
	switch method {
	case CancellationMethodApi:
		return c.SupportsApi
	case CancellationMethodAutomation:
		return c.SupportsAutomation
	case CancellationMethodManual:
		return c.SupportsManual
	default:
		return false
	}
}

// RatesInBounds verifies the success-rate invariant (all rates in [0,1]).
func (c *ProviderCapability) RatesInBounds() bool {
	for _, r := range []float64{c.ApiSuccessRate, c.AutomationSuccessRate, c.ManualSuccessRate} {
		if r < 0 || r > 1 {
			return false
		}
	}
	return true
}
