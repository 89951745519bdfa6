package strategy

import (
	"unsubly-be/internal/entity"
	"unsubly-be/pkg/cancellation"
)

// Success-rate thresholds for the consensus heuristic. An API channel is
// only trusted outright when its historical success rate clears the high
// bar; automation gets picked either on rate or on provider traits that
// make a scripted browser flow worth it (2FA prompts, retention screens,
// hard flows).
const (
	apiRateThreshold        = 0.85
	automationRateThreshold = 0.7
)

// SelectMethod picks the primary cancellation method. It is a pure
// function: identical inputs always yield the identical method.
//
// An explicitly preferred method wins when the provider supports it.
// Otherwise the heuristic runs: api on a strong track record, automation
// when scripted flows are warranted, manual as the universal fallback.
func SelectMethod(capability *entity.ProviderCapability, preferred string, prefs *cancellation.Preferences) entity.CancellationMethod {
	if preferred == "" && prefs != nil {
		preferred = prefs.PreferredMethod
	}

	if method, ok := cancellation.ParseMethod(preferred); ok && method != "" {
		if capability.Supports(method) {
			return method
		}
	}

	if capability.SupportsApi && capability.ApiSuccessRate > apiRateThreshold {
		return entity.CancellationMethodApi
	}

	if capability.SupportsAutomation &&
		(capability.Requires2FA ||
			capability.HasRetentionOffers ||
			capability.Difficulty == entity.ProviderDifficultyHard ||
			capability.AutomationSuccessRate > automationRateThreshold) {
		return entity.CancellationMethodAutomation
	}

	return entity.CancellationMethodManual
}
