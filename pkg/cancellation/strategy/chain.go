package strategy

import "unsubly-be/internal/entity"

// BuildFallbackChain orders the methods that will be attempted for one
// orchestration. The primary method leads; every other method the provider
// supports follows; manual closes the chain so there is always a last
// resort. The result is non-empty, duplicate-free and at most three long.
func BuildFallbackChain(primary entity.CancellationMethod, capability *entity.ProviderCapability) []entity.CancellationMethod {
	chain := []entity.CancellationMethod{primary}

	for _, method := range []entity.CancellationMethod{
		entity.CancellationMethodApi,
		entity.CancellationMethodAutomation,
	} {
		if method != primary && capability.Supports(method) {
			chain = append(chain, method)
		}
	}

	if primary != entity.CancellationMethodManual {
		chain = append(chain, entity.CancellationMethodManual)
	}

	return chain
}
