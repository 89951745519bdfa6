package capability

import (
	"context"
	"strings"
	"time"
	"unicode"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/pkg/cancellation"

	"github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL is how long one capability snapshot stays valid.
	DefaultTTL = 1 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// Assessor derives per-provider cancellation capabilities. Registry-backed
// providers produce database-provenance snapshots; unknown providers fall
// back to name heuristics. Snapshots are cached for DefaultTTL; a race to
// repopulate an expired entry is benign because every writer computes an
// equivalent snapshot.
type Assessor struct {
	providers contract.ProviderRepository
	cache     *cache.Cache
	logger    logger.ILogger
	ttl       time.Duration
}

// NewAssessor creates a capability assessor with the standard TTL.
func NewAssessor(providers contract.ProviderRepository, log logger.ILogger) *Assessor {
	return &Assessor{
		providers: providers,
		cache:     cache.New(DefaultTTL, cleanupInterval),
		logger:    log,
		ttl:       DefaultTTL,
	}
}

// Assess returns the capability snapshot for a provider display name.
// An empty or unusable name yields a VALIDATION_ERROR.
func (a *Assessor) Assess(ctx context.Context, providerName string) (*entity.ProviderCapability, error) {
	normalized := Normalize(providerName)
	if normalized == "" {
		return nil, cancellation.NewError(cancellation.CodeValidationError, "provider name must be a non-empty string")
	}

	if cached, found := a.cache.Get(normalized); found {
		return cached.(*entity.ProviderCapability), nil
	}

	now := time.Now().UTC()
	capability := a.build(ctx, providerName, normalized, now)

	// Bound violations in registry data must never propagate; the heuristic
	// default takes over instead.
	if !capability.RatesInBounds() {
		a.logger.Warn("CapabilityAssessor", "Registry capability violates rate bounds, using heuristic default", map[string]interface{}{
			"provider": providerName,
		})
		capability = heuristicCapability(providerName, normalized, now, a.ttl)
	}

	a.cache.Set(normalized, capability, cache.DefaultExpiration)
	return capability, nil
}

func (a *Assessor) build(ctx context.Context, providerName, normalized string, now time.Time) *entity.ProviderCapability {
	provider, err := a.providers.FindOne(ctx, specification.ByNormalizedName{NormalizedName: normalized})
	if err != nil {
		a.logger.Warn("CapabilityAssessor", "Provider registry lookup failed, falling back to heuristics", map[string]interface{}{
			"provider": providerName,
			"error":    err.Error(),
		})
		return heuristicCapability(providerName, normalized, now, a.ttl)
	}
	if provider == nil {
		return heuristicCapability(providerName, normalized, now, a.ttl)
	}

	return &entity.ProviderCapability{
		ProviderName:          provider.Name,
		NormalizedName:        normalized,
		SupportsApi:           provider.SupportsApi,
		SupportsAutomation:    provider.SupportsAutomation,
		SupportsManual:        true,
		ApiSuccessRate:        provider.ApiSuccessRate,
		AutomationSuccessRate: provider.AutomationSuccessRate,
		ManualSuccessRate:     provider.ManualSuccessRate,
		ApiEstimatedMinutes:   provider.ApiEstimatedMinutes,
		AutoEstimatedMinutes:  provider.AutoEstimatedMinutes,
		ManualEstimatedMins:   provider.ManualEstimatedMins,
		Difficulty:            provider.Difficulty,
		Requires2FA:           provider.Requires2FA,
		HasRetentionOffers:    provider.HasRetentionOffers,
		DataSource:            entity.CapabilitySourceDatabase,
		LastAssessed:          now,
		ExpiresAt:             now.Add(a.ttl),
	}
}

// Normalize reduces a provider display name to its canonical cache/registry
// key: lowercase with every non-alphanumeric rune stripped.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
