package capability

import (
	"context"
	"errors"
	"testing"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/pkg/cancellation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProviderRepo struct {
	provider *entity.Provider
	err      error
	lookups  int
}

func (s *stubProviderRepo) Upsert(ctx context.Context, provider *entity.Provider) error {
	return nil
}

func (s *stubProviderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Provider, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	return s.provider, nil
}

func (s *stubProviderRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Provider, error) {
	if s.provider == nil {
		return nil, s.err
	}
	return []*entity.Provider{s.provider}, nil
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Netflix", "netflix"},
		{"Disney+", "disney"},
		{"Adobe Creative Cloud", "adobecreativecloud"},
		{"  HBO Max!  ", "hbomax"},
		{"O2 Mobile", "o2mobile"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestAssessRejectsEmptyProviderName(t *testing.T) {
	assessor := NewAssessor(&stubProviderRepo{}, logger.NopLogger{})

	for _, name := range []string{"", "   ", "!!!"} {
		_, err := assessor.Assess(context.Background(), name)
		require.Error(t, err)
		engineErr, ok := cancellation.AsEngineError(err)
		require.True(t, ok)
		assert.Equal(t, cancellation.CodeValidationError, engineErr.Code)
	}
}

func TestAssessUsesRegistryData(t *testing.T) {
	repo := &stubProviderRepo{
		provider: &entity.Provider{
			Name:               "Netflix",
			NormalizedName:     "netflix",
			SupportsApi:        true,
			SupportsAutomation: true,
			ApiSuccessRate:     0.92,
			ManualSuccessRate:  0.95,
			Difficulty:         entity.ProviderDifficultyEasy,
			HasRetentionOffers: true,
		},
	}
	assessor := NewAssessor(repo, logger.NopLogger{})

	capability, err := assessor.Assess(context.Background(), "Netflix")
	require.NoError(t, err)

	assert.Equal(t, entity.CapabilitySourceDatabase, capability.DataSource)
	assert.True(t, capability.SupportsApi)
	assert.True(t, capability.SupportsManual, "manual is always supported")
	assert.Equal(t, 0.92, capability.ApiSuccessRate)
}

func TestAssessHeuristicClasses(t *testing.T) {
	tests := []struct {
		name               string
		provider           string
		wantDifficulty     entity.ProviderDifficulty
		wantAutomation     bool
		wantRetentionOffer bool
	}{
		{"streaming", "Hulu Streaming", entity.ProviderDifficultyEasy, true, true},
		{"software", "Notion Workspace", entity.ProviderDifficultyMedium, true, true},
		{"utility", "City Electric Company", entity.ProviderDifficultyHard, false, false},
		{"other", "The Corner Gym", entity.ProviderDifficultyMedium, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessor := NewAssessor(&stubProviderRepo{}, logger.NopLogger{})

			capability, err := assessor.Assess(context.Background(), tt.provider)
			require.NoError(t, err)

			assert.Equal(t, entity.CapabilitySourceHeuristic, capability.DataSource)
			assert.Equal(t, tt.wantDifficulty, capability.Difficulty)
			assert.Equal(t, tt.wantAutomation, capability.SupportsAutomation)
			assert.Equal(t, tt.wantRetentionOffer, capability.HasRetentionOffers)
			assert.False(t, capability.SupportsApi, "api support is never assumed without registry data")
			assert.True(t, capability.SupportsManual)
		})
	}
}

func TestAssessCachesSnapshots(t *testing.T) {
	repo := &stubProviderRepo{
		provider: &entity.Provider{Name: "Spotify", NormalizedName: "spotify", ManualSuccessRate: 0.95},
	}
	assessor := NewAssessor(repo, logger.NopLogger{})

	first, err := assessor.Assess(context.Background(), "Spotify")
	require.NoError(t, err)
	second, err := assessor.Assess(context.Background(), "spotify!")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lookups, "second assessment must hit the cache")
	assert.Same(t, first, second)
}

func TestAssessFallsBackToHeuristicOnLookupFailure(t *testing.T) {
	repo := &stubProviderRepo{err: errors.New("connection refused")}
	assessor := NewAssessor(repo, logger.NopLogger{})

	capability, err := assessor.Assess(context.Background(), "Netflix")
	require.NoError(t, err)
	assert.Equal(t, entity.CapabilitySourceHeuristic, capability.DataSource)
}

func TestAssessSubstitutesHeuristicOnBoundViolation(t *testing.T) {
	repo := &stubProviderRepo{
		provider: &entity.Provider{
			Name:           "Netflix",
			NormalizedName: "netflix",
			SupportsApi:    true,
			ApiSuccessRate: 1.4, // out of bounds
		},
	}
	assessor := NewAssessor(repo, logger.NopLogger{})

	capability, err := assessor.Assess(context.Background(), "Netflix")
	require.NoError(t, err)

	assert.Equal(t, entity.CapabilitySourceHeuristic, capability.DataSource)
	assert.True(t, capability.RatesInBounds())
	assert.False(t, capability.SupportsApi)
}
