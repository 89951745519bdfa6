package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRequestRepo struct {
	contract.CancellationRequestRepository
	requests []*entity.CancellationRequest
	err      error
}

func (s *stubRequestRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationRequest, error) {
	return s.requests, s.err
}

type stubSubscriptionRepo struct {
	contract.SubscriptionRepository
	subscriptions []*entity.Subscription
}

func (s *stubSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	return s.subscriptions, nil
}

type stubUow struct {
	unitofwork.UnitOfWork
	requests contract.CancellationRequestRepository
	subs     contract.SubscriptionRepository
}

func (u *stubUow) CancellationRequestRepository() contract.CancellationRequestRepository {
	return u.requests
}

func (u *stubUow) SubscriptionRepository() contract.SubscriptionRepository {
	return u.subs
}

func newStubUow(requests []*entity.CancellationRequest, err error, subs []*entity.Subscription) *stubUow {
	return &stubUow{
		requests: &stubRequestRepo{requests: requests, err: err},
		subs:     &stubSubscriptionRepo{subscriptions: subs},
	}
}

func completedRequest(subId uuid.UUID, method entity.CancellationMethod, minutes float64) *entity.CancellationRequest {
	created := time.Now().UTC().Add(-2 * time.Hour)
	completed := created.Add(time.Duration(minutes * float64(time.Minute)))
	return &entity.CancellationRequest{
		Id:             uuid.New(),
		SubscriptionId: subId,
		Method:         method,
		Status:         entity.CancellationStatusCompleted,
		CreatedAt:      created,
		CompletedAt:    &completed,
	}
}

func TestGetUnifiedAnalyticsEmptyInput(t *testing.T) {
	agg := NewAggregator(logger.NopLogger{})

	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow(nil, nil, nil), uuid.New(), TimeframeWeek)

	require.NotNil(t, res)
	assert.Equal(t, TimeframeWeek, res.Timeframe)
	assert.Zero(t, res.Summary.Total)
	assert.Zero(t, res.Summary.SuccessRate)
	assert.Empty(t, res.MethodBreakdown)
	assert.Empty(t, res.ProviderStats)
	require.Len(t, res.Trend, 7)
	for _, point := range res.Trend {
		assert.NotEmpty(t, point.Date)
		assert.Zero(t, point.Requests)
	}
}

func TestGetUnifiedAnalyticsStorageFailureYieldsEmpty(t *testing.T) {
	agg := NewAggregator(logger.NopLogger{})
	uow := newStubUow(nil, errors.New("connection refused"), nil)

	res := agg.GetUnifiedAnalytics(context.Background(), uow, uuid.New(), TimeframeMonth)

	require.NotNil(t, res)
	assert.Zero(t, res.Summary.Total)
	require.Len(t, res.Trend, 7)
}

func TestGetUnifiedAnalyticsUnknownTimeframeDefaultsToMonth(t *testing.T) {
	agg := NewAggregator(logger.NopLogger{})

	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow(nil, nil, nil), uuid.New(), "quarter")

	assert.Equal(t, TimeframeMonth, res.Timeframe)
}

func TestGetUnifiedAnalyticsSummaryAndBreakdown(t *testing.T) {
	subId := uuid.New()
	requests := []*entity.CancellationRequest{
		completedRequest(subId, entity.CancellationMethodApi, 10),
		completedRequest(subId, entity.CancellationMethodApi, 20),
		{
			Id: uuid.New(), SubscriptionId: subId,
			Method: entity.CancellationMethodApi, Status: entity.CancellationStatusFailed,
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		},
		{
			Id: uuid.New(), SubscriptionId: subId,
			Method: entity.CancellationMethodManual, Status: entity.CancellationStatusRequiresManual,
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		},
	}
	subs := []*entity.Subscription{{Id: subId, ProviderName: "Netflix"}}

	agg := NewAggregator(logger.NopLogger{})
	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow(requests, nil, subs), uuid.New(), TimeframeMonth)

	assert.Equal(t, 4, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.Completed)
	assert.Equal(t, 1, res.Summary.Failed)
	assert.Equal(t, 1, res.Summary.Pending)
	assert.InDelta(t, 0.5, res.Summary.SuccessRate, 1e-9)

	api := res.MethodBreakdown["api"]
	assert.Equal(t, 3, api.Total)
	assert.Equal(t, 2, api.Completed)
	assert.InDelta(t, 2.0/3.0, api.SuccessRate, 1e-9)

	netflix := res.ProviderStats["Netflix"]
	assert.Equal(t, 4, netflix.Total)
	assert.Equal(t, 2, netflix.Completed)
	assert.InDelta(t, 15, netflix.AvgCompletionMinutes, 1e-6)
}

func TestGetUnifiedAnalyticsNormalizesAutomationVariants(t *testing.T) {
	subId := uuid.New()
	requests := []*entity.CancellationRequest{
		completedRequest(subId, "automation", 5),
		completedRequest(subId, "web_automation", 5),
		completedRequest(subId, "browser_automation", 5),
	}

	agg := NewAggregator(logger.NopLogger{})
	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow(requests, nil, nil), uuid.New(), TimeframeMonth)

	require.Len(t, res.MethodBreakdown, 1)
	automation := res.MethodBreakdown["automation"]
	assert.Equal(t, 3, automation.Total)
	assert.Equal(t, 3, automation.Completed)
}

func TestGetUnifiedAnalyticsUnmappedSubscriptionFallsToUnknown(t *testing.T) {
	requests := []*entity.CancellationRequest{
		completedRequest(uuid.New(), entity.CancellationMethodApi, 5),
	}

	agg := NewAggregator(logger.NopLogger{})
	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow(requests, nil, nil), uuid.New(), TimeframeMonth)

	assert.Contains(t, res.ProviderStats, "unknown")
}

func TestGetUnifiedAnalyticsTrendCountsRecentRequests(t *testing.T) {
	subId := uuid.New()
	old := &entity.CancellationRequest{
		Id: uuid.New(), SubscriptionId: subId,
		Method: entity.CancellationMethodApi, Status: entity.CancellationStatusCompleted,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -20),
	}
	recent := completedRequest(subId, entity.CancellationMethodApi, 5)

	agg := NewAggregator(logger.NopLogger{})
	res := agg.GetUnifiedAnalytics(context.Background(), newStubUow([]*entity.CancellationRequest{old, recent}, nil, nil), uuid.New(), TimeframeMonth)

	require.Len(t, res.Trend, 7)
	var totalRequests, totalSuccesses int
	for _, point := range res.Trend {
		totalRequests += point.Requests
		totalSuccesses += point.Successes
	}
	assert.Equal(t, 1, totalRequests, "only the recent request falls inside the 7-day trend")
	assert.Equal(t, 1, totalSuccesses)
}
