package analytics

import (
	"context"
	"time"

	"unsubly-be/internal/dto"
	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Timeframe windows.
const (
	TimeframeDay   = "day"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"

	trendDays = 7
)

// Aggregator derives success-rate, method, provider and trend statistics
// from historical cancellation requests.
type Aggregator struct {
	logger logger.ILogger
}

// NewAggregator creates an analytics aggregator
func NewAggregator(log logger.ILogger) *Aggregator {
	return &Aggregator{logger: log}
}

// GetUnifiedAnalytics computes the full statistics block for one user's
// window. It never fails: empty input and storage errors both yield an
// all-zero structure.
func (a *Aggregator) GetUnifiedAnalytics(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, timeframe string) *dto.UnifiedAnalyticsResponse {
	res := emptyResponse(timeframe)

	since := time.Now().UTC().Add(-windowFor(timeframe))
	requests, err := uow.CancellationRequestRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.CreatedAfter{Time: since},
	)
	if err != nil {
		a.logger.Warn("AnalyticsAggregator", "Failed to load cancellation requests, returning empty analytics", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return res
	}
	if len(requests) == 0 {
		return res
	}

	providerNames := a.providerNames(ctx, uow, userId)

	for _, req := range requests {
		res.Summary.Total++
		switch req.Status {
		case entity.CancellationStatusCompleted:
			res.Summary.Completed++
		case entity.CancellationStatusFailed:
			res.Summary.Failed++
		case entity.CancellationStatusPending, entity.CancellationStatusProcessing,
			entity.CancellationStatusScheduled, entity.CancellationStatusRequiresManual:
			res.Summary.Pending++
		}

		method := normalizeMethod(string(req.Method))
		ms := res.MethodBreakdown[method]
		ms.Total++
		if req.Status == entity.CancellationStatusCompleted {
			ms.Completed++
		}
		res.MethodBreakdown[method] = ms

		provider := providerNames[req.SubscriptionId]
		if provider == "" {
			provider = "unknown"
		}
		ps := res.ProviderStats[provider]
		ps.Total++
		if req.Status == entity.CancellationStatusCompleted {
			ps.Completed++
			if req.CompletedAt != nil {
				minutes := req.CompletedAt.Sub(req.CreatedAt).Minutes()
				// Running mean over successes only.
				ps.AvgCompletionMinutes += (minutes - ps.AvgCompletionMinutes) / float64(ps.Completed)
			}
		}
		res.ProviderStats[provider] = ps
	}

	if res.Summary.Total > 0 {
		res.Summary.SuccessRate = float64(res.Summary.Completed) / float64(res.Summary.Total)
	}
	for method, ms := range res.MethodBreakdown {
		if ms.Total > 0 {
			ms.SuccessRate = float64(ms.Completed) / float64(ms.Total)
			res.MethodBreakdown[method] = ms
		}
	}
	for provider, ps := range res.ProviderStats {
		if ps.Total > 0 {
			ps.SuccessRate = float64(ps.Completed) / float64(ps.Total)
			res.ProviderStats[provider] = ps
		}
	}

	a.fillTrend(res, requests)
	return res
}

// providerNames maps the user's subscription ids to provider names so
// requests can be bucketed per provider.
func (a *Aggregator) providerNames(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)
	subs, err := uow.SubscriptionRepository().FindAll(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		a.logger.Warn("AnalyticsAggregator", "Failed to load subscriptions for provider stats", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return names
	}
	for _, sub := range subs {
		names[sub.Id] = sub.ProviderName
	}
	return names
}

// fillTrend populates the fixed last-7-days request/success counts.
func (a *Aggregator) fillTrend(res *dto.UnifiedAnalyticsResponse, requests []*entity.CancellationRequest) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	byDate := make(map[string]int)
	for i := range res.Trend {
		byDate[res.Trend[i].Date] = i
	}

	for _, req := range requests {
		date := req.CreatedAt.UTC().Truncate(24 * time.Hour)
		if date.Before(today.AddDate(0, 0, -(trendDays-1))) || date.After(today) {
			continue
		}
		idx, ok := byDate[date.Format("2006-01-02")]
		if !ok {
			continue
		}
		res.Trend[idx].Requests++
		if req.Status == entity.CancellationStatusCompleted {
			res.Trend[idx].Successes++
		}
	}
}

// normalizeMethod folds the automation channel's internal naming variants
// into one bucket.
func normalizeMethod(method string) string {
	switch method {
	case "automation", "web_automation", "browser_automation", "web":
		return string(entity.CancellationMethodAutomation)
	case "api", "manual":
		return method
	default:
		return method
	}
}

func windowFor(timeframe string) time.Duration {
	switch timeframe {
	case TimeframeDay:
		return 24 * time.Hour
	case TimeframeWeek:
		return 7 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

func emptyResponse(timeframe string) *dto.UnifiedAnalyticsResponse {
	if timeframe != TimeframeDay && timeframe != TimeframeWeek && timeframe != TimeframeMonth {
		timeframe = TimeframeMonth
	}

	trend := make([]dto.TrendPoint, trendDays)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < trendDays; i++ {
		trend[i] = dto.TrendPoint{
			Date: today.AddDate(0, 0, -(trendDays - 1 - i)).Format("2006-01-02"),
		}
	}

	return &dto.UnifiedAnalyticsResponse{
		Timeframe:       timeframe,
		Summary:         dto.AnalyticsSummary{},
		MethodBreakdown: make(map[string]dto.MethodStats),
		ProviderStats:   make(map[string]dto.ProviderStats),
		Trend:           trend,
	}
}
