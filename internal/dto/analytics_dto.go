package dto

// AnalyticsSummary is the headline numbers for the window.
type AnalyticsSummary struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"success_rate"`
}

// MethodStats is the per-method slice of the breakdown.
type MethodStats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	SuccessRate float64 `json:"success_rate"`
}

// ProviderStats aggregates one provider's history.
type ProviderStats struct {
	Total                int     `json:"total"`
	Completed            int     `json:"completed"`
	SuccessRate          float64 `json:"success_rate"`
	AvgCompletionMinutes float64 `json:"avg_completion_minutes"`
}

// TrendPoint is one day of the fixed 7-day trend.
type TrendPoint struct {
	Date      string `json:"date"`
	Requests  int    `json:"requests"`
	Successes int    `json:"successes"`
}

// UnifiedAnalyticsResponse is always fully populated; on empty input or a
// storage failure every field is its zero-valued structure.
type UnifiedAnalyticsResponse struct {
	Timeframe       string                   `json:"timeframe"`
	Summary         AnalyticsSummary         `json:"summary"`
	MethodBreakdown map[string]MethodStats   `json:"method_breakdown"`
	ProviderStats   map[string]ProviderStats `json:"provider_stats"`
	Trend           []TrendPoint             `json:"trend"`
}
