package dto

import "time"

// ProviderCapabilityResponse exposes the assessed capability for a provider.
type ProviderCapabilityResponse struct {
	ProviderName          string    `json:"provider_name"`
	SupportsApi           bool      `json:"supports_api"`
	SupportsAutomation    bool      `json:"supports_automation"`
	SupportsManual        bool      `json:"supports_manual"`
	ApiSuccessRate        float64   `json:"api_success_rate"`
	AutomationSuccessRate float64   `json:"automation_success_rate"`
	ManualSuccessRate     float64   `json:"manual_success_rate"`
	ApiEstimatedMinutes   int       `json:"api_estimated_minutes"`
	AutoEstimatedMinutes  int       `json:"automation_estimated_minutes"`
	ManualEstimatedMins   int       `json:"manual_estimated_minutes"`
	Difficulty            string    `json:"difficulty"`
	Requires2FA           bool      `json:"requires_2fa"`
	HasRetentionOffers    bool      `json:"has_retention_offers"`
	DataSource            string    `json:"data_source"` // database, heuristic
	LastAssessed          time.Time `json:"last_assessed"`
}

// SubscriptionResponse is the minimal subscription view the cancellation
// surfaces need.
type SubscriptionResponse struct {
	Id            string     `json:"id"`
	Name          string     `json:"name"`
	ProviderName  string     `json:"provider_name"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	BillingPeriod string     `json:"billing_period"`
	Status        string     `json:"status"`
	IsActive      bool       `json:"is_active"`
	NextBillingAt *time.Time `json:"next_billing_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}
