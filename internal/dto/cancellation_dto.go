package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Initiation ---

// InitiateCancellationRequest is the user's cancellation order.
type InitiateCancellationRequest struct {
	SubscriptionId uuid.UUID       `json:"subscription_id" validate:"required"`
	Method         string          `json:"method" validate:"omitempty,oneof=auto api automation manual"`
	Priority       string          `json:"priority" validate:"omitempty,oneof=low normal high"`
	Notes          string          `json:"notes" validate:"omitempty,max=2000"`
	AllowFallback  *bool           `json:"allow_fallback"`
	ScheduleFor    *time.Time      `json:"schedule_for"`
	Timezone       string          `json:"timezone" validate:"omitempty,max=64"`
	Notifications  map[string]bool `json:"notifications"`
}

// ResultMetadata describes how the orchestration went.
type ResultMetadata struct {
	AttemptsUsed           int    `json:"attempts_used"`
	FallbackReason         string `json:"fallback_reason,omitempty"`
	RealTimeUpdatesEnabled bool   `json:"real_time_updates_enabled"`
}

// ResultTracking points the client at the follow-up surfaces.
type ResultTracking struct {
	StatusCheckEndpoint string `json:"status_check_endpoint"`
	LiveUpdateEndpoint  string `json:"live_update_endpoint"`
}

// ResultError is the structured failure carried inside a result.
type ResultError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CancellationResult is always returned by initiation, never thrown.
type CancellationResult struct {
	Success             bool           `json:"success"`
	OrchestrationId     string         `json:"orchestration_id"`
	RequestId           uuid.UUID      `json:"request_id"`
	Status              string         `json:"status"`
	Method              string         `json:"method"`
	Message             string         `json:"message"`
	EstimatedCompletion *time.Time     `json:"estimated_completion,omitempty"`
	ConfirmationCode    *string        `json:"confirmation_code,omitempty"`
	EffectiveDate       *time.Time     `json:"effective_date,omitempty"`
	RefundAmount        *float64       `json:"refund_amount,omitempty"`
	ManualInstructions  []string       `json:"manual_instructions,omitempty"`
	Metadata            ResultMetadata `json:"metadata"`
	Tracking            ResultTracking `json:"tracking"`
	Error               *ResultError   `json:"error,omitempty"`
}

// --- Retry / Confirm / Abort ---

// RetryCancellationRequest re-runs a failed or aborted request.
type RetryCancellationRequest struct {
	Method   string `json:"method" validate:"omitempty,oneof=api automation manual"`
	Escalate bool   `json:"escalate"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

// ConfirmManualRequest reports the outcome of a manual cancellation track.
type ConfirmManualRequest struct {
	WasSuccessful    bool       `json:"was_successful"`
	ConfirmationCode *string    `json:"confirmation_code" validate:"omitempty,max=255"`
	EffectiveDate    *time.Time `json:"effective_date"`
	Notes            string     `json:"notes" validate:"omitempty,max=2000"`
}

// --- Status reads ---

// CancellationLogEntry is one timeline row.
type CancellationLogEntry struct {
	Action    string                 `json:"action"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// CancellationStatusResponse is the durable request plus its replayable
// timeline.
type CancellationStatusResponse struct {
	Id               uuid.UUID              `json:"id"`
	SubscriptionId   uuid.UUID              `json:"subscription_id"`
	OrchestrationId  string                 `json:"orchestration_id,omitempty"`
	Method           string                 `json:"method"`
	Priority         string                 `json:"priority"`
	Status           string                 `json:"status"`
	Attempts         int                    `json:"attempts"`
	ConfirmationCode *string                `json:"confirmation_code,omitempty"`
	EffectiveDate    *time.Time             `json:"effective_date,omitempty"`
	RefundAmount     *float64               `json:"refund_amount,omitempty"`
	ScheduledFor     *time.Time             `json:"scheduled_for,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	Timeline         []CancellationLogEntry `json:"timeline"`
}

// OrchestrationStatusResponse reflects a live session, or its replay from
// durable rows when the in-memory session is gone.
type OrchestrationStatusResponse struct {
	OrchestrationId string     `json:"orchestration_id"`
	Status          string     `json:"status"`
	Method          string     `json:"method"`
	StartedAt       time.Time  `json:"started_at"`
	LastUpdateAt    time.Time  `json:"last_update_at"`
	Source          string     `json:"source"` // live, replayed
	RequestId       *uuid.UUID `json:"request_id,omitempty"`
}
