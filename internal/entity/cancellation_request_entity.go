package entity

import (
	"time"

	"github.com/google/uuid"
)

type CancellationMethod string
type CancellationStatus string
type CancellationPriority string

const (
	CancellationMethodApi        CancellationMethod = "api"
	CancellationMethodAutomation CancellationMethod = "automation"
	CancellationMethodManual     CancellationMethod = "manual"

	CancellationStatusPending        CancellationStatus = "pending"
	CancellationStatusProcessing     CancellationStatus = "processing"
	CancellationStatusScheduled      CancellationStatus = "scheduled"
	CancellationStatusRequiresManual CancellationStatus = "requires_manual"
	CancellationStatusCompleted      CancellationStatus = "completed"
	CancellationStatusFailed         CancellationStatus = "failed"
	CancellationStatusCancelled      CancellationStatus = "cancelled"

	CancellationPriorityLow    CancellationPriority = "low"
	CancellationPriorityNormal CancellationPriority = "normal"
	CancellationPriorityHigh   CancellationPriority = "high"
)

// ActiveCancellationStatuses are the statuses counted against the
// one-in-flight-request-per-subscription rule.
var ActiveCancellationStatuses = []CancellationStatus{
	CancellationStatusPending,
	CancellationStatusProcessing,
	CancellationStatusScheduled,
}

// IsTerminal reports whether no further transition is allowed.
func (s CancellationStatus) IsTerminal() bool {
	return s == CancellationStatusCompleted ||
		s == CancellationStatusFailed ||
		s == CancellationStatusCancelled
}

// CancellationRequest is the durable record of one cancellation intent.
type CancellationRequest struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	SubscriptionId   uuid.UUID
	OrchestrationId  string
	Method           CancellationMethod
	Priority         CancellationPriority
	Status           CancellationStatus
	Attempts         int
	ConfirmationCode *string
	EffectiveDate    *time.Time
	RefundAmount     *float64
	UserNotes        string
	ScheduledFor     *time.Time
	Timezone         string
	Metadata         map[string]interface{}
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}
