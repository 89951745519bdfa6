package cancellation

import (
	"context"
	"time"

	"unsubly-be/internal/entity"

	"github.com/google/uuid"
)

// The engine does not cancel anything itself. It coordinates three external
// collaborators, one per method, behind the interfaces below. Production
// wirings live in pkg/providers; tests substitute stubs.

// APICancelRequest is the payload for a direct provider-API cancellation.
type APICancelRequest struct {
	SubscriptionId uuid.UUID
	Priority       entity.CancellationPriority
	Notes          string
}

// APICancelResponse is what the provider-API service reports back.
type APICancelResponse struct {
	RequestId        string
	Status           string
	ConfirmationCode *string
	EffectiveDate    *time.Time
	RefundAmount     *float64
}

// APICancelClient cancels via the provider's own API.
type APICancelClient interface {
	Initiate(ctx context.Context, user *entity.User, req *APICancelRequest) (*APICancelResponse, error)
}

// AutomationRequest is the payload for a browser-automation workflow.
type AutomationRequest struct {
	SubscriptionId          uuid.UUID
	Priority                entity.CancellationPriority
	Notes                   string
	NotificationPreferences map[string]bool
}

// AutomationResponse acknowledges a started workflow.
type AutomationResponse struct {
	RequestId           string
	WorkflowId          *string
	EstimatedCompletion *time.Time
}

// AutomationClient drives a browser-automation cancellation workflow.
type AutomationClient interface {
	Initiate(ctx context.Context, user *entity.User, req *AutomationRequest) (*AutomationResponse, error)
}

// ManualRequest asks for human-followable cancellation instructions.
type ManualRequest struct {
	SubscriptionId uuid.UUID
	ProviderName   string
	Notes          string
}

// ManualResponse carries the generated step-by-step instructions.
type ManualResponse struct {
	RequestId    string
	Instructions []string
}

// ManualConfirmation is the human-reported outcome of a manual track.
type ManualConfirmation struct {
	WasSuccessful    bool
	ConfirmationCode *string
	EffectiveDate    *time.Time
	Notes            string
}

// ManualClient produces instructions and accepts the reported outcome.
type ManualClient interface {
	ProvideInstructions(ctx context.Context, user *entity.User, req *ManualRequest) (*ManualResponse, error)
	Confirm(ctx context.Context, user *entity.User, requestId string, outcome *ManualConfirmation) error
}

// AuditEntry is one best-effort audit record.
type AuditEntry struct {
	UserId   uuid.UUID
	Action   string
	Resource string
	Result   string
	Error    string
	Metadata map[string]interface{}
}

// AuditLogger records security-relevant actions. Implementations must never
// block or fail the primary flow.
type AuditLogger interface {
	Log(ctx context.Context, entry *AuditEntry)
}
