package executor

import (
	"context"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/pkg/cancellation"
)

// Input is everything one method attempt needs.
type Input struct {
	OrchestrationId string
	User            *entity.User
	Subscription    *entity.Subscription
	Request         *entity.CancellationRequest
	Capability      *entity.ProviderCapability
	Preferences     *cancellation.Preferences
}

// Outcome is the unified result contract every method executor maps its
// collaborator's response into.
type Outcome struct {
	CollaboratorRequestId string
	Status                entity.CancellationStatus
	Message               string
	ConfirmationCode      *string
	EffectiveDate         *time.Time
	RefundAmount          *float64
	WorkflowId            *string
	EstimatedCompletion   *time.Time
	Instructions          []string
}

// MethodExecutor wraps exactly one external collaborator. A failed attempt
// returns a wrapped error so the chain executor can apply fallback policy.
type MethodExecutor interface {
	Method() entity.CancellationMethod
	Execute(ctx context.Context, in *Input) (*Outcome, error)
}
