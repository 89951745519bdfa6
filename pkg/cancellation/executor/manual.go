package executor

import (
	"context"
	"fmt"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/cancellation"
)

type manualExecutor struct {
	client cancellation.ManualClient
	audit  cancellation.AuditLogger
	logger logger.ILogger
}

// NewManualExecutor wraps the manual-instruction collaborator. The manual
// track cannot fail at the business level: short of a data error it always
// yields requires_manual with instructions, and the subscription is only
// marked cancelled later through the confirm operation.
func NewManualExecutor(client cancellation.ManualClient, audit cancellation.AuditLogger, log logger.ILogger) MethodExecutor {
	return &manualExecutor{client: client, audit: audit, logger: log}
}

func (e *manualExecutor) Method() entity.CancellationMethod {
	return entity.CancellationMethodManual
}

func (e *manualExecutor) Execute(ctx context.Context, in *Input) (*Outcome, error) {
	resp, err := e.client.ProvideInstructions(ctx, in.User, &cancellation.ManualRequest{
		SubscriptionId: in.Subscription.Id,
		ProviderName:   in.Subscription.ProviderName,
		Notes:          in.Request.UserNotes,
	})
	if err != nil {
		e.audit.Log(ctx, &cancellation.AuditEntry{
			UserId:   in.User.Id,
			Action:   "cancellation.manual",
			Resource: in.Subscription.Id.String(),
			Result:   "failure",
			Error:    err.Error(),
		})
		return nil, fmt.Errorf("manual instruction generation for %s failed: %w", in.Subscription.ProviderName, err)
	}

	e.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   in.User.Id,
		Action:   "cancellation.manual",
		Resource: in.Subscription.Id.String(),
		Result:   "success",
		Metadata: map[string]interface{}{"collaborator_request_id": resp.RequestId},
	})

	return &Outcome{
		CollaboratorRequestId: resp.RequestId,
		Status:                entity.CancellationStatusRequiresManual,
		Message:               fmt.Sprintf("Follow the provided steps to cancel %s, then confirm the outcome", in.Subscription.ProviderName),
		Instructions:          resp.Instructions,
	}, nil
}
