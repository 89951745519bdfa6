package executor

import (
	"context"
	"fmt"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/cancellation"
)

type apiExecutor struct {
	client cancellation.APICancelClient
	audit  cancellation.AuditLogger
	logger logger.ILogger
}

// NewAPIExecutor wraps the provider-API cancellation collaborator.
func NewAPIExecutor(client cancellation.APICancelClient, audit cancellation.AuditLogger, log logger.ILogger) MethodExecutor {
	return &apiExecutor{client: client, audit: audit, logger: log}
}

func (e *apiExecutor) Method() entity.CancellationMethod {
	return entity.CancellationMethodApi
}

func (e *apiExecutor) Execute(ctx context.Context, in *Input) (*Outcome, error) {
	resp, err := e.client.Initiate(ctx, in.User, &cancellation.APICancelRequest{
		SubscriptionId: in.Subscription.Id,
		Priority:       in.Request.Priority,
		Notes:          in.Request.UserNotes,
	})
	if err != nil {
		e.audit.Log(ctx, &cancellation.AuditEntry{
			UserId:   in.User.Id,
			Action:   "cancellation.api",
			Resource: in.Subscription.Id.String(),
			Result:   "failure",
			Error:    err.Error(),
		})
		return nil, fmt.Errorf("api cancellation for %s failed: %w", in.Subscription.ProviderName, err)
	}

	e.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   in.User.Id,
		Action:   "cancellation.api",
		Resource: in.Subscription.Id.String(),
		Result:   "success",
		Metadata: map[string]interface{}{"collaborator_request_id": resp.RequestId},
	})

	status := entity.CancellationStatusCompleted
	if resp.Status != "" && resp.Status != "completed" {
		status = entity.CancellationStatusProcessing
	}

	return &Outcome{
		CollaboratorRequestId: resp.RequestId,
		Status:                status,
		Message:               fmt.Sprintf("Cancellation submitted to %s via provider API", in.Subscription.ProviderName),
		ConfirmationCode:      resp.ConfirmationCode,
		EffectiveDate:         resp.EffectiveDate,
		RefundAmount:          resp.RefundAmount,
	}, nil
}
