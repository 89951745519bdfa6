package executor

import (
	"context"
	"fmt"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/pkg/cancellation"
)

type automationExecutor struct {
	client cancellation.AutomationClient
	audit  cancellation.AuditLogger
	logger logger.ILogger
}

// NewAutomationExecutor wraps the browser-automation workflow collaborator.
func NewAutomationExecutor(client cancellation.AutomationClient, audit cancellation.AuditLogger, log logger.ILogger) MethodExecutor {
	return &automationExecutor{client: client, audit: audit, logger: log}
}

func (e *automationExecutor) Method() entity.CancellationMethod {
	return entity.CancellationMethodAutomation
}

func (e *automationExecutor) Execute(ctx context.Context, in *Input) (*Outcome, error) {
	var notifications map[string]bool
	if in.Preferences != nil {
		notifications = in.Preferences.Notifications
	}

	resp, err := e.client.Initiate(ctx, in.User, &cancellation.AutomationRequest{
		SubscriptionId:          in.Subscription.Id,
		Priority:                in.Request.Priority,
		Notes:                   in.Request.UserNotes,
		NotificationPreferences: notifications,
	})
	if err != nil {
		e.audit.Log(ctx, &cancellation.AuditEntry{
			UserId:   in.User.Id,
			Action:   "cancellation.automation",
			Resource: in.Subscription.Id.String(),
			Result:   "failure",
			Error:    err.Error(),
		})
		return nil, fmt.Errorf("automation workflow for %s failed: %w", in.Subscription.ProviderName, err)
	}

	e.audit.Log(ctx, &cancellation.AuditEntry{
		UserId:   in.User.Id,
		Action:   "cancellation.automation",
		Resource: in.Subscription.Id.String(),
		Result:   "success",
		Metadata: map[string]interface{}{"collaborator_request_id": resp.RequestId},
	})

	estimated := resp.EstimatedCompletion
	if estimated == nil && in.Capability != nil && in.Capability.AutoEstimatedMinutes > 0 {
		t := time.Now().UTC().Add(time.Duration(in.Capability.AutoEstimatedMinutes) * time.Minute)
		estimated = &t
	}

	// The workflow runs asynchronously; the attempt succeeded but the
	// request stays in processing until the workflow reports back.
	return &Outcome{
		CollaboratorRequestId: resp.RequestId,
		Status:                entity.CancellationStatusProcessing,
		Message:               fmt.Sprintf("Automated cancellation workflow started for %s", in.Subscription.ProviderName),
		WorkflowId:            resp.WorkflowId,
		EstimatedCompletion:   estimated,
	}, nil
}
