package service

import (
	"context"
	"fmt"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/internal/repository/unitofwork"
	"unsubly-be/pkg/cancellation"

	"github.com/google/uuid"
)

// EligibilityValidator gates every orchestration start. Ownership and
// lifecycle checks live here so initiation and retry share one rulebook.
type EligibilityValidator struct {
	logger logger.ILogger
}

func NewEligibilityValidator(log logger.ILogger) *EligibilityValidator {
	return &EligibilityValidator{logger: log}
}

// ValidateSubscriptionOwnership resolves the subscription and proves it
// belongs to the user. A miss is reported as NOT_FOUND without revealing
// whether the row exists under another user.
func (v *EligibilityValidator) ValidateSubscriptionOwnership(ctx context.Context, uow unitofwork.UnitOfWork, userId, subscriptionId uuid.UUID) (*entity.Subscription, error) {
	subscription, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if subscription == nil {
		v.logger.Warn("EligibilityValidator", "Subscription not found or not owned by user", map[string]interface{}{
			"user_id":         userId.String(),
			"subscription_id": subscriptionId.String(),
		})
		return nil, cancellation.NewError(cancellation.CodeNotFound, "subscription not found")
	}
	return subscription, nil
}

// ValidateCancellationEligibility rejects subscriptions that are already
// cancelled. Active-request collisions are ultimately enforced by the
// storage layer's unique index; the read here only produces a friendlier
// early rejection for the common case.
func (v *EligibilityValidator) ValidateCancellationEligibility(ctx context.Context, uow unitofwork.UnitOfWork, subscription *entity.Subscription) error {
	if subscription.Status == entity.SubscriptionStatusCancelled || !subscription.IsActive {
		return cancellation.NewError(cancellation.CodeAlreadyCancelled, "subscription is already cancelled")
	}

	existing, err := uow.CancellationRequestRepository().FindOne(ctx,
		specification.BySubscriptionID{SubscriptionID: subscription.Id},
		specification.ByStatusIn{Statuses: entity.ActiveCancellationStatuses},
	)
	if err != nil {
		return fmt.Errorf("failed to check in-flight requests: %w", err)
	}
	if existing != nil {
		return cancellation.NewErrorWithDetails(cancellation.CodeCancellationInProgress,
			"a cancellation request for this subscription is already in progress",
			map[string]interface{}{"existing_request_id": existing.Id.String()})
	}
	return nil
}
