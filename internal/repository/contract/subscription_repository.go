package contract

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/specification"
)

// SubscriptionRepository defines operations on tracked subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	// MarkCancelled transitions the subscription to cancelled/inactive.
	// Only called on a confirmed cancellation success.
	MarkCancelled(ctx context.Context, subscription *entity.Subscription) error
}
