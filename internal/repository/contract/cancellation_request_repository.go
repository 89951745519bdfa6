package contract

import (
	"context"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/repository/specification"
)

// CancellationRequestRepository defines operations for cancellation requests.
//
// Create is the authoritative guard for the one-active-request-per-
// subscription invariant: when an active request already exists, the partial
// unique index rejects the insert and Create returns ErrActiveRequestExists.
type CancellationRequestRepository interface {
	Create(ctx context.Context, request *entity.CancellationRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CancellationRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CancellationRequest, error)
	Update(ctx context.Context, request *entity.CancellationRequest) error
}
