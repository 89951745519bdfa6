package unitofwork

import (
	"context"

	"unsubly-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository
	CancellationRequestRepository() contract.CancellationRequestRepository
	CancellationLogRepository() contract.CancellationLogRepository
	ProviderRepository() contract.ProviderRepository
}
