package service

import (
	"context"
	"fmt"

	"unsubly-be/internal/dto"
	"unsubly-be/internal/pkg/logger"
	"unsubly-be/internal/repository/specification"
	"unsubly-be/internal/repository/unitofwork"
	"unsubly-be/pkg/cancellation"

	"github.com/google/uuid"
)

// ISubscriptionService is the minimal subscription read surface the
// cancellation API hangs off. Importing/detecting subscriptions is a
// separate system.
type ISubscriptionService interface {
	ListSubscriptions(ctx context.Context, userId uuid.UUID) ([]dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, userId, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, userId uuid.UUID) ([]dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subscriptions, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	responses := make([]dto.SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		responses = append(responses, dto.SubscriptionResponse{
			Id:            sub.Id.String(),
			Name:          sub.Name,
			ProviderName:  sub.ProviderName,
			Amount:        sub.Amount,
			Currency:      sub.Currency,
			BillingPeriod: string(sub.BillingPeriod),
			Status:        string(sub.Status),
			IsActive:      sub.IsActive,
			NextBillingAt: sub.NextBillingAt,
			CancelledAt:   sub.CancelledAt,
		})
	}
	return responses, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, userId, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return nil, cancellation.NewError(cancellation.CodeNotFound, "subscription not found")
	}

	return &dto.SubscriptionResponse{
		Id:            sub.Id.String(),
		Name:          sub.Name,
		ProviderName:  sub.ProviderName,
		Amount:        sub.Amount,
		Currency:      sub.Currency,
		BillingPeriod: string(sub.BillingPeriod),
		Status:        string(sub.Status),
		IsActive:      sub.IsActive,
		NextBillingAt: sub.NextBillingAt,
		CancelledAt:   sub.CancelledAt,
	}, nil
}
