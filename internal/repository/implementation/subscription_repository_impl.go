package implementation

import (
	"context"
	"time"

	"unsubly-be/internal/entity"
	"unsubly-be/internal/model"
	"unsubly-be/internal/repository/contract"
	"unsubly-be/internal/repository/specification"

	"gorm.io/gorm"
)

type subscriptionRepositoryImpl struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	subscription.Id = m.ID
	subscription.CreatedAt = m.CreatedAt
	return nil
}

func (r *subscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m), nil
}

func (r *subscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	var subscriptions []*entity.Subscription
	for _, m := range models {
		subscriptions = append(subscriptions, r.mapToEntity(m))
	}

	return subscriptions, nil
}

func (r *subscriptionRepositoryImpl) MarkCancelled(ctx context.Context, subscription *entity.Subscription) error {
	now := time.Now().UTC()
	subscription.Status = entity.SubscriptionStatusCancelled
	subscription.IsActive = false
	subscription.CancelledAt = &now

	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscription.Id).
		Updates(map[string]interface{}{
			"status":       string(entity.SubscriptionStatusCancelled),
			"is_active":    false,
			"cancelled_at": now,
		}).Error
}

func (r *subscriptionRepositoryImpl) mapToModel(e *entity.Subscription) *model.Subscription {
	return &model.Subscription{
		ID:            e.Id,
		UserID:        e.UserId,
		Name:          e.Name,
		ProviderName:  e.ProviderName,
		Amount:        e.Amount,
		Currency:      e.Currency,
		BillingPeriod: string(e.BillingPeriod),
		Status:        string(e.Status),
		IsActive:      e.IsActive,
		NextBillingAt: e.NextBillingAt,
		CancelledAt:   e.CancelledAt,
	}
}

func (r *subscriptionRepositoryImpl) mapToEntity(m *model.Subscription) *entity.Subscription {
	return &entity.Subscription{
		Id:            m.ID,
		UserId:        m.UserID,
		Name:          m.Name,
		ProviderName:  m.ProviderName,
		Amount:        m.Amount,
		Currency:      m.Currency,
		BillingPeriod: entity.BillingPeriod(m.BillingPeriod),
		Status:        entity.SubscriptionStatus(m.Status),
		IsActive:      m.IsActive,
		NextBillingAt: m.NextBillingAt,
		CancelledAt:   m.CancelledAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
