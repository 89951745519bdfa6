package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"unsubly-be/internal/entity"
)

// BySubscriptionID filters by subscription
type BySubscriptionID struct {
	SubscriptionID uuid.UUID
}

func (s BySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

// ByRequestID filters logs by their owning cancellation request
type ByRequestID struct {
	RequestID uuid.UUID
}

func (s ByRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("request_id = ?", s.RequestID)
}

// ByOrchestrationID filters by the transient orchestration session id
type ByOrchestrationID struct {
	OrchestrationID string
}

func (s ByOrchestrationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("orchestration_id = ?", s.OrchestrationID)
}

// ByStatusIn filters requests whose status is in the given set
type ByStatusIn struct {
	Statuses []entity.CancellationStatus
}

func (s ByStatusIn) Apply(db *gorm.DB) *gorm.DB {
	statuses := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		statuses[i] = string(st)
	}
	return db.Where("status IN ?", statuses)
}

// ByNormalizedName filters the provider registry by its canonical key
type ByNormalizedName struct {
	NormalizedName string
}

func (s ByNormalizedName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("normalized_name = ?", s.NormalizedName)
}
