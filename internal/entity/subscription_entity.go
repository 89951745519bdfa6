package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingPeriod string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// Subscription is one recurring service a user is paying for (Netflix,
// Adobe, an electricity contract...). The engine only ever reads it and,
// on a confirmed cancellation, flips Status/IsActive.
type Subscription struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Name          string
	ProviderName  string
	Amount        float64
	Currency      string
	BillingPeriod BillingPeriod
	Status        SubscriptionStatus
	IsActive      bool
	NextBillingAt *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
