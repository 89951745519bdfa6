package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription GORM model for tracked recurring subscriptions
type Subscription struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	ProviderName  string    `gorm:"type:varchar(255);not null;index"`
	Amount        float64   `gorm:"type:numeric(12,2)"`
	Currency      string    `gorm:"type:varchar(3);default:'USD'"`
	BillingPeriod string    `gorm:"type:varchar(20);default:'monthly'"`
	Status        string    `gorm:"type:varchar(50);default:'active';index"` // active, paused, cancelled
	IsActive      bool      `gorm:"default:true"`
	NextBillingAt *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	// Relations
	User User `gorm:"foreignKey:UserID"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
