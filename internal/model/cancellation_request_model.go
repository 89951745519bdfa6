package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CancellationRequest GORM model.
//
// The one-active-request-per-subscription invariant is enforced by a partial
// unique index created in cmd/migrate (GORM index tags cannot express the
// WHERE clause):
//
//	CREATE UNIQUE INDEX udx_cancellation_requests_active
//	ON cancellation_requests (subscription_id)
//	WHERE status IN ('pending','processing','scheduled') AND deleted_at IS NULL;
type CancellationRequest struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	SubscriptionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	OrchestrationID  string    `gorm:"type:varchar(64);index"`
	Method           string    `gorm:"type:varchar(20);not null"` // api, automation, manual
	Priority         string    `gorm:"type:varchar(20);default:'normal'"`
	Status           string    `gorm:"type:varchar(50);default:'pending';index"`
	Attempts         int       `gorm:"default:0"`
	ConfirmationCode *string   `gorm:"type:varchar(255)"`
	EffectiveDate    *time.Time
	RefundAmount     *float64 `gorm:"type:numeric(12,2)"`
	UserNotes        string   `gorm:"type:text"`
	ScheduledFor     *time.Time
	Timezone         string            `gorm:"type:varchar(64)"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime"`
	CompletedAt      *time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	// Relations
	User         User         `gorm:"foreignKey:UserID"`
	Subscription Subscription `gorm:"foreignKey:SubscriptionID"`
}

func (CancellationRequest) TableName() string {
	return "cancellation_requests"
}
