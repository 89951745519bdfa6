package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CancellationLog GORM model. Append-only: rows are never updated or
// deleted, so there is no UpdatedAt/DeletedAt.
type CancellationLog struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrchestrationID string            `gorm:"type:varchar(64);index"`
	Action          string            `gorm:"type:varchar(100);not null"`
	Level           string            `gorm:"type:varchar(20);default:'info'"` // info, success, warning, error
	Message         string            `gorm:"type:text"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;index"`

	// Relations
	Request CancellationRequest `gorm:"foreignKey:RequestID"`
}

func (CancellationLog) TableName() string {
	return "cancellation_logs"
}
