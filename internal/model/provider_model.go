package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider GORM model for the persisted provider registry
type Provider struct {
	ID                    uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string         `gorm:"type:varchar(255);not null"`
	NormalizedName        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Category              string         `gorm:"type:varchar(50)"` // streaming, software, utility, other
	SupportsApi           bool           `gorm:"default:false"`
	SupportsAutomation    bool           `gorm:"default:false"`
	ApiSuccessRate        float64        `gorm:"type:numeric(4,3);default:0"`
	AutomationSuccessRate float64        `gorm:"type:numeric(4,3);default:0"`
	ManualSuccessRate     float64        `gorm:"type:numeric(4,3);default:0.95"`
	ApiEstimatedMinutes   int            `gorm:"default:5"`
	AutoEstimatedMinutes  int            `gorm:"default:15"`
	ManualEstimatedMins   int            `gorm:"default:30"`
	Difficulty            string         `gorm:"type:varchar(20);default:'medium'"` // easy, medium, hard
	Requires2FA           bool           `gorm:"default:false"`
	HasRetentionOffers    bool           `gorm:"default:false"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (Provider) TableName() string {
	return "providers"
}
