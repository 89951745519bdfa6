package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User GORM model
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash *string        `gorm:"type:varchar(255)"`
	FullName     string         `gorm:"type:varchar(255)"`
	Role         string         `gorm:"type:varchar(50);default:'user'"`
	Status       string         `gorm:"type:varchar(50);default:'pending'"`
	Timezone     string         `gorm:"type:varchar(64);default:'UTC'"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
