package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth providers a User can be registered through.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is the credential record behind a session identity. Its ID is the
// identity id shared with the Profile.
type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Provider     string         `gorm:"size:20;not null;default:'email'" json:"provider"`
}

func (User) TableName() string {
	return "users"
}
