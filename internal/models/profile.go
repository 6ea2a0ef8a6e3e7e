package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTargetCalories is applied when a profile has no daily target.
const DefaultTargetCalories = 2000

// Activity levels accepted on a profile.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Profile represents the user-facing profile. ID equals the session identity.
type Profile struct {
	ID             uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Email          string    `gorm:"size:255;not null" json:"email"`
	FullName       *string   `gorm:"size:255" json:"full_name"`
	AvatarURL      *string   `gorm:"size:512" json:"avatar_url"`
	TargetCalories *int      `json:"target_calories"`
	Height         *float64  `json:"height"`
	Weight         *float64  `json:"weight"`
	ActivityLevel  *string   `gorm:"size:20" json:"activity_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Target returns the daily calorie goal, falling back to DefaultTargetCalories.
func (p *Profile) Target() int {
	if p == nil || p.TargetCalories == nil || *p.TargetCalories <= 0 {
		return DefaultTargetCalories
	}
	return *p.TargetCalories
}

// IsValidActivityLevel reports whether level is one of the known activity levels.
func IsValidActivityLevel(level string) bool {
	switch level {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return true
	}
	return false
}
