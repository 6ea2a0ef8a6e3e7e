package models

import (
	"time"

	"github.com/google/uuid"
)

// MealType is the per-day, per-user meal slot.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// MealTypes lists the slots in display order.
var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

// IsValid reports whether t is a known slot.
func (t MealType) IsValid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// DateLayout is the calendar date format stored on meals.
const DateLayout = "2006-01-02"

// Meal is the single record for a (user, date, slot). TotalCalories is a
// denormalized sum of the item calories.
type Meal struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_meals_user_date_type" json:"user_id"`
	Date          string     `gorm:"size:10;not null;uniqueIndex:idx_meals_user_date_type" json:"date"`
	MealType      MealType   `gorm:"size:20;not null;uniqueIndex:idx_meals_user_date_type" json:"meal_type"`
	TotalCalories int        `gorm:"not null;default:0" json:"total_calories"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	MealItems     []MealItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"meal_items"`
}

func (Meal) TableName() string {
	return "meals"
}

// ItemCalories sums the calories of the loaded items.
func (m *Meal) ItemCalories() int {
	total := 0
	for _, item := range m.MealItems {
		total += item.Calories
	}
	return total
}

// MealItem is one food entry within a meal. Calories are derived from the
// food and quantity and stored for fast reads.
type MealItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	MealID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"meal_id"`
	FoodID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"food_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Calories  int       `gorm:"not null" json:"calories"`
	CreatedAt time.Time `json:"created_at"`
	Food      *Food     `gorm:"foreignKey:FoodID" json:"food,omitempty"`
}

func (MealItem) TableName() string {
	return "meal_items"
}
