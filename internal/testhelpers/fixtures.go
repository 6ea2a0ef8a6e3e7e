package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/internal/models"
)

// CreateFood inserts a catalog food with the given energy density.
func CreateFood(t *testing.T, db *gorm.DB, name string, kcalPer100g float64) *models.Food {
	t.Helper()
	return CreateFoodWithMacros(t, db, name, models.CategoryCarb, kcalPer100g, 0, 0, 0)
}

// CreateFoodWithMacros inserts a catalog food with all per-100g values.
func CreateFoodWithMacros(t *testing.T, db *gorm.DB, name string, category models.FoodCategory, kcal, protein, carbs, fat float64) *models.Food {
	t.Helper()
	food := &models.Food{
		ID:              uuid.New(),
		Name:            name,
		Category:        category,
		CaloriesPer100g: kcal,
		ProteinPer100g:  protein,
		CarbsPer100g:    carbs,
		FatPer100g:      fat,
	}
	if err := db.Create(food).Error; err != nil {
		t.Fatalf("failed to create food %s: %v", name, err)
	}
	return food
}

// CreateProfile inserts a profile for id with the default target.
func CreateProfile(t *testing.T, db *gorm.DB, id uuid.UUID, email string) *models.Profile {
	t.Helper()
	target := models.DefaultTargetCalories
	profile := &models.Profile{ID: id, Email: email, TargetCalories: &target}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}
