package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// FoodCategory groups catalog entries.
type FoodCategory string

const (
	CategoryFruit     FoodCategory = "fruit"
	CategoryVegetable FoodCategory = "vegetable"
	CategoryProtein   FoodCategory = "protein"
	CategoryCarb      FoodCategory = "carb"
	CategoryDairy     FoodCategory = "dairy"
	CategorySnack     FoodCategory = "snack"
)

// IsValid reports whether c is a known category.
func (c FoodCategory) IsValid() bool {
	switch c {
	case CategoryFruit, CategoryVegetable, CategoryProtein, CategoryCarb, CategoryDairy, CategorySnack:
		return true
	}
	return false
}

// Food is a read-only catalog entry. Nutrition values are per 100 g.
type Food struct {
	ID              uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string           `gorm:"size:255;not null;index" json:"name"`
	NameEn          *string          `gorm:"size:255" json:"name_en,omitempty"`
	Category        FoodCategory     `gorm:"size:20;not null;index" json:"category"`
	CaloriesPer100g float64          `gorm:"not null" json:"calories_per_100g"`
	ProteinPer100g  float64          `gorm:"not null;default:0" json:"protein_per_100g"`
	CarbsPer100g    float64          `gorm:"not null;default:0" json:"carbs_per_100g"`
	FatPer100g      float64          `gorm:"not null;default:0" json:"fat_per_100g"`
	NutrientProfile *pgvector.Vector `gorm:"type:vector(4)" json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (Food) TableName() string {
	return "foods"
}

// BeforeSave keeps the nutrient profile in step with the per-100g values.
func (f *Food) BeforeSave(tx *gorm.DB) error {
	v := f.NutrientVector()
	f.NutrientProfile = &v
	return nil
}

// NutrientVector returns the [kcal, protein, carbs, fat] profile used for
// similarity lookups.
func (f *Food) NutrientVector() pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(f.CaloriesPer100g),
		float32(f.ProteinPer100g),
		float32(f.CarbsPer100g),
		float32(f.FatPer100g),
	})
}
