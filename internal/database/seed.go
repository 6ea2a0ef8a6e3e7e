package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/internal/models"
)

type seedFood struct {
	name     string
	nameEn   string
	category models.FoodCategory
	kcal     float64
	protein  float64
	carbs    float64
	fat      float64
}

var foodCatalog = []seedFood{
	{"현미밥", "Brown rice", models.CategoryCarb, 350, 8, 72, 2},
	{"쌀밥", "White rice", models.CategoryCarb, 130, 2.7, 28, 0.3},
	{"토스트", "Toast", models.CategoryCarb, 265, 9, 49, 3},
	{"오트밀", "Oatmeal", models.CategoryCarb, 389, 16.9, 66, 6.9},
	{"고구마", "Sweet potato", models.CategoryCarb, 86, 1.6, 20, 0.1},
	{"그릭요거트", "Greek yogurt", models.CategoryDairy, 130, 10, 5, 7},
	{"우유", "Milk", models.CategoryDairy, 61, 3.2, 4.8, 3.3},
	{"블루베리", "Blueberry", models.CategoryFruit, 57, 0.7, 14, 0.3},
	{"아보카도", "Avocado", models.CategoryFruit, 160, 2, 9, 15},
	{"바나나", "Banana", models.CategoryFruit, 89, 1.1, 23, 0.3},
	{"사과", "Apple", models.CategoryFruit, 52, 0.3, 14, 0.2},
	{"닭가슴살", "Chicken breast", models.CategoryProtein, 165, 31, 0, 3.6},
	{"연어", "Salmon", models.CategoryProtein, 208, 20, 0, 13},
	{"계란", "Egg", models.CategoryProtein, 155, 13, 1.1, 11},
	{"두부", "Tofu", models.CategoryProtein, 76, 8, 1.9, 4.8},
	{"브로콜리", "Broccoli", models.CategoryVegetable, 34, 2.8, 7, 0.4},
	{"시금치", "Spinach", models.CategoryVegetable, 23, 2.9, 3.6, 0.4},
	{"아몬드", "Almonds", models.CategorySnack, 576, 21, 22, 49},
	{"다크초콜릿", "Dark chocolate", models.CategorySnack, 546, 4.9, 61, 31},
}

// SeedFoods inserts the built-in food catalog. Foods that already exist by
// name are left untouched. It returns the number of rows inserted.
func SeedFoods(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) (int, error) {
	inserted := 0
	for _, sf := range foodCatalog {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Food{}).Where("name = ?", sf.name).Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("check food %s: %w", sf.name, err)
		}
		if count > 0 {
			continue
		}

		nameEn := sf.nameEn
		food := &models.Food{
			ID:              uuid.New(),
			Name:            sf.name,
			NameEn:          &nameEn,
			Category:        sf.category,
			CaloriesPer100g: sf.kcal,
			ProteinPer100g:  sf.protein,
			CarbsPer100g:    sf.carbs,
			FatPer100g:      sf.fat,
		}
		if err := db.WithContext(ctx).Create(food).Error; err != nil {
			return inserted, fmt.Errorf("seed food %s: %w", sf.name, err)
		}
		inserted++
	}

	log.WithField("inserted", inserted).Info("food catalog seeded")
	return inserted, nil
}
