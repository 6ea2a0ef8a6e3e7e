package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/mealtrack/backend/internal/models"
)

func TestCalories(t *testing.T) {
	tests := []struct {
		name     string
		per100g  float64
		grams    int
		expected int
	}{
		{"chicken 100g", 165, 100, 165},
		{"bread 60g", 265, 60, 159},
		{"rice 150g", 130, 150, 195},
		{"bread 120g", 265, 120, 318},
		{"rounds half up", 5, 10, 1},
		{"zero quantity", 165, 0, 0},
		{"negative quantity", 165, -10, 0},
		{"zero calorie food", 0, 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calories(tt.per100g, tt.grams))
		})
	}
}

func TestCaloriesNeverNegative(t *testing.T) {
	for _, per100g := range []float64{0, 0.4, 1, 52.5, 165, 884} {
		for q := 0; q <= 1000; q += 7 {
			c := Calories(per100g, q)
			assert.GreaterOrEqual(t, c, 0)
		}
	}
}

func TestTotalsIgnoresDenormalizedTotal(t *testing.T) {
	food := &models.Food{CaloriesPer100g: 165, ProteinPer100g: 31, CarbsPer100g: 0, FatPer100g: 3.6}
	meals := []models.Meal{
		{TotalCalories: 9999, MealItems: []models.MealItem{
			{Quantity: 100, Calories: 165, Food: food},
			{Quantity: 50, Calories: 83, Food: food},
		}},
		{TotalCalories: 0, MealItems: []models.MealItem{{Quantity: 10, Calories: 40}}},
	}

	total := Totals(meals)
	assert.Equal(t, 288, total.Calories)
	assert.Equal(t, 46.5, total.Protein)
	assert.Equal(t, 5.4, total.Fat)
	assert.Equal(t, 0.0, total.Carbs)
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, 0, GoalProgress(0, 2000))
	assert.Equal(t, 50, GoalProgress(1000, 2000))
	assert.Equal(t, 100, GoalProgress(2500, 2000))
	assert.Equal(t, 25, GoalProgress(500, 0), "falls back to the default target")
}

func TestMacroSplit(t *testing.T) {
	split := MacroSplit(25, 25, 0)
	assert.Equal(t, Split{Protein: 50, Carbs: 50, Fat: 0}, split)

	split = MacroSplit(10, 10, 40.0/9)
	assert.Equal(t, Split{Protein: 33, Carbs: 33, Fat: 33}, split)

	assert.Equal(t, Split{}, MacroSplit(0, 0, 0))
}

func TestBMI(t *testing.T) {
	assert.Equal(t, 22.9, BMI(175, 70))
	assert.Equal(t, 0.0, BMI(0, 70))

	assert.Equal(t, BMIUnderweight, BMICategory(18.4))
	assert.Equal(t, BMINormal, BMICategory(18.5))
	assert.Equal(t, BMIOverweight, BMICategory(25))
	assert.Equal(t, BMIObese, BMICategory(30))
}

func TestMaintenanceCalories(t *testing.T) {
	assert.Equal(t, 1848, MaintenanceCalories(70, models.ActivitySedentary))
	assert.Equal(t, 2387, MaintenanceCalories(70, models.ActivityModerate))
	assert.Equal(t, 1848, MaintenanceCalories(70, "unknown"))
	assert.Equal(t, 0, MaintenanceCalories(0, models.ActivityActive))
}

func TestForProfile(t *testing.T) {
	h, w := 180.0, 81.0
	level := models.ActivityLight
	stats := ForProfile(&models.Profile{Height: &h, Weight: &w, ActivityLevel: &level})
	assert.Equal(t, 25.0, stats.BMI)
	assert.Equal(t, BMIOverweight, stats.BMICategory)
	assert.Equal(t, 2450, stats.MaintenanceCalories)

	assert.Equal(t, BodyStats{}, ForProfile(&models.Profile{}))
	assert.Equal(t, BodyStats{}, ForProfile(nil))
}
