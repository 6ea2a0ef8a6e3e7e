// Package nutrition holds the pure calorie and macronutrient derivations
// shared by the meal store, statistics and profile views.
package nutrition

import (
	"math"

	"github.com/pageza/mealtrack/backend/internal/models"
)

// Energy per gram of each macronutrient.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// Macros represents aggregated nutrition information.
type Macros struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Rounded returns m with the macro grams rounded to one decimal.
func (m Macros) Rounded() Macros {
	m.Protein = Round1(m.Protein)
	m.Carbs = Round1(m.Carbs)
	m.Fat = Round1(m.Fat)
	return m
}

// Calories returns round(per100g * grams / 100). Negative inputs yield 0.
func Calories(per100g float64, grams int) int {
	if per100g <= 0 || grams <= 0 {
		return 0
	}
	return int(math.Round(per100g * float64(grams) / 100))
}

// Macro returns the grams of a nutrient in the given portion.
func Macro(per100g float64, grams int) float64 {
	if per100g <= 0 || grams <= 0 {
		return 0
	}
	return per100g * float64(grams) / 100
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ItemMacros returns the nutrition of a single meal item. Calories are the
// recorded item calories; macros need the attached food and are zero without it.
func ItemMacros(item models.MealItem) Macros {
	m := Macros{Calories: item.Calories}
	if item.Food != nil {
		m.Protein = Macro(item.Food.ProteinPer100g, item.Quantity)
		m.Carbs = Macro(item.Food.CarbsPer100g, item.Quantity)
		m.Fat = Macro(item.Food.FatPer100g, item.Quantity)
	}
	return m
}

// Totals sums item nutrition across meals. The meals' denormalized totals
// are ignored.
func Totals(meals []models.Meal) Macros {
	var total Macros
	for _, meal := range meals {
		for _, item := range meal.MealItems {
			total = total.Add(ItemMacros(item))
		}
	}
	return total.Rounded()
}

// GoalProgress returns the consumed share of target as a percentage capped at 100.
func GoalProgress(total, target int) int {
	if target <= 0 {
		target = models.DefaultTargetCalories
	}
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(total) / float64(target) * 100))
	if p > 100 {
		return 100
	}
	return p
}

// Split is the share of energy contributed by each macronutrient, in percent.
type Split struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// MacroSplit converts macro grams to energy and returns each share of the total.
func MacroSplit(protein, carbs, fat float64) Split {
	p := protein * KcalPerGramProtein
	c := carbs * KcalPerGramCarbs
	f := fat * KcalPerGramFat
	total := p + c + f
	if total <= 0 {
		return Split{}
	}
	return Split{
		Protein: int(math.Round(p / total * 100)),
		Carbs:   int(math.Round(c / total * 100)),
		Fat:     int(math.Round(f / total * 100)),
	}
}
