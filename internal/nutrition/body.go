package nutrition

import (
	"math"

	"github.com/pageza/mealtrack/backend/internal/models"
)

// BMI bands.
const (
	BMIUnderweight = "underweight"
	BMINormal      = "normal"
	BMIOverweight  = "overweight"
	BMIObese       = "obese"
)

// kcal per kg of body weight per day before the activity multiplier.
const baseKcalPerKg = 22

var activityMultipliers = map[string]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

// BMI returns weight / height(m)^2 rounded to one decimal, or 0 when either
// measurement is missing.
func BMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := heightCM / 100
	return Round1(weightKG / (m * m))
}

// BMICategory maps a BMI value to its band.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// ActivityMultiplier returns the multiplier for level, 1.2 when unknown.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[models.ActivitySedentary]
}

// MaintenanceCalories estimates daily energy needs from body weight alone.
// The profile has no age or sex, so no BMR equation is applied.
func MaintenanceCalories(weightKG float64, level string) int {
	if weightKG <= 0 {
		return 0
	}
	return int(math.Round(baseKcalPerKg * weightKG * ActivityMultiplier(level)))
}

// BodyStats is the derived view of a profile's measurements.
type BodyStats struct {
	BMI                 float64 `json:"bmi,omitempty"`
	BMICategory         string  `json:"bmi_category,omitempty"`
	MaintenanceCalories int     `json:"maintenance_calories,omitempty"`
}

// ForProfile derives BodyStats from whatever measurements p carries.
func ForProfile(p *models.Profile) BodyStats {
	var s BodyStats
	if p == nil || p.Weight == nil {
		return s
	}
	level := ""
	if p.ActivityLevel != nil {
		level = *p.ActivityLevel
	}
	s.MaintenanceCalories = MaintenanceCalories(*p.Weight, level)
	if p.Height != nil {
		if bmi := BMI(*p.Height, *p.Weight); bmi > 0 {
			s.BMI = bmi
			s.BMICategory = BMICategory(bmi)
		}
	}
	return s
}
