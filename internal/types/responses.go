package types

import (
	"time"

	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/nutrition"
)

// AuthResponse is returned by the sign-in endpoints
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

// ProfileResponse is a profile with its derived body statistics
type ProfileResponse struct {
	*models.Profile
	Target int                 `json:"target"`
	Body   nutrition.BodyStats `json:"body"`
}

// MealsResponse is the store view for one date
type MealsResponse struct {
	Date          string           `json:"date"`
	Meals         []models.Meal    `json:"meals"`
	TotalCalories int              `json:"total_calories"`
	Totals        nutrition.Macros `json:"totals"`
	Target        int              `json:"target"`
	GoalProgress  int              `json:"goal_progress"`
	MacroSplit    nutrition.Split  `json:"macro_split"`
	Loading       bool             `json:"loading"`
}

// DayStat is one day's aggregate within a statistics period
type DayStat struct {
	Date         string           `json:"date"`
	Totals       nutrition.Macros `json:"totals"`
	GoalProgress int              `json:"goal_progress"`
}

// StatsSummary aggregates logged meals across a period
type StatsSummary struct {
	Period          string           `json:"period"`
	From            string           `json:"from"`
	To              string           `json:"to"`
	Days            []DayStat        `json:"days"`
	Totals          nutrition.Macros `json:"totals"`
	LoggedDays      int              `json:"logged_days"`
	AverageCalories int              `json:"average_calories"`
	Target          int              `json:"target"`
	GoalProgress    int              `json:"goal_progress"`
	MostActiveDay   string           `json:"most_active_day,omitempty"`
	StreakDays      int              `json:"streak_days"`
	MacroSplit      nutrition.Split  `json:"macro_split"`
}
