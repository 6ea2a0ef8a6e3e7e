package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/testhelpers"
	"github.com/pageza/mealtrack/backend/internal/types"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodWeek, false},
		{"day", PeriodDay, false},
		{"week", PeriodWeek, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPeriod, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPeriodRange(t *testing.T) {
	// A Thursday.
	anchor := time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		period   Period
		from, to string
	}{
		{PeriodDay, "2024-02-29", "2024-02-29"},
		{PeriodWeek, "2024-02-26", "2024-03-03"},
		{PeriodMonth, "2024-02-01", "2024-02-29"},
	}
	for _, tt := range tests {
		from, to := tt.period.Range(anchor)
		assert.Equal(t, tt.from, from.Format(models.DateLayout), tt.period)
		assert.Equal(t, tt.to, to.Format(models.DateLayout), tt.period)
	}

	// Sunday belongs to the week that started the Monday before.
	from, _ := PeriodWeek.Range(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-26", from.Format(models.DateLayout))
}

func loggedMeal(date string, calories int) models.Meal {
	return models.Meal{
		Date:     date,
		MealType: models.MealTypeLunch,
		MealItems: []models.MealItem{{
			Quantity: 100,
			Calories: calories,
			Food:     &models.Food{ProteinPer100g: 10, CarbsPer100g: 20, FatPer100g: 5},
		}},
	}
}

func TestSummarize(t *testing.T) {
	from, to := PeriodWeek.Range(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	now := time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)
	meals := []models.Meal{
		loggedMeal("2024-01-02", 500),
		loggedMeal("2024-01-03", 1000),
		loggedMeal("2024-01-04", 300),
		loggedMeal("2024-01-04", 200),
	}

	s := summarize(meals, PeriodWeek, from, to, 2000, now)

	assert.Equal(t, "2024-01-01", s.From)
	assert.Equal(t, "2024-01-07", s.To)
	require.Len(t, s.Days, 7)
	assert.Equal(t, 3, s.LoggedDays)
	assert.Equal(t, 2000, s.Totals.Calories)
	assert.Equal(t, 666, s.AverageCalories)
	assert.Equal(t, 33, s.GoalProgress)
	assert.Equal(t, "2024-01-03", s.MostActiveDay)
	assert.Equal(t, 3, s.StreakDays)
	assert.Equal(t, 40.0, s.Totals.Protein)
	assert.Equal(t, 50, s.Days[2].GoalProgress)
}

func TestStreak(t *testing.T) {
	days := func(cals ...int) []types.DayStat {
		out := make([]types.DayStat, len(cals))
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, c := range cals {
			out[i].Date = start.AddDate(0, 0, i).Format(models.DateLayout)
			out[i].Totals.Calories = c
		}
		return out
	}
	wednesday := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, streak(days(100, 100, 100, 0, 0), wednesday))
	assert.Equal(t, 0, streak(days(100, 100, 0, 0, 0), wednesday), "today not logged yet")
	assert.Equal(t, 1, streak(days(100, 0, 100), wednesday))
	assert.Equal(t, 2, streak(days(0, 100, 100), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)), "past period counts from its end")
}

func TestStatsKeyChangesWithToday(t *testing.T) {
	userID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, statsKey(userID, PeriodWeek, from, 2000, morning), statsKey(userID, PeriodWeek, from, 2000, morning.Add(10*time.Hour)))
	assert.NotEqual(t, statsKey(userID, PeriodWeek, from, 2000, morning), statsKey(userID, PeriodWeek, from, 2000, morning.AddDate(0, 0, 1)))
	assert.True(t, strings.HasPrefix(statsKey(userID, PeriodWeek, from, 2000, morning), statsKeyPrefix+userID.String()+":"))
}

func TestStatsSummaryReadsMeals(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	userID := uuid.New()
	testhelpers.CreateProfile(t, db, userID, "stats@example.com")
	food := testhelpers.CreateFood(t, db, "쌀밥", 130)

	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-09"} {
		meal := models.Meal{ID: uuid.New(), UserID: userID, Date: date, MealType: models.MealTypeDinner, TotalCalories: 260}
		require.NoError(t, db.Create(&meal).Error)
		item := models.MealItem{ID: uuid.New(), MealID: meal.ID, FoodID: food.ID, Quantity: 200, Calories: 260}
		require.NoError(t, db.Create(&item).Error)
	}
	// Another user's meal stays out of the summary.
	other := models.Meal{ID: uuid.New(), UserID: uuid.New(), Date: "2024-01-01", MealType: models.MealTypeDinner}
	require.NoError(t, db.Create(&other).Error)

	svc := NewStatsService(db, nil, time.Minute, logrus.New())
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	s, err := svc.Summary(context.Background(), userID, PeriodWeek, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.LoggedDays)
	assert.Equal(t, 520, s.Totals.Calories)
	assert.Equal(t, 260, s.AverageCalories)
	assert.Equal(t, models.DefaultTargetCalories, s.Target)

	assert.NoError(t, svc.Invalidate(context.Background(), userID))
}
