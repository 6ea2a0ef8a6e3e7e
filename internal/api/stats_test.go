package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealtrack/backend/internal/testhelpers"
	"github.com/pageza/mealtrack/backend/internal/types"
)

func TestGetStats(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "stats@example.com")
	rice := testhelpers.CreateFood(t, s.db, "밥", 130)

	for _, day := range []string{"2024-01-01", "2024-01-02"} {
		w := s.do(t, http.MethodPost, "/api/v1/meals/items", token, types.AddMealItemRequest{
			MealType: "dinner", FoodID: rice.ID.String(), Quantity: 200, Date: day,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/v1/stats?period=week&date=2024-01-03", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[types.StatsSummary](t, w)
	assert.Equal(t, "2024-01-01", summary.From)
	assert.Equal(t, "2024-01-07", summary.To)
	assert.Len(t, summary.Days, 7)
	assert.Equal(t, 2, summary.LoggedDays)
	assert.Equal(t, 520, summary.Totals.Calories)
	assert.Equal(t, 260, summary.AverageCalories)
	assert.Equal(t, 2000, summary.Target)

	w = s.do(t, http.MethodGet, "/api/v1/stats?period=day&date=2024-01-02", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[types.StatsSummary](t, w).LoggedDays)
}

func TestGetStatsValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "period@example.com")

	w := s.do(t, http.MethodGet, "/api/v1/stats?period=year", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats?date=01-01-2024", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
