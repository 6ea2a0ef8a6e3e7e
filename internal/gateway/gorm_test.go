package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/testhelpers"
)

func setupGateway(t *testing.T) (*gateway.GormGateway, *gorm.DB) {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	return gateway.NewGormGateway(db), db
}

func TestProfileLifecycle(t *testing.T) {
	gw, _ := setupGateway(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := gw.GetProfile(ctx, id)
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	name := "김민지"
	created, err := gw.CreateProfile(ctx, id, "minji@example.com", &name)
	require.NoError(t, err)
	require.NotNil(t, created.TargetCalories)
	assert.Equal(t, models.DefaultTargetCalories, *created.TargetCalories)

	target := 1800
	height := 165.0
	updated, err := gw.UpdateProfile(ctx, id, gateway.ProfileUpdate{TargetCalories: &target, Height: &height})
	require.NoError(t, err)
	assert.Equal(t, 1800, *updated.TargetCalories)
	assert.Equal(t, 165.0, *updated.Height)
	assert.Equal(t, "김민지", *updated.FullName)
}

func TestUpdateProfileErrors(t *testing.T) {
	gw, _ := setupGateway(t)
	ctx := context.Background()

	negative := -1
	_, err := gw.UpdateProfile(ctx, uuid.New(), gateway.ProfileUpdate{TargetCalories: &negative})
	assert.ErrorIs(t, err, gateway.ErrInvalidProfile)

	level := "couch"
	_, err = gw.UpdateProfile(ctx, uuid.New(), gateway.ProfileUpdate{ActivityLevel: &level})
	assert.ErrorIs(t, err, gateway.ErrInvalidProfile)

	target := 2100
	_, err = gw.UpdateProfile(ctx, uuid.New(), gateway.ProfileUpdate{TargetCalories: &target})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestCreateMealAccumulatesPerSlot(t *testing.T) {
	gw, db := setupGateway(t)
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	first, err := gw.CreateMeal(ctx, userID, day, models.MealTypeBreakfast, 78)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, 78, first.TotalCalories)

	second, err := gw.CreateMeal(ctx, userID, day.Add(3*time.Hour), models.MealTypeBreakfast, 26)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 104, second.TotalCalories)

	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	lunch, err := gw.CreateMeal(ctx, userID, day, models.MealTypeLunch, 10)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, lunch.ID)

	updated, err := gw.UpdateMealTotal(ctx, first.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.TotalCalories)

	_, err = gw.UpdateMealTotal(ctx, uuid.New(), 50)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestQueryMealsAttachesItemsAndFoods(t *testing.T) {
	gw, db := setupGateway(t)
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	apple := testhelpers.CreateFood(t, db, "사과", 52)
	rice := testhelpers.CreateFood(t, db, "쌀밥", 130)

	meal, err := gw.CreateMeal(ctx, userID, day, models.MealTypeLunch, 0)
	require.NoError(t, err)
	first, err := gw.InsertMealItem(ctx, meal.ID, apple.ID, 150, 78)
	require.NoError(t, err)
	second, err := gw.InsertMealItem(ctx, meal.ID, rice.ID, 210, 273)
	require.NoError(t, err)

	// Meals on other days and of other users are excluded.
	_, err = gw.CreateMeal(ctx, userID, day.AddDate(0, 0, 1), models.MealTypeLunch, 0)
	require.NoError(t, err)
	_, err = gw.CreateMeal(ctx, uuid.New(), day, models.MealTypeLunch, 0)
	require.NoError(t, err)

	meals, err := gw.QueryMeals(ctx, userID, day)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Len(t, meals[0].MealItems, 2)
	assert.Equal(t, first.ID, meals[0].MealItems[0].ID)
	assert.Equal(t, second.ID, meals[0].MealItems[1].ID)
	require.NotNil(t, meals[0].MealItems[1].Food)
	assert.Equal(t, "쌀밥", meals[0].MealItems[1].Food.Name)
	assert.Equal(t, 351, meals[0].ItemCalories())
}

func TestMealItemUpdateAndDelete(t *testing.T) {
	gw, db := setupGateway(t)
	ctx := context.Background()
	apple := testhelpers.CreateFood(t, db, "사과", 52)

	meal, err := gw.CreateMeal(ctx, uuid.New(), time.Now(), models.MealTypeSnack, 78)
	require.NoError(t, err)
	item, err := gw.InsertMealItem(ctx, meal.ID, apple.ID, 150, 78)
	require.NoError(t, err)

	updated, err := gw.UpdateMealItem(ctx, item.ID, 200, 104)
	require.NoError(t, err)
	assert.Equal(t, 200, updated.Quantity)
	assert.Equal(t, 104, updated.Calories)
	require.NotNil(t, updated.Food)
	assert.Equal(t, apple.ID, updated.Food.ID)

	_, err = gw.UpdateMealItem(ctx, uuid.New(), 1, 1)
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	require.NoError(t, gw.DeleteMealItem(ctx, item.ID))
	assert.ErrorIs(t, gw.DeleteMealItem(ctx, item.ID), gateway.ErrNotFound)
}

func TestListFoods(t *testing.T) {
	gw, db := setupGateway(t)
	ctx := context.Background()
	testhelpers.CreateFoodWithMacros(t, db, "Banana", models.CategoryFruit, 89, 1.1, 23, 0.3)
	testhelpers.CreateFoodWithMacros(t, db, "Apple", models.CategoryFruit, 52, 0.3, 14, 0.2)
	testhelpers.CreateFoodWithMacros(t, db, "Tofu", models.CategoryProtein, 76, 8, 1.9, 4.8)

	foods, err := gw.ListFoods(ctx, gateway.FoodFilter{})
	require.NoError(t, err)
	require.Len(t, foods, 3)
	assert.Equal(t, "Apple", foods[0].Name)

	foods, err = gw.ListFoods(ctx, gateway.FoodFilter{Name: "APP"})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Apple", foods[0].Name)

	foods, err = gw.ListFoods(ctx, gateway.FoodFilter{Category: models.CategoryFruit, Limit: 1})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Apple", foods[0].Name)

	_, err = gw.GetFood(ctx, uuid.New())
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
