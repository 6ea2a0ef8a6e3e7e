package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
)

// MockDataGateway is a mock implementation of gateway.DataGateway
type MockDataGateway struct {
	mock.Mock
}

var _ gateway.DataGateway = (*MockDataGateway)(nil)

func (m *MockDataGateway) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDataGateway) CreateProfile(ctx context.Context, id uuid.UUID, email string, name *string) (*models.Profile, error) {
	args := m.Called(ctx, id, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDataGateway) UpdateProfile(ctx context.Context, id uuid.UUID, update gateway.ProfileUpdate) (*models.Profile, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDataGateway) QueryMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meal), args.Error(1)
}

func (m *MockDataGateway) CreateMeal(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealType, total int) (*models.Meal, error) {
	args := m.Called(ctx, userID, date, slot, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meal), args.Error(1)
}

func (m *MockDataGateway) UpdateMealTotal(ctx context.Context, mealID uuid.UUID, total int) (*models.Meal, error) {
	args := m.Called(ctx, mealID, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meal), args.Error(1)
}

func (m *MockDataGateway) InsertMealItem(ctx context.Context, mealID, foodID uuid.UUID, quantity, calories int) (*models.MealItem, error) {
	args := m.Called(ctx, mealID, foodID, quantity, calories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealItem), args.Error(1)
}

func (m *MockDataGateway) UpdateMealItem(ctx context.Context, itemID uuid.UUID, quantity, calories int) (*models.MealItem, error) {
	args := m.Called(ctx, itemID, quantity, calories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MealItem), args.Error(1)
}

func (m *MockDataGateway) DeleteMealItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockDataGateway) GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Food), args.Error(1)
}

func (m *MockDataGateway) ListFoods(ctx context.Context, filter gateway.FoodFilter) ([]models.Food, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Food), args.Error(1)
}
