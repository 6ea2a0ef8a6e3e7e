// Package gateway defines the remote data contract the session and meal
// stores are written against, and its gorm-backed implementation.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealtrack/backend/internal/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidProfile is returned for malformed profile updates.
	ErrInvalidProfile = errors.New("invalid profile update")
)

// Identity is an authenticated session.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthGateway issues and resolves sessions.
type AuthGateway interface {
	// GetSession resolves token. A nil identity with a nil error means no session.
	GetSession(ctx context.Context, token string) (*Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)
	SignInWithIDToken(ctx context.Context, provider, idToken string) (*Identity, error)
	SignOut(ctx context.Context, token string) error
}

// ProfileUpdate is a partial profile. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName       *string  `json:"full_name,omitempty"`
	AvatarURL      *string  `json:"avatar_url,omitempty"`
	TargetCalories *int     `json:"target_calories,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	Weight         *float64 `json:"weight,omitempty"`
	ActivityLevel  *string  `json:"activity_level,omitempty"`
}

// Validate checks the supplied fields.
func (u ProfileUpdate) Validate() error {
	if u.TargetCalories != nil && *u.TargetCalories <= 0 {
		return fmt.Errorf("%w: target_calories must be positive", ErrInvalidProfile)
	}
	if u.Height != nil && *u.Height < 0 {
		return fmt.Errorf("%w: height must not be negative", ErrInvalidProfile)
	}
	if u.Weight != nil && *u.Weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidProfile)
	}
	if u.ActivityLevel != nil && *u.ActivityLevel != "" && !models.IsValidActivityLevel(*u.ActivityLevel) {
		return fmt.Errorf("%w: unknown activity_level %q", ErrInvalidProfile, *u.ActivityLevel)
	}
	return nil
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.AvatarURL == nil && u.TargetCalories == nil &&
		u.Height == nil && u.Weight == nil && u.ActivityLevel == nil
}

// FoodFilter narrows a catalog query.
type FoodFilter struct {
	Name     string
	Category models.FoodCategory
	Limit    int
}

// DataGateway is row-oriented CRUD over profiles, foods, meals and meal items.
type DataGateway interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, id uuid.UUID, email string, name *string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.Profile, error)

	// QueryMeals returns the user's meals for date with items and foods
	// attached, ordered by creation.
	QueryMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error)
	CreateMeal(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealType, total int) (*models.Meal, error)
	UpdateMealTotal(ctx context.Context, mealID uuid.UUID, total int) (*models.Meal, error)
	InsertMealItem(ctx context.Context, mealID, foodID uuid.UUID, quantity, calories int) (*models.MealItem, error)
	UpdateMealItem(ctx context.Context, itemID uuid.UUID, quantity, calories int) (*models.MealItem, error)
	DeleteMealItem(ctx context.Context, itemID uuid.UUID) error

	GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error)
	ListFoods(ctx context.Context, filter FoodFilter) ([]models.Food, error)
}
