package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealtrack/backend/internal/models"
)

const defaultFoodLimit = 50

// GormGateway implements DataGateway on a relational database.
type GormGateway struct {
	db *gorm.DB
}

var _ DataGateway = (*GormGateway)(nil)

// NewGormGateway creates a new GormGateway instance
func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *GormGateway) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := g.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// CreateProfile inserts a profile with the default calorie target.
func (g *GormGateway) CreateProfile(ctx context.Context, id uuid.UUID, email string, name *string) (*models.Profile, error) {
	target := models.DefaultTargetCalories
	profile := &models.Profile{
		ID:             id,
		Email:          email,
		FullName:       name,
		TargetCalories: &target,
	}
	if err := g.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (g *GormGateway) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.FullName != nil {
		updates["full_name"] = *update.FullName
	}
	if update.AvatarURL != nil {
		updates["avatar_url"] = *update.AvatarURL
	}
	if update.TargetCalories != nil {
		updates["target_calories"] = *update.TargetCalories
	}
	if update.Height != nil {
		updates["height"] = *update.Height
	}
	if update.Weight != nil {
		updates["weight"] = *update.Weight
	}
	if update.ActivityLevel != nil {
		updates["activity_level"] = *update.ActivityLevel
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := g.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return g.GetProfile(ctx, id)
}

func (g *GormGateway) QueryMeals(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.Format(models.DateLayout)).
		Preload("MealItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("meal_items.created_at ASC")
		}).
		Preload("MealItems.Food").
		Order("created_at ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	return meals, nil
}

// CreateMeal inserts the meal for (user, date, slot). If that slot already
// has a meal, total is added to its existing total and the existing row is
// returned.
func (g *GormGateway) CreateMeal(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealType, total int) (*models.Meal, error) {
	day := date.Format(models.DateLayout)
	meal := &models.Meal{
		ID:            uuid.New(),
		UserID:        userID,
		Date:          day,
		MealType:      slot,
		TotalCalories: total,
	}

	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "meal_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_calories": gorm.Expr("meals.total_calories + excluded.total_calories"),
			"updated_at":     gorm.Expr("excluded.updated_at"),
		}),
	}).Create(meal).Error
	if err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}

	var stored models.Meal
	err = g.db.WithContext(ctx).
		First(&stored, "user_id = ? AND date = ? AND meal_type = ?", userID, day, slot).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (g *GormGateway) UpdateMealTotal(ctx context.Context, mealID uuid.UUID, total int) (*models.Meal, error) {
	res := g.db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", mealID).
		Updates(map[string]interface{}{"total_calories": total, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("update meal total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var meal models.Meal
	if err := g.db.WithContext(ctx).First(&meal, "id = ?", mealID).Error; err != nil {
		return nil, notFound(err)
	}
	return &meal, nil
}

func (g *GormGateway) InsertMealItem(ctx context.Context, mealID, foodID uuid.UUID, quantity, calories int) (*models.MealItem, error) {
	item := &models.MealItem{
		ID:       uuid.New(),
		MealID:   mealID,
		FoodID:   foodID,
		Quantity: quantity,
		Calories: calories,
	}
	if err := g.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("insert meal item: %w", err)
	}
	return item, nil
}

func (g *GormGateway) UpdateMealItem(ctx context.Context, itemID uuid.UUID, quantity, calories int) (*models.MealItem, error) {
	res := g.db.WithContext(ctx).Model(&models.MealItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{"quantity": quantity, "calories": calories})
	if res.Error != nil {
		return nil, fmt.Errorf("update meal item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var item models.MealItem
	if err := g.db.WithContext(ctx).Preload("Food").First(&item, "id = ?", itemID).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (g *GormGateway) DeleteMealItem(ctx context.Context, itemID uuid.UUID) error {
	res := g.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.MealItem{})
	if res.Error != nil {
		return fmt.Errorf("delete meal item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormGateway) GetFood(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	var food models.Food
	if err := g.db.WithContext(ctx).First(&food, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &food, nil
}

// ListFoods matches the name filter case-insensitively against both names.
func (g *GormGateway) ListFoods(ctx context.Context, filter FoodFilter) ([]models.Food, error) {
	query := g.db.WithContext(ctx).Model(&models.Food{})

	if name := strings.TrimSpace(filter.Name); name != "" {
		pattern := "%" + strings.ToLower(name) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(name_en) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFoodLimit
	}

	var foods []models.Food
	if err := query.Order("name ASC").Limit(limit).Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}
