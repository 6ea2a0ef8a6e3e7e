package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
)

const defaultSimilarLimit = 5

// FoodService serves the read-only food catalog.
type FoodService struct {
	db *gorm.DB
	gw gateway.DataGateway
}

var _ IFoodService = (*FoodService)(nil)

func NewFoodService(db *gorm.DB, gw gateway.DataGateway) *FoodService {
	return &FoodService{db: db, gw: gw}
}

func (s *FoodService) Search(ctx context.Context, name string, category models.FoodCategory, limit int) ([]models.Food, error) {
	return s.gw.ListFoods(ctx, gateway.FoodFilter{Name: name, Category: category, Limit: limit})
}

func (s *FoodService) Get(ctx context.Context, id uuid.UUID) (*models.Food, error) {
	return s.gw.GetFood(ctx, id)
}

// Similar returns the foods whose nutrient profile is nearest to id's.
func (s *FoodService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Food, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	food, err := s.gw.GetFood(ctx, id)
	if err != nil {
		return nil, err
	}
	vec := food.NutrientVector()

	if s.db.Dialector.Name() == "postgres" {
		var foods []models.Food
		err := s.db.WithContext(ctx).
			Where("id <> ? AND nutrient_profile IS NOT NULL", id).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "nutrient_profile <-> ?", Vars: []interface{}{vec}},
			}).
			Limit(limit).
			Find(&foods).Error
		if err != nil {
			return nil, fmt.Errorf("find similar foods: %w", err)
		}
		return foods, nil
	}

	// No vector operator outside postgres; rank in process.
	var foods []models.Food
	if err := s.db.WithContext(ctx).Where("id <> ?", id).Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("find similar foods: %w", err)
	}
	target := vec.Slice()
	sort.SliceStable(foods, func(i, j int) bool {
		return distance(target, foods[i].NutrientVector().Slice()) < distance(target, foods[j].NutrientVector().Slice())
	})
	if len(foods) > limit {
		foods = foods[:limit]
	}
	return foods, nil
}

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
