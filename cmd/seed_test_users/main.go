package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/config"
	"github.com/pageza/mealtrack/backend/internal/database"
	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/session"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

const testPassword = "testpassword123"

type loggedFood struct {
	slot  models.MealType
	food  string
	grams int
}

type testUser struct {
	name     string
	email    string
	target   int
	height   float64
	weight   float64
	activity string
	today    []loggedFood
}

var testUsers = []testUser{
	{
		name: "김민지", email: "minji@example.com", target: 1800, height: 163, weight: 55, activity: models.ActivityLight,
		today: []loggedFood{
			{models.MealTypeBreakfast, "오트밀", 40},
			{models.MealTypeBreakfast, "블루베리", 80},
			{models.MealTypeLunch, "현미밥", 210},
			{models.MealTypeLunch, "닭가슴살", 120},
			{models.MealTypeSnack, "아몬드", 20},
		},
	},
	{
		name: "Jane Smith", email: "jane.smith@example.com", target: 2200, height: 172, weight: 68, activity: models.ActivityActive,
		today: []loggedFood{
			{models.MealTypeBreakfast, "계란", 100},
			{models.MealTypeBreakfast, "토스트", 60},
			{models.MealTypeDinner, "연어", 150},
			{models.MealTypeDinner, "브로콜리", 100},
		},
	},
	{
		name: "New User", email: "new.user@example.com",
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg)
	ctx := context.Background()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if _, err := database.SeedFoods(ctx, db, log); err != nil {
		log.WithError(err).Fatal("failed to seed food catalog")
	}

	gw := gateway.NewGormGateway(db)
	auth := service.NewAuthService(db, cfg.JWTSecret, service.WithAuthLogger(log))
	registry := workspace.NewRegistry(auth, gw, workspace.WithLogger(log))

	foods, err := gw.ListFoods(ctx, gateway.FoodFilter{Limit: 100})
	if err != nil {
		log.WithError(err).Fatal("failed to load food catalog")
	}
	byName := make(map[string]models.Food, len(foods))
	for _, f := range foods {
		byName[f.Name] = f
	}

	for _, u := range testUsers {
		entry := log.WithField("email", u.email)

		ws := registry.NewAnonymous()
		err := ws.Session.SignUp(ctx, u.email, testPassword, u.name)
		var authErr *session.AuthError
		if errors.As(err, &authErr) && authErr.Code == session.CodeEmailTaken {
			entry.Info("user already exists, skipping")
			continue
		}
		if err != nil {
			entry.WithError(err).Error("failed to create user")
			continue
		}
		if err := registry.Adopt(ws); err != nil {
			entry.WithError(err).Error("failed to open workspace")
			continue
		}

		if u.target > 0 {
			update := gateway.ProfileUpdate{
				TargetCalories: &u.target,
				Height:         &u.height,
				Weight:         &u.weight,
				ActivityLevel:  &u.activity,
			}
			if err := ws.Session.UpdateProfile(ctx, update); err != nil {
				entry.WithError(err).Error("failed to update profile")
			}
		}

		for _, lf := range u.today {
			food, ok := byName[lf.food]
			if !ok {
				entry.WithField("food", lf.food).Warn("food not in catalog")
				continue
			}
			if err := ws.Store.AddMealItem(ctx, lf.slot, food.ID, lf.grams, ws.UserID); err != nil {
				entry.WithError(err).WithField("food", lf.food).Error("failed to log food")
			}
		}

		entry.WithField("calories_today", ws.Store.TotalCalories()).Info("created test user")
	}

	log.WithField("password", testPassword).Info("test users ready")
}
