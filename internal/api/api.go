package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/middleware"
	"github.com/pageza/mealtrack/backend/internal/realtime"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

// Dependencies are the services the handlers are built from.
type Dependencies struct {
	Auth     service.IAuthService
	Registry *workspace.Registry
	Foods    service.IFoodService
	Stats    service.IStatsService
	Avatars  service.IAvatarService
	Hub      *realtime.Hub
	Limiter  *middleware.RateLimiter
	// Ping reports whether the database is reachable.
	Ping func(ctx context.Context) error
	Log  logrus.FieldLogger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewMealMutationRateLimiter(nil, 0)
	}

	health := HealthCheck(deps.Ping)
	router.GET("/health", health)
	router.GET("/api/health", health)

	v1 := router.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(deps.Auth)

	NewAuthHandler(deps.Auth, deps.Registry).RegisterRoutes(v1, requireAuth)
	NewFoodHandler(deps.Foods).RegisterRoutes(v1)

	authed := v1.Group("")
	authed.Use(requireAuth)
	NewProfileHandler(deps.Registry, deps.Avatars).RegisterRoutes(authed)
	NewMealHandler(deps.Registry, deps.Limiter).RegisterRoutes(authed)
	NewStatsHandler(deps.Registry, deps.Stats).RegisterRoutes(authed)
	if deps.Hub != nil {
		NewRealtimeHandler(deps.Registry, deps.Hub, deps.Log).RegisterRoutes(authed)
	}
}
