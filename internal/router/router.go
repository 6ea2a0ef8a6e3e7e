package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/mealtrack/backend/internal/api"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/middleware"
)

// SetupRouter configures the global middleware and application routes.
func SetupRouter(log logrus.FieldLogger, corsOrigins []string, deps api.Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(logging.GinLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS(corsOrigins))

	if deps.Log == nil {
		deps.Log = log
	}
	api.RegisterRoutes(router, deps)

	return router
}
