package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/mealtrack/backend/internal/api"
	"github.com/pageza/mealtrack/backend/internal/logging"
	"github.com/pageza/mealtrack/backend/internal/testingutils"
)

func TestSetupRouterServesHealthWithoutServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(logging.Discard(), nil, api.Dependencies{})

	w := testingutils.PerformRequest(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
