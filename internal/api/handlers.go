package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/middleware"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/session"
	"github.com/pageza/mealtrack/backend/internal/store"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

var errBusy = errors.New("another change is still being saved, try again shortly")

// HealthCheck returns the health status of the API
func HealthCheck(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Meal tracker API is running",
		})
	}
}

// openWorkspace resolves the caller's workspace, writing the error response
// itself when it cannot.
func openWorkspace(c *gin.Context, registry *workspace.Registry) (*workspace.Workspace, bool) {
	ws, err := registry.Open(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ws, true
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		c.JSON(status, gin.H{"error": authErr.Message, "code": authErr.Code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Code {
		case session.CodeInvalidCredentials, session.CodeInvalidToken, session.CodeNotAuthenticated:
			return http.StatusUnauthorized
		case session.CodeEmailTaken:
			return http.StatusConflict
		case session.CodeInvalidInput:
			return http.StatusBadRequest
		case session.CodeProviderUnavailable:
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, workspace.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errBusy):
		return http.StatusConflict
	case errors.Is(err, store.ErrFoodNotFound), errors.Is(err, store.ErrMealItemNotFound),
		errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidQuantity), errors.Is(err, store.ErrInvalidSlot),
		errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidAvatar),
		errors.Is(err, gateway.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
