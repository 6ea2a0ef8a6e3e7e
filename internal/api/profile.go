package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealtrack/backend/internal/gateway"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/nutrition"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/types"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

type ProfileHandler struct {
	registry *workspace.Registry
	avatars  service.IAvatarService
}

func NewProfileHandler(registry *workspace.Registry, avatars service.IAvatarService) *ProfileHandler {
	return &ProfileHandler{registry: registry, avatars: avatars}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/avatar", h.UploadAvatar)
	}
}

func profileResponse(p *models.Profile) types.ProfileResponse {
	return types.ProfileResponse{Profile: p, Target: p.Target(), Body: nutrition.ForProfile(p)}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}
	profile := ws.Session.Profile()
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profileResponse(profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var update gateway.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no profile fields to update"})
		return
	}

	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}
	if err := ws.Session.UpdateProfile(c.Request.Context(), update); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(ws.Session.Profile()))
}

// UploadAvatar stores the multipart "avatar" file and points the profile at it.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	if h.avatars == nil {
		respondError(c, service.ErrStorageUnavailable)
		return
	}
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}

	body, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	url, err := h.avatars.Upload(c.Request.Context(), ws.UserID, file.Header.Get("Content-Type"), body, file.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ws.Session.UpdateProfile(c.Request.Context(), gateway.ProfileUpdate{AvatarURL: &url}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(ws.Session.Profile()))
}
