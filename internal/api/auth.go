package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealtrack/backend/internal/middleware"
	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/types"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

// AuthHandler handles sign-in, sign-up and sign-out.
type AuthHandler struct {
	authService service.IAuthService
	registry    *workspace.Registry
}

func NewAuthHandler(authService service.IAuthService, registry *workspace.Registry) *AuthHandler {
	return &AuthHandler{authService: authService, registry: registry}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/signin", h.SignIn)
		auth.POST("/google", h.SignInWithGoogle)
		auth.POST("/signout", requireAuth, h.SignOut)
	}
	router.GET("/session", requireAuth, h.Session)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req types.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := h.registry.NewAnonymous()
	if err := ws.Session.SignUp(c.Request.Context(), req.Email, req.Password, req.Name); err != nil {
		respondError(c, err)
		return
	}
	h.adopt(c, ws, http.StatusCreated)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req types.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := h.registry.NewAnonymous()
	if err := ws.Session.SignInWithPassword(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}
	h.adopt(c, ws, http.StatusOK)
}

func (h *AuthHandler) SignInWithGoogle(c *gin.Context) {
	var req types.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := h.registry.NewAnonymous()
	if err := ws.Session.SignInWithGoogle(c.Request.Context(), req.IDToken); err != nil {
		respondError(c, err)
		return
	}
	h.adopt(c, ws, http.StatusOK)
}

func (h *AuthHandler) adopt(c *gin.Context, ws *workspace.Workspace, status int) {
	if err := h.registry.Adopt(ws); err != nil {
		respondError(c, err)
		return
	}
	snap := ws.Session.Snapshot()
	c.JSON(status, types.AuthResponse{
		Token:     ws.Session.Token(),
		ExpiresAt: snap.Identity.ExpiresAt,
		Profile:   snap.Profile,
	})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.registry.Close(c.Request.Context(), middleware.Token(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Session returns the caller's session state.
func (h *AuthHandler) Session(c *gin.Context) {
	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Session.Snapshot())
}
