package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealtrack/backend/internal/middleware"
	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/nutrition"
	"github.com/pageza/mealtrack/backend/internal/store"
	"github.com/pageza/mealtrack/backend/internal/types"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

// MealHandler exposes the caller's meal store.
type MealHandler struct {
	registry *workspace.Registry
	limiter  *middleware.RateLimiter
}

func NewMealHandler(registry *workspace.Registry, limiter *middleware.RateLimiter) *MealHandler {
	return &MealHandler{registry: registry, limiter: limiter}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	limit := h.limiter.RateLimitMiddleware()
	{
		meals.GET("", h.GetMeals)
		meals.GET("/:slot", h.GetMealByType)
		meals.POST("/items", limit, h.AddMealItem)
		meals.PATCH("/items/:id", limit, h.UpdateMealItem)
		meals.DELETE("/items/:id", limit, h.RemoveMealItem)
	}
}

func mealsResponse(ws *workspace.Workspace) types.MealsResponse {
	snap := ws.Store.Snapshot()
	totals := nutrition.Totals(snap.Meals)
	target := ws.Session.Profile().Target()
	return types.MealsResponse{
		Date:          snap.CurrentDate.Format(models.DateLayout),
		Meals:         snap.Meals,
		TotalCalories: totals.Calories,
		Totals:        totals,
		Target:        target,
		GoalProgress:  nutrition.GoalProgress(totals.Calories, target),
		MacroSplit:    nutrition.MacroSplit(totals.Protein, totals.Carbs, totals.Fat),
		Loading:       snap.Loading,
	}
}

// GetMeals loads the meals for ?date= (default today) into the store.
func (h *MealHandler) GetMeals(c *gin.Context) {
	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}

	date := store.Day(time.Now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := store.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	ws.Store.SetCurrentDate(date)
	if err := ws.Store.FetchMeals(c.Request.Context(), date, ws.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mealsResponse(ws))
}

// GetMealByType returns the loaded meal for a slot on the current date.
func (h *MealHandler) GetMealByType(c *gin.Context) {
	slot := models.MealType(c.Param("slot"))
	if !slot.IsValid() {
		respondError(c, store.ErrInvalidSlot)
		return
	}

	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}
	meal, found := ws.Store.MealByType(slot)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no meal logged for " + string(slot)})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) AddMealItem(c *gin.Context) {
	var req types.AddMealItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	foodID, err := uuid.Parse(req.FoodID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = store.ParseDate(req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	ws, ok := h.mutable(c)
	if !ok {
		return
	}
	if !date.IsZero() {
		ws.Store.SetCurrentDate(date)
	}

	if err := ws.Store.AddMealItem(c.Request.Context(), models.MealType(req.MealType), foodID, req.Quantity, ws.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mealsResponse(ws))
}

func (h *MealHandler) UpdateMealItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var req types.UpdateMealItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, ok := h.mutable(c)
	if !ok {
		return
	}
	if err := ws.Store.UpdateMealItem(c.Request.Context(), itemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mealsResponse(ws))
}

func (h *MealHandler) RemoveMealItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	ws, ok := h.mutable(c)
	if !ok {
		return
	}
	if err := ws.Store.RemoveMealItem(c.Request.Context(), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mealsResponse(ws))
}

// mutable opens the workspace and rejects the request while the store is
// still loading or applying another change.
func (h *MealHandler) mutable(c *gin.Context) (*workspace.Workspace, bool) {
	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return nil, false
	}
	if ws.Store.Busy() {
		respondError(c, errBusy)
		return nil, false
	}
	return ws, true
}
