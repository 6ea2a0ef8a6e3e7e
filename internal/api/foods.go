package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/service"
)

// FoodHandler serves the food catalog.
type FoodHandler struct {
	foods service.IFoodService
}

func NewFoodHandler(foods service.IFoodService) *FoodHandler {
	return &FoodHandler{foods: foods}
}

func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup) {
	foods := router.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.GET("/:id", h.GetFood)
		foods.GET("/:id/similar", h.SimilarFoods)
	}
}

func (h *FoodHandler) ListFoods(c *gin.Context) {
	category := models.FoodCategory(c.Query("category"))
	if category != "" && !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown food category"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	foods, err := h.foods.Search(c.Request.Context(), c.Query("name"), category, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *FoodHandler) GetFood(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}

	food, err := h.foods.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (h *FoodHandler) SimilarFoods(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid food id"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	foods, err := h.foods.Similar(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}
