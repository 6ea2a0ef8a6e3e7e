package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealtrack/backend/internal/service"
	"github.com/pageza/mealtrack/backend/internal/store"
	"github.com/pageza/mealtrack/backend/internal/workspace"
)

// StatsHandler serves day, week and month summaries.
type StatsHandler struct {
	registry *workspace.Registry
	stats    service.IStatsService
}

func NewStatsHandler(registry *workspace.Registry, stats service.IStatsService) *StatsHandler {
	return &StatsHandler{registry: registry, stats: stats}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stats", h.GetStats)
}

// GetStats summarizes the period (?period=day|week|month) containing ?date=.
func (h *StatsHandler) GetStats(c *gin.Context) {
	period, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	anchor := store.Day(time.Now())
	if raw := c.Query("date"); raw != "" {
		if anchor, err = store.ParseDate(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	ws, ok := openWorkspace(c, h.registry)
	if !ok {
		return
	}

	summary, err := h.stats.Summary(c.Request.Context(), ws.UserID, period, anchor, ws.Session.Profile().Target())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
