package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-catalog-api/internal/analytics"
	"github.com/nulzo/model-catalog-api/internal/server/validator"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

// AnalyticsHandler serves provider check history. service is nil when
// persistence is disabled.
type AnalyticsHandler struct {
	service   analytics.Service
	validator *validator.Validator
}

func NewAnalyticsHandler(service analytics.Service, v *validator.Validator) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:   service,
		validator: v,
	}
}

type checksQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

type uptimeQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=90"`
}

// Checks lists recent checks of one provider.
//
// GET /v1/providers/:key/checks?limit=20
func (h *AnalyticsHandler) Checks(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	var q checksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	checks, err := h.service.RecentChecks(c.Request.Context(), c.Param("key"), q.Limit)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch provider checks", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   checks,
	})
}

// Uptime returns the daily healthy ratio per provider.
//
// GET /v1/analytics/uptime?days=7
func (h *AnalyticsHandler) Uptime(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	var q uptimeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	stats, err := h.service.Uptime(c.Request.Context(), q.Days)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch uptime", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   stats,
	})
}

func (h *AnalyticsHandler) enabled(c *gin.Context) bool {
	if h.service == nil {
		_ = c.Error(api.NotFoundError("Check history is disabled on this server"))
		return false
	}
	return true
}
