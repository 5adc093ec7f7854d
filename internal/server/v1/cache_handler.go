package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

type CacheHandler struct {
	catalog Catalog
}

func NewCacheHandler(cat Catalog) *CacheHandler {
	return &CacheHandler{catalog: cat}
}

// Stats reports total, valid and expired provider cache entries.
//
// GET /v1/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.CacheStats(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalError("Failed to read cache statistics", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Clear drops one provider's cache entry, or all of them without ?provider.
//
// DELETE /v1/cache?provider=openrouter
func (h *CacheHandler) Clear(c *gin.Context) {
	provider := c.Query("provider")
	if provider != "" && !h.known(provider) {
		_ = c.Error(api.NotFoundError("Unknown provider '" + provider + "'"))
		return
	}

	if err := h.catalog.ClearCache(c.Request.Context(), provider); err != nil {
		_ = c.Error(api.InternalError("Failed to clear cache", err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CacheHandler) known(key string) bool {
	for _, p := range h.catalog.Providers() {
		if p.Key == key {
			return true
		}
	}
	return false
}
