package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"
	"github.com/nulzo/model-catalog-api/internal/server/validator"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

type ModelHandler struct {
	catalog     Catalog
	environment EnvironmentFunc
	validator   *validator.Validator
	schema      *jsonschema.Schema
}

func NewModelHandler(cat Catalog, env EnvironmentFunc, v *validator.Validator) *ModelHandler {
	return &ModelHandler{
		catalog:     cat,
		environment: env,
		validator:   v,
		schema:      jsonschema.Reflect(&api.ModelInfo{}),
	}
}

type listModelsQuery struct {
	Refresh bool `form:"refresh"`
}

type modelQuery struct {
	ID string `form:"id" binding:"required"`
}

type capabilityQuery struct {
	ID         string `form:"id" binding:"required"`
	Capability string `form:"capability" binding:"required,oneof=vision webSearch premium"`
}

// List returns the aggregated catalog. Provider failures are reported in
// metadata and never turn into an error response.
//
// GET /v1/models?refresh=true
func (h *ModelHandler) List(c *gin.Context) {
	var q listModelsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	creds, err := credentials(c, h.environment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.catalog.Aggregate(c.Request.Context(), creds, q.Refresh))
}

// Details returns a single model.
//
// GET /v1/models/details?id=openrouter/openai/gpt-4o
func (h *ModelHandler) Details(c *gin.Context) {
	var q modelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	creds, err := credentials(c, h.environment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	model, ok := h.catalog.ModelDetails(c.Request.Context(), creds, q.ID)
	if !ok {
		_ = c.Error(api.NotFoundError("Model '" + q.ID + "' is not in the catalog"))
		return
	}

	c.JSON(http.StatusOK, model)
}

// Capability reports whether a model supports vision, webSearch or premium.
//
// GET /v1/models/capabilities?id=...&capability=vision
func (h *ModelHandler) Capability(c *gin.Context) {
	var q capabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	creds, err := credentials(c, h.environment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	capability := api.Capability(q.Capability)
	c.JSON(http.StatusOK, gin.H{
		"id":         q.ID,
		"capability": capability,
		"supported":  h.catalog.CheckCapability(c.Request.Context(), creds, q.ID, capability),
	})
}

// Schema returns the JSON schema of a catalog model.
//
// GET /v1/models/schema
func (h *ModelHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}
