package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/regsite/registry-backend/internal/validator"
)

// RegistryHandler handles peer registry and identifier administration.
type RegistryHandler struct {
	registries service.RegistryStore
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(registries service.RegistryStore) *RegistryHandler {
	return &RegistryHandler{registries: registries}
}

// List godoc
// GET /api/v1/registries
func (h *RegistryHandler) List(c *gin.Context) {
	regs, err := h.registries.ListRegistries(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"registries": regs})
}

// Create godoc
// POST /api/v1/registries
func (h *RegistryHandler) Create(c *gin.Context) {
	var req model.CreateRegistryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if (req.URL == nil) == (req.Schema == nil) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"url": "exactly one of url or schema must be set",
		})
		return
	}

	reg := &model.Registry{Name: req.Name, URL: req.URL, Schema: req.Schema}
	if err := h.registries.CreateRegistry(c.Request.Context(), reg); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"registry": reg})
}

// CreateIdentifier godoc
// POST /api/v1/registries/identifiers
// Maps a question (or choice) to a portable federated token.
func (h *RegistryHandler) CreateIdentifier(c *gin.Context) {
	var req model.CreateIdentifierRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ai := &model.AnswerIdentifier{
		Type:             req.Type,
		Identifier:       req.Identifier,
		QuestionID:       req.QuestionID,
		QuestionChoiceID: req.QuestionChoiceID,
	}
	if err := h.registries.CreateIdentifier(c.Request.Context(), ai); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"identifier": ai})
}
