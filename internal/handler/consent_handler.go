package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/middleware"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/regsite/registry-backend/internal/validator"
)

// ConsentHandler handles consent requirement listing and signing.
type ConsentHandler struct {
	consents *service.ConsentService
}

// NewConsentHandler creates a new ConsentHandler.
func NewConsentHandler(consents *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consents: consents}
}

// ListOutstanding godoc
// GET /api/v1/surveys/:surveyId/consents?action=create|read
// Lists the documents the user still has to sign for the action.
func (h *ConsentHandler) ListOutstanding(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	surveyID, err := strconv.Atoi(c.Param("surveyId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	action := model.ConsentAction(c.DefaultQuery("action", string(model.ConsentActionCreate)))
	if action != model.ConsentActionCreate && action != model.ConsentActionRead {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	docs, err := h.consents.ListOutstanding(c.Request.Context(), claims.UserID, surveyID, action)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

// Sign godoc
// POST /api/v1/consent-documents/:id/sign
// Records the user's signature on a consent document.
func (h *ConsentHandler) Sign(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SignConsentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.consents.Sign(c.Request.Context(), claims.UserID, documentID, req.Language); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"signed": documentID})
}
