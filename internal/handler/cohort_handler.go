package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/regsite/registry-backend/internal/validator"
)

// CohortHandler handles cohort search, counting and federated counts.
type CohortHandler struct {
	search     *service.SearchService
	federation *service.FederationService
}

// NewCohortHandler creates a new CohortHandler.
func NewCohortHandler(search *service.SearchService, federation *service.FederationService) *CohortHandler {
	return &CohortHandler{search: search, federation: federation}
}

// Search godoc
// POST /api/v1/cohorts/search
// Returns the ids of participants matching the criteria.
func (h *CohortHandler) Search(c *gin.Context) {
	var req model.CohortSearchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ids, err := h.search.SearchUsers(c.Request.Context(), req.Criteria)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"userIds": ids, "count": len(ids)})
}

// Count godoc
// POST /api/v1/cohorts/count
// Returns how many participants match the criteria.
func (h *CohortHandler) Count(c *gin.Context) {
	var req model.CohortSearchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	count, err := h.search.CountUsers(c.Request.Context(), req.Criteria)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, count)
}

// FederatedCount godoc
// POST /api/v1/cohorts/federated-count
// Counts the local cohort plus the addressed peer registries.
func (h *CohortHandler) FederatedCount(c *gin.Context) {
	var req model.FederatedCountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.federation.FederatedCount(c.Request.Context(), req)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PeerCount godoc
// POST /api/v1/cohorts/federated
// Receiving side of a cross-host federated count: evaluates portable
// criteria against this registry and returns the cohort size only.
func (h *CohortHandler) PeerCount(c *gin.Context) {
	var req model.FederatedCriteriaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	count, err := h.federation.CountLocal(c.Request.Context(), req.Criteria)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, count)
}
