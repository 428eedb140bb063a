package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/export"
	"github.com/regsite/registry-backend/internal/middleware"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/regsite/registry-backend/internal/validator"
)

// AnswerHandler handles answer submission, retrieval, history and the
// export/import endpoints.
type AnswerHandler struct {
	answers *service.AnswerService
	exports *service.ExportService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answers *service.AnswerService, exports *service.ExportService) *AnswerHandler {
	return &AnswerHandler{answers: answers, exports: exports}
}

// Submit godoc
// POST /api/v1/answers
// Validates and atomically persists an answer batch.
func (h *AnswerHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.answers.Submit(c.Request.Context(), claims.UserID, req.SurveyID, req.Language, req.Status, req.Answers)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		if err == service.ErrFileTooLarge {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		if err == service.ErrSurveyNotFound {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": req.Status})
}

// GetSurveyAnswers godoc
// GET /api/v1/surveys/:surveyId/answers
// Returns the live answers of one survey in client shape.
func (h *AnswerHandler) GetSurveyAnswers(c *gin.Context) {
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

	answers, err := h.answers.GetAnswers(c.Request.Context(), claims.UserID, surveyID)
	if err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	status, err := h.answers.GetStatus(c.Request.Context(), claims.UserID, surveyID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	data := gin.H{"answers": answers}
	if status != nil {
		data["status"] = status.Status
	}
	response.Success(c, http.StatusOK, data)
}

// History godoc
// GET /api/v1/answers/history?surveyId=
// Returns superseded answers, optionally limited to one survey.
func (h *AnswerHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var surveyID *int
	if raw := c.Query("surveyId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		surveyID = &id
	}

	history, err := h.answers.ListHistory(c.Request.Context(), claims.UserID, surveyID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// StartExport godoc
// POST /api/v1/answers/export
// Queues a CSV export of the user's answers; returns the job id.
func (h *AnswerHandler) StartExport(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	jobID, err := h.exports.Enqueue(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"jobId": jobID})
}

// GetExport godoc
// GET /api/v1/answers/export/:jobId
// Returns the finished CSV, or the job status while it is running.
func (h *AnswerHandler) GetExport(c *gin.Context) {
	jobID := c.Param("jobId")

	status, err := h.exports.Status(c.Request.Context(), jobID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	switch status {
	case "":
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	case service.ExportStatusPending:
		response.Fail(c, http.StatusConflict, response.ErrExportNotReady)
		return
	case service.ExportStatusFailed:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	data, err := h.exports.Result(c.Request.Context(), jobID)
	if err != nil || data == nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=answers.csv")
	c.Data(http.StatusOK, "text/csv", data)
}

// Import godoc
// POST /api/v1/answers/import
// Replaces the user's answers with the uploaded CSV.
func (h *AnswerHandler) Import(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	recs, err := export.UnmarshalCSV(body)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	language := c.Query("language")
	if err := h.answers.ImportForUser(c.Request.Context(), claims.UserID, language, recs); err != nil {
		if failDomain(c, err) {
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"imported": len(recs)})
}
