package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
)

// failDomain maps a typed domain error onto the HTTP surface. Returns
// false when err is not a domain error so the caller can fall through
// to a generic failure.
func failDomain(c *gin.Context, err error) bool {
	de := model.AsError(err)
	if de == nil {
		return false
	}

	switch de.Code {
	case model.ErrAnswerQxNotInSurvey:
		failQuestion(c, response.ErrAnswerQxNotInSurvey, de.QuestionID)
	case model.ErrAnswerNoMultiQuestionIndex:
		failQuestion(c, response.ErrAnswerNoMultiQuestionIndex, de.QuestionID)
	case model.ErrAnswerMultipleTypeAnswers:
		failQuestion(c, response.ErrAnswerMultipleTypeAnswers, de.QuestionID)
	case model.ErrAnswerMultipleTypeChoice:
		failQuestion(c, response.ErrAnswerMultipleTypeChoice, de.QuestionID)
	case model.ErrAnswerNotUnderstood:
		failQuestion(c, response.ErrAnswerNotUnderstood, de.QuestionID)
	case model.ErrAnswerRequiredMissing:
		failQuestion(c, response.ErrAnswerRequiredMissing, de.QuestionID)
	case model.ErrAnswerToBeSkippedAnswered:
		failQuestion(c, response.ErrAnswerSkippedAnswered, de.QuestionID)
	case model.ErrProfileSignaturesMissing:
		// The client signs by document id, so the response carries the
		// outstanding documents themselves.
		response.FailWithDetails(c, http.StatusForbidden, response.ErrSignaturesMissing,
			gin.H{"documents": de.ConsentDocuments})
	case model.ErrSearchQuestionRepeat:
		failQuestion(c, response.ErrSearchQuestionRepeat, de.QuestionID)
	case model.ErrRegistryNoneFound:
		response.Fail(c, http.StatusNotFound, response.ErrRegistryNoneFound)
	case model.ErrRegistryIDNotFound:
		response.Fail(c, http.StatusNotFound, response.ErrRegistryIDNotFound)
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	}
	return true
}

func failQuestion(c *gin.Context, code response.ErrCode, questionID int) {
	if questionID == 0 {
		response.Fail(c, http.StatusBadRequest, code)
		return
	}
	response.FailWithFields(c, http.StatusBadRequest, code, map[string]string{
		"questionId": strconv.Itoa(questionID),
	})
}
