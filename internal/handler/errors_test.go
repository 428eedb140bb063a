package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/response"
)

func TestFailDomainSignaturesMissingCarriesDocuments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	err := &model.Error{
		Code: model.ErrProfileSignaturesMissing,
		ConsentDocuments: []model.ConsentDocument{
			{ID: 3, TypeID: 1, TypeName: "research"},
			{ID: 7, TypeID: 2, TypeName: "biobank"},
		},
	}
	if !failDomain(c, err) {
		t.Fatal("failDomain did not recognize the domain error")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var body struct {
		Error struct {
			Code    response.ErrCode `json:"code"`
			Details struct {
				Documents []model.ConsentDocument `json:"documents"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != response.ErrSignaturesMissing {
		t.Errorf("code = %s, want %s", body.Error.Code, response.ErrSignaturesMissing)
	}
	// The client signs by id, so every outstanding document id must be
	// in the response.
	docs := body.Error.Details.Documents
	if len(docs) != 2 || docs[0].ID != 3 || docs[0].TypeName != "research" || docs[1].ID != 7 {
		t.Errorf("documents = %+v", docs)
	}
}

func TestFailDomainQuestionErrorsCarryQuestionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if !failDomain(c, &model.Error{Code: model.ErrAnswerRequiredMissing, QuestionID: 12}) {
		t.Fatal("failDomain did not recognize the domain error")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body struct {
		Error struct {
			Code   response.ErrCode  `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != response.ErrAnswerRequiredMissing {
		t.Errorf("code = %s", body.Error.Code)
	}
	if body.Error.Fields["questionId"] != "12" {
		t.Errorf("fields = %v, want questionId 12", body.Error.Fields)
	}
}
