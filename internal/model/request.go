package model

// LoginRequest is the credential payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a participant account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SubmitAnswersRequest is one answer batch submission.
type SubmitAnswersRequest struct {
	SurveyID int            `json:"surveyId" binding:"required"`
	Language string         `json:"language"`
	Status   SurveyStatus   `json:"status" binding:"required,oneof=in-progress completed"`
	Answers  []ClientAnswer `json:"answers"`
}

// SignConsentRequest signs one consent document.
type SignConsentRequest struct {
	Language string `json:"language"`
}

// CreateRegistryRequest registers a peer registry. Exactly one of URL
// or Schema must be set.
type CreateRegistryRequest struct {
	Name   string  `json:"name" binding:"required"`
	URL    *string `json:"url,omitempty"`
	Schema *string `json:"schema,omitempty"`
}

// CreateIdentifierRequest maps a question (or choice) to a portable
// federated token.
type CreateIdentifierRequest struct {
	Type             string `json:"type" binding:"required"`
	Identifier       string `json:"identifier" binding:"required"`
	QuestionID       int    `json:"questionId" binding:"required"`
	QuestionChoiceID *int   `json:"questionChoiceId,omitempty"`
}

// CohortSearchRequest carries local-vocabulary criteria.
type CohortSearchRequest struct {
	Criteria SearchCriteria `json:"criteria"`
}

// FederatedCriteriaRequest is the receiving side of a cross-host
// federated count.
type FederatedCriteriaRequest struct {
	Criteria FederatedSearchCriteria `json:"criteria"`
}
