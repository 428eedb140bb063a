package model

import "time"

// SurveyStatus is the submission status of a (user, survey) pair.
type SurveyStatus string

const (
	SurveyStatusInProgress SurveyStatus = "in-progress"
	SurveyStatusCompleted  SurveyStatus = "completed"
)

// Survey is a survey definition. Question membership lives in
// SurveyQuestion rows.
type Survey struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionParent is a structural ancestor (section or question) of a
// survey question. Enable-when rules attached to an ancestor gate the
// question when it carries no rules of its own.
type QuestionParent struct {
	SectionID  *int `json:"section_id,omitempty"`
	QuestionID *int `json:"question_id,omitempty"`
}

// SurveyQuestion is the membership of a question in a survey together
// with the structure the validator needs: the required flag and the
// parent chain used to resolve inherited enable-when conditions.
type SurveyQuestion struct {
	SurveyID   int              `json:"survey_id"`
	QuestionID int              `json:"question_id"`
	Line       int              `json:"line"`
	Required   bool             `json:"required"`
	Ignore     bool             `json:"ignore"`
	Type       QuestionType     `json:"type"`
	Multiple   bool             `json:"multiple"`
	Parents    []QuestionParent `json:"parents,omitempty"`
}

// UserSurvey tracks the submission status for a (user, survey) pair.
// Status changes are delete-then-insert so created_at always reflects
// the latest status transition.
type UserSurvey struct {
	ID        int          `json:"id"`
	UserID    int          `json:"user_id"`
	SurveyID  int          `json:"survey_id"`
	Status    SurveyStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
