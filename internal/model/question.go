package model

import "time"

// QuestionType enumerates the supported question value kinds.
type QuestionType string

const (
	QuestionTypeText          QuestionType = "text"
	QuestionTypeBool          QuestionType = "bool"
	QuestionTypeChoice        QuestionType = "choice"
	QuestionTypeChoices       QuestionType = "choices"
	QuestionTypeChoiceRef     QuestionType = "choice-ref"
	QuestionTypeEnumeration   QuestionType = "enumeration"
	QuestionTypeInteger       QuestionType = "integer"
	QuestionTypeFloat         QuestionType = "float"
	QuestionTypeNumber        QuestionType = "number"
	QuestionTypeDate          QuestionType = "date"
	QuestionTypeYear          QuestionType = "year"
	QuestionTypeMonth         QuestionType = "month"
	QuestionTypeDay           QuestionType = "day"
	QuestionTypeFeetInches    QuestionType = "feet-inches"
	QuestionTypeBloodPressure QuestionType = "blood-pressure"
	QuestionTypeFile          QuestionType = "file"
)

// Question is a reusable survey question definition.
type Question struct {
	ID        int              `json:"id"`
	Text      string           `json:"text"`
	Type      QuestionType     `json:"type"`
	Multiple  bool             `json:"multiple"`
	Choices   []QuestionChoice `json:"choices,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// QuestionChoice is a selectable option of a choice/choices question.
// Type describes the value a selection may carry alongside the choice
// itself (bool when the choice is a plain checkbox).
type QuestionChoice struct {
	ID         int          `json:"id"`
	QuestionID int          `json:"question_id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Line       int          `json:"line"`
}
