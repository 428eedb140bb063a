package model

import "time"

// FeetInchesValue is a height answer.
type FeetInchesValue struct {
	Feet   int `json:"feet"`
	Inches int `json:"inches"`
}

// BloodPressureValue is a blood pressure answer.
type BloodPressureValue struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// FileValue is a file answer. Content is only populated on the way in;
// after storage the answer references the stored record by ID and the
// content is stripped from the payload.
type FileValue struct {
	ID      *int   `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Content []byte `json:"content,omitempty"`
}

// ChoiceSelection is one selected choice of a multi-select answer,
// optionally carrying a typed value (a free-text amount next to the
// checkbox, for example). A selection with no value stores "true".
type ChoiceSelection struct {
	ID      int      `json:"id"`
	Text    *string  `json:"textValue,omitempty"`
	Bool    *bool    `json:"boolValue,omitempty"`
	Integer *int     `json:"integerValue,omitempty"`
	Number  *float64 `json:"numberValue,omitempty"`
	Month   *string  `json:"monthValue,omitempty"`
	Year    *string  `json:"yearValue,omitempty"`
}

// AnswerValue is the client-level answer payload: a tagged union keyed
// by exactly one of its fields. Setting more than one field is a fatal
// encoding error; setting none means the answer is not understood.
type AnswerValue struct {
	Bool          *bool               `json:"boolValue,omitempty"`
	Date          *string             `json:"dateValue,omitempty"`
	Year          *string             `json:"yearValue,omitempty"`
	Month         *string             `json:"monthValue,omitempty"`
	Day           *string             `json:"dayValue,omitempty"`
	Text          *string             `json:"textValue,omitempty"`
	Number        *float64            `json:"numberValue,omitempty"`
	Integer       *int                `json:"integerValue,omitempty"`
	Float         *float64            `json:"floatValue,omitempty"`
	FeetInches    *FeetInchesValue    `json:"feetInchesValue,omitempty"`
	BloodPressure *BloodPressureValue `json:"bloodPressureValue,omitempty"`
	Choice        *int                `json:"choice,omitempty"`
	Choices       []ChoiceSelection   `json:"choices,omitempty"`
	File          *FileValue          `json:"fileValue,omitempty"`
}

// AnswerInstance is one instance of a multi-instance answer, tagged
// with its slot index.
type AnswerInstance struct {
	Index *int `json:"multipleIndex,omitempty"`
	AnswerValue
}

// ClientAnswer is the nested answer shape exchanged with clients: one
// entry per question, holding either a single value or, for multiple
// questions, an array of indexed instances. An entry with neither acts
// as an empty placeholder (a skipped question).
type ClientAnswer struct {
	QuestionID int              `json:"questionId"`
	SurveyID   int              `json:"surveyId,omitempty"`
	Language   string           `json:"language,omitempty"`
	Answer     *AnswerValue     `json:"answer,omitempty"`
	Answers    []AnswerInstance `json:"answers,omitempty"`
	DeletedAt  *time.Time       `json:"deletedAt,omitempty"`
}

// HasValue reports whether the entry carries any answer content.
func (a ClientAnswer) HasValue() bool {
	return a.Answer != nil || len(a.Answers) > 0
}

// AnswerRow is one flat storage row: a single scalar value of an
// answer. Multi-valued client answers span several rows.
type AnswerRow struct {
	ID               int          `json:"id"`
	UserID           int          `json:"user_id"`
	SurveyID         int          `json:"survey_id"`
	QuestionID       int          `json:"question_id"`
	QuestionChoiceID *int         `json:"question_choice_id,omitempty"`
	MultipleIndex    *int         `json:"multiple_index,omitempty"`
	Value            *string      `json:"value,omitempty"`
	Language         string       `json:"language"`
	QuestionType     QuestionType `json:"question_type,omitempty"`
	Multiple         bool         `json:"multiple,omitempty"`
	ChoiceType       QuestionType `json:"choice_type,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	DeletedAt        *time.Time   `json:"deleted_at,omitempty"`
}

// AnswerExportRecord is one row of the bulk CSV export keyed the way
// external consumers expect.
type AnswerExportRecord struct {
	SurveyID         int          `json:"surveyId"`
	QuestionID       int          `json:"questionId"`
	QuestionChoiceID *int         `json:"questionChoiceId,omitempty"`
	MultipleIndex    *int         `json:"multipleIndex,omitempty"`
	QuestionType     QuestionType `json:"questionType"`
	ChoiceType       QuestionType `json:"choiceType,omitempty"`
	Value            string       `json:"value,omitempty"`
}

// Equal is deep equality over the value union, used by equals and
// not-equals rule evaluation.
func (v AnswerValue) Equal(o AnswerValue) bool {
	switch {
	case !eqPtr(v.Bool, o.Bool),
		!eqPtr(v.Date, o.Date),
		!eqPtr(v.Year, o.Year),
		!eqPtr(v.Month, o.Month),
		!eqPtr(v.Day, o.Day),
		!eqPtr(v.Text, o.Text),
		!eqPtr(v.Number, o.Number),
		!eqPtr(v.Integer, o.Integer),
		!eqPtr(v.Float, o.Float),
		!eqPtr(v.FeetInches, o.FeetInches),
		!eqPtr(v.BloodPressure, o.BloodPressure),
		!eqPtr(v.Choice, o.Choice):
		return false
	}
	if len(v.Choices) != len(o.Choices) {
		return false
	}
	for i := range v.Choices {
		if !v.Choices[i].equal(o.Choices[i]) {
			return false
		}
	}
	if (v.File == nil) != (o.File == nil) {
		return false
	}
	if v.File != nil && !eqPtr(v.File.ID, o.File.ID) {
		return false
	}
	return true
}

func (c ChoiceSelection) equal(o ChoiceSelection) bool {
	return c.ID == o.ID &&
		eqPtr(c.Text, o.Text) &&
		eqPtr(c.Bool, o.Bool) &&
		eqPtr(c.Integer, o.Integer) &&
		eqPtr(c.Number, o.Number) &&
		eqPtr(c.Month, o.Month) &&
		eqPtr(c.Year, o.Year)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
