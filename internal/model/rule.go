package model

// RuleLogic is the condition operator of an enable-when rule.
type RuleLogic string

const (
	RuleLogicExists    RuleLogic = "exists"
	RuleLogicNotExists RuleLogic = "not-exists"
	RuleLogicEquals    RuleLogic = "equals"
	RuleLogicNotEquals RuleLogic = "not-equals"
)

// AnswerRule is an enable-when condition attached to a survey question
// or section. The target is enabled only if the source question's
// in-batch answer satisfies the condition; rules within one attachment
// are OR'ed, structural parents AND'ed.
type AnswerRule struct {
	ID               int          `json:"id"`
	SurveyID         int          `json:"survey_id"`
	Logic            RuleLogic    `json:"logic"`
	SourceQuestionID int          `json:"question_id"`
	Answer           *AnswerValue `json:"answer,omitempty"`
}

// AnswerRuleMaps groups a survey's rules by the question or section
// they are attached to. Loaded once per validation pass and treated as
// a read-only snapshot.
type AnswerRuleMaps struct {
	Questions map[int][]AnswerRule `json:"questions"`
	Sections  map[int][]AnswerRule `json:"sections"`
}

// Empty reports whether the survey carries no enable-when rules at all.
func (m AnswerRuleMaps) Empty() bool {
	return len(m.Questions) == 0 && len(m.Sections) == 0
}
