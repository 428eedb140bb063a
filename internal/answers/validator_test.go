package answers

import (
	"reflect"
	"testing"

	"github.com/regsite/registry-backend/internal/model"
)

// Survey under test: Q1 gates Q2 (enabled only when Q1 == "yes").
func gatedSurvey() ([]model.SurveyQuestion, model.AnswerRuleMaps) {
	questions := []model.SurveyQuestion{
		{QuestionID: 1, Required: true},
		{QuestionID: 2, Required: true},
	}
	maps := model.AnswerRuleMaps{
		Questions: map[int][]model.AnswerRule{
			2: {{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("yes")}}},
		},
	}
	return questions, maps
}

func TestValidateSkippedQuestionAnswered(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("no")}},
		{QuestionID: 2, Answer: &model.AnswerValue{Text: strPtr("anyway")}},
	}
	_, err := Validate(questions, maps, in, model.SurveyStatusCompleted)
	if !model.IsError(err, model.ErrAnswerToBeSkippedAnswered) {
		t.Fatalf("err = %v, want answerToBeSkippedAnswered", err)
	}
}

func TestValidateIgnoredQuestionGetsPlaceholder(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("no")}},
	}
	v, err := Validate(questions, maps, in, model.SurveyStatusCompleted)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.States[2] != StateIgnored {
		t.Errorf("state of Q2 = %v, want ignored", v.States[2])
	}
	// Placeholder appended so the coordinator clears Q2's stored rows.
	if len(v.Answers) != 2 || v.Answers[1].QuestionID != 2 || v.Answers[1].HasValue() {
		t.Errorf("augmented answers = %+v", v.Answers)
	}
	// Ignored questions lose their required obligation.
	if len(v.RemainingRequired) != 0 {
		t.Errorf("remaining required = %v, want none", v.RemainingRequired)
	}
}

func TestValidateRequiredMissingSurfaces(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("yes")}},
	}
	v, err := Validate(questions, maps, in, model.SurveyStatusCompleted)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.States[2] != StateEnabled {
		t.Errorf("state of Q2 = %v, want enabled", v.States[2])
	}
	if !reflect.DeepEqual(v.RemainingRequired, []int{2}) {
		t.Errorf("remaining required = %v, want [2]", v.RemainingRequired)
	}
}

func TestValidateInProgressSkipsRequiredCheck(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("yes")}},
	}
	v, err := Validate(questions, maps, in, model.SurveyStatusInProgress)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(v.RemainingRequired) != 0 {
		t.Errorf("remaining required = %v, want none for in-progress", v.RemainingRequired)
	}
}

func TestValidateUnknownQuestion(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("yes")}},
		{QuestionID: 999, Answer: &model.AnswerValue{Text: strPtr("stray")}},
	}
	_, err := Validate(questions, maps, in, model.SurveyStatusCompleted)
	if !model.IsError(err, model.ErrAnswerQxNotInSurvey) {
		t.Fatalf("err = %v, want answerQxNotInSurvey", err)
	}
	if de := model.AsError(err); de.QuestionID != 999 {
		t.Errorf("question id = %d, want 999", de.QuestionID)
	}
}

func TestValidateDoesNotMutateInputs(t *testing.T) {
	questions, maps := gatedSurvey()
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("no")}},
	}
	if _, err := Validate(questions, maps, in, model.SurveyStatusCompleted); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(in) != 1 {
		t.Errorf("input batch grew to %d entries", len(in))
	}
	if !questions[1].Required {
		t.Error("survey question snapshot was mutated")
	}
}

func TestValidateSectionAndOwnRules(t *testing.T) {
	// Q3 sits in a section gated on Q1 and carries its own rule on Q2;
	// its own rule decides, but a sibling Q4 without rules inherits the
	// section gate.
	sectionID := 50
	questions := []model.SurveyQuestion{
		{QuestionID: 1},
		{QuestionID: 2},
		{QuestionID: 3, Parents: []model.QuestionParent{{SectionID: &sectionID}}},
		{QuestionID: 4, Parents: []model.QuestionParent{{SectionID: &sectionID}}},
	}
	maps := model.AnswerRuleMaps{
		Questions: map[int][]model.AnswerRule{
			3: {{Logic: model.RuleLogicExists, SourceQuestionID: 2}},
		},
		Sections: map[int][]model.AnswerRule{
			sectionID: {{Logic: model.RuleLogicExists, SourceQuestionID: 1}},
		},
	}
	in := []model.ClientAnswer{
		{QuestionID: 2, Answer: &model.AnswerValue{Text: strPtr("present")}},
	}
	v, err := Validate(questions, maps, in, model.SurveyStatusInProgress)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.States[3] != StateEnabled {
		t.Errorf("Q3 state = %v, want enabled (own rule holds)", v.States[3])
	}
	if v.States[4] != StateIgnored {
		t.Errorf("Q4 state = %v, want ignored (section gate fails)", v.States[4])
	}
}
