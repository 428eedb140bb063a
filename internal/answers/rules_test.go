package answers

import (
	"testing"

	"github.com/regsite/registry-backend/internal/model"
)

func answered(questionID int, text string) *model.ClientAnswer {
	return &model.ClientAnswer{
		QuestionID: questionID,
		Answer:     &model.AnswerValue{Text: strPtr(text)},
	}
}

func TestEvaluateExists(t *testing.T) {
	rule := model.AnswerRule{Logic: model.RuleLogicExists, SourceQuestionID: 1}

	if Evaluate(rule, map[int]*model.ClientAnswer{}) {
		t.Error("exists with no source answer should be false")
	}
	if !Evaluate(rule, map[int]*model.ClientAnswer{1: answered(1, "yes")}) {
		t.Error("exists with source answer should be true")
	}
	// An entry without a value does not count as existing.
	if Evaluate(rule, map[int]*model.ClientAnswer{1: {QuestionID: 1}}) {
		t.Error("exists with empty placeholder should be false")
	}
}

func TestEvaluateNotExists(t *testing.T) {
	rule := model.AnswerRule{Logic: model.RuleLogicNotExists, SourceQuestionID: 1}

	if !Evaluate(rule, map[int]*model.ClientAnswer{}) {
		t.Error("not-exists with no source answer should be true")
	}
	if Evaluate(rule, map[int]*model.ClientAnswer{1: answered(1, "yes")}) {
		t.Error("not-exists with source answer should be false")
	}
}

func TestEvaluateEqualsMissingSourceAsymmetry(t *testing.T) {
	// With no source entry at all, equals AND not-equals are both
	// false. This mirrors not-exists only partially, on purpose.
	literal := &model.AnswerValue{Text: strPtr("yes")}
	eq := model.AnswerRule{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: literal}
	neq := model.AnswerRule{Logic: model.RuleLogicNotEquals, SourceQuestionID: 1, Answer: literal}

	empty := map[int]*model.ClientAnswer{}
	if Evaluate(eq, empty) {
		t.Error("equals with missing source should be false")
	}
	if Evaluate(neq, empty) {
		t.Error("not-equals with missing source should be false")
	}
}

func TestEvaluateEquals(t *testing.T) {
	literal := &model.AnswerValue{Text: strPtr("yes")}
	eq := model.AnswerRule{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: literal}
	neq := model.AnswerRule{Logic: model.RuleLogicNotEquals, SourceQuestionID: 1, Answer: literal}

	match := map[int]*model.ClientAnswer{1: answered(1, "yes")}
	differ := map[int]*model.ClientAnswer{1: answered(1, "no")}

	if !Evaluate(eq, match) {
		t.Error("equals with matching answer should be true")
	}
	if Evaluate(eq, differ) {
		t.Error("equals with different answer should be false")
	}
	if Evaluate(neq, match) {
		t.Error("not-equals with matching answer should be false")
	}
	if !Evaluate(neq, differ) {
		t.Error("not-equals with different answer should be true")
	}
}

func TestEvaluateEqualsDeepChoices(t *testing.T) {
	literal := &model.AnswerValue{Choices: []model.ChoiceSelection{{ID: 1}, {ID: 2}}}
	rule := model.AnswerRule{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: literal}

	same := &model.ClientAnswer{QuestionID: 1, Answer: &model.AnswerValue{Choices: []model.ChoiceSelection{{ID: 1}, {ID: 2}}}}
	subset := &model.ClientAnswer{QuestionID: 1, Answer: &model.AnswerValue{Choices: []model.ChoiceSelection{{ID: 1}}}}

	if !Evaluate(rule, map[int]*model.ClientAnswer{1: same}) {
		t.Error("deep-equal choices should match")
	}
	if Evaluate(rule, map[int]*model.ClientAnswer{1: subset}) {
		t.Error("choices subset should not match")
	}
}

func TestEvaluateAnyIsOr(t *testing.T) {
	rules := []model.AnswerRule{
		{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("a")}},
		{Logic: model.RuleLogicEquals, SourceQuestionID: 1, Answer: &model.AnswerValue{Text: strPtr("b")}},
	}
	if !EvaluateAny(rules, map[int]*model.ClientAnswer{1: answered(1, "b")}) {
		t.Error("second rule matching should satisfy the set")
	}
	if EvaluateAny(rules, map[int]*model.ClientAnswer{1: answered(1, "c")}) {
		t.Error("no rule matching should fail the set")
	}
	if EvaluateAny(nil, map[int]*model.ClientAnswer{}) {
		t.Error("empty rule set should evaluate false")
	}
}

func TestIsEnabledParentsAreAnded(t *testing.T) {
	sectionID := 100
	maps := model.AnswerRuleMaps{
		Questions: map[int][]model.AnswerRule{
			3: {{Logic: model.RuleLogicExists, SourceQuestionID: 1}},
		},
		Sections: map[int][]model.AnswerRule{
			sectionID: {{Logic: model.RuleLogicEquals, SourceQuestionID: 2, Answer: &model.AnswerValue{Text: strPtr("yes")}}},
		},
	}
	sq := model.SurveyQuestion{
		QuestionID: 4,
		Parents: []model.QuestionParent{
			{SectionID: &sectionID},
			{QuestionID: intPtr(3)},
		},
	}

	both := map[int]*model.ClientAnswer{1: answered(1, "x"), 2: answered(2, "yes")}
	onlySection := map[int]*model.ClientAnswer{2: answered(2, "yes")}

	if !IsEnabled(sq, maps, both) {
		t.Error("question should be enabled when every parent rule set holds")
	}
	if IsEnabled(sq, maps, onlySection) {
		t.Error("question should be disabled when one parent rule set fails")
	}
}

func TestIsEnabledOwnRulesWin(t *testing.T) {
	// A question with its own rules ignores its parents.
	sectionID := 100
	maps := model.AnswerRuleMaps{
		Questions: map[int][]model.AnswerRule{
			4: {{Logic: model.RuleLogicExists, SourceQuestionID: 1}},
		},
		Sections: map[int][]model.AnswerRule{
			sectionID: {{Logic: model.RuleLogicExists, SourceQuestionID: 2}},
		},
	}
	sq := model.SurveyQuestion{QuestionID: 4, Parents: []model.QuestionParent{{SectionID: &sectionID}}}

	if !IsEnabled(sq, maps, map[int]*model.ClientAnswer{1: answered(1, "x")}) {
		t.Error("own rule satisfied should enable regardless of parents")
	}
	if IsEnabled(sq, maps, map[int]*model.ClientAnswer{2: answered(2, "x")}) {
		t.Error("own rule unsatisfied should disable even when parent holds")
	}
}

func TestIsEnabledParentWithoutRules(t *testing.T) {
	sq := model.SurveyQuestion{QuestionID: 4, Parents: []model.QuestionParent{{SectionID: intPtr(999)}}}
	if !IsEnabled(sq, model.AnswerRuleMaps{}, map[int]*model.ClientAnswer{}) {
		t.Error("parent without rules should enable unconditionally")
	}
}
