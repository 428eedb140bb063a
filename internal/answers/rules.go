package answers

import "github.com/regsite/registry-backend/internal/model"

// Evaluate checks one enable-when rule against the in-batch answer of
// its source question.
//
// A missing source entry satisfies not-exists only: equals and
// not-equals both evaluate false without a source entry. This
// asymmetry is deliberate; survey definitions depend on it.
func Evaluate(rule model.AnswerRule, byQuestion map[int]*model.ClientAnswer) bool {
	source := byQuestion[rule.SourceQuestionID]
	switch rule.Logic {
	case model.RuleLogicExists:
		return source != nil && source.HasValue()
	case model.RuleLogicNotExists:
		return !(source != nil && source.HasValue())
	case model.RuleLogicEquals:
		if source == nil {
			return false
		}
		return valuesEqual(rule.Answer, source.Answer)
	case model.RuleLogicNotEquals:
		if source == nil {
			return false
		}
		return !valuesEqual(rule.Answer, source.Answer)
	}
	return false
}

// EvaluateAny is the OR over a rule set: true if any rule holds.
func EvaluateAny(rules []model.AnswerRule, byQuestion map[int]*model.ClientAnswer) bool {
	for _, rule := range rules {
		if Evaluate(rule, byQuestion) {
			return true
		}
	}
	return false
}

// IsEnabled decides whether a survey question is active for the
// current batch: its own rule set decides if present; otherwise every
// structural parent with rules must hold (parents without rules enable
// unconditionally).
func IsEnabled(sq model.SurveyQuestion, maps model.AnswerRuleMaps, byQuestion map[int]*model.ClientAnswer) bool {
	if rules := maps.Questions[sq.QuestionID]; len(rules) > 0 {
		return EvaluateAny(rules, byQuestion)
	}
	for _, parent := range sq.Parents {
		var rules []model.AnswerRule
		switch {
		case parent.SectionID != nil:
			rules = maps.Sections[*parent.SectionID]
		case parent.QuestionID != nil:
			rules = maps.Questions[*parent.QuestionID]
		}
		if len(rules) > 0 && !EvaluateAny(rules, byQuestion) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b *model.AnswerValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
