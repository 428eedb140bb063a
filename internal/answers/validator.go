package answers

import (
	"sort"

	"github.com/regsite/registry-backend/internal/model"
)

// QuestionState is the resolved state of a survey question for one
// validation pass.
type QuestionState int

const (
	StateEnabled QuestionState = iota
	StateIgnored
)

// Validation is the outcome of a successful validation pass.
type Validation struct {
	// Answers is the submitted batch augmented with empty placeholders
	// for ignored questions, so the persistence step replaces their
	// stored rows too.
	Answers []model.ClientAnswer

	// States maps every survey question id to enabled or ignored.
	States map[int]QuestionState

	// RemainingRequired lists required, enabled questions with no
	// in-batch answer. For a completed submission the coordinator must
	// verify previously stored answers cover these.
	RemainingRequired []int
}

// Validate walks the survey structure and applies enable-when rules to
// the submitted batch. The survey questions and rule maps are
// read-only snapshots and are never mutated.
func Validate(questions []model.SurveyQuestion, maps model.AnswerRuleMaps, in []model.ClientAnswer, status model.SurveyStatus) (*Validation, error) {
	byQuestion := make(map[int]*model.ClientAnswer, len(in))
	for i := range in {
		byQuestion[in[i].QuestionID] = &in[i]
	}

	out := &Validation{
		Answers: append([]model.ClientAnswer(nil), in...),
		States:  make(map[int]QuestionState, len(questions)),
	}

	known := make(map[int]bool, len(questions))
	for _, sq := range questions {
		known[sq.QuestionID] = true

		ignore := sq.Ignore
		if !ignore && !maps.Empty() && !IsEnabled(sq, maps, byQuestion) {
			ignore = true
		}

		answer := byQuestion[sq.QuestionID]
		if ignore {
			if answer != nil {
				return nil, &model.Error{Code: model.ErrAnswerToBeSkippedAnswered, QuestionID: sq.QuestionID}
			}
			out.States[sq.QuestionID] = StateIgnored
			out.Answers = append(out.Answers, model.ClientAnswer{QuestionID: sq.QuestionID})
			continue
		}

		out.States[sq.QuestionID] = StateEnabled
		if sq.Required && (answer == nil || !answer.HasValue()) {
			out.RemainingRequired = append(out.RemainingRequired, sq.QuestionID)
		}
	}

	for _, a := range in {
		if !known[a.QuestionID] {
			return nil, &model.Error{Code: model.ErrAnswerQxNotInSurvey, QuestionID: a.QuestionID}
		}
	}

	if status != model.SurveyStatusCompleted {
		out.RemainingRequired = nil
	}
	sort.Ints(out.RemainingRequired)
	return out, nil
}
