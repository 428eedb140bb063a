package repository

import (
	"context"
	"fmt"

	"github.com/regsite/registry-backend/internal/answers"
	"github.com/regsite/registry-backend/internal/model"
)

// SurveyRepository reads survey structure: question membership and
// enable-when rules. The engine treats the result as a read-only
// snapshot.
type SurveyRepository struct {
	db DBTX
}

// NewSurveyRepository creates a new SurveyRepository.
func NewSurveyRepository(db DBTX) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// GetSurvey retrieves a survey by id.
func (r *SurveyRepository) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	s := &model.Survey{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, status, created_at
		 FROM surveys WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&s.ID, &s.Name, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSurveyQuestions retrieves a survey's questions in line order,
// including the structural parents used for inherited enable-when
// resolution.
func (r *SurveyRepository) ListSurveyQuestions(ctx context.Context, surveyID int) ([]model.SurveyQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT sq.survey_id, sq.question_id, sq.line, sq.required, sq.ignore, q.type, q.multiple
		 FROM survey_questions sq
		 JOIN questions q ON q.id = sq.question_id AND q.deleted_at IS NULL
		 WHERE sq.survey_id = $1
		 ORDER BY sq.line`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.SurveyQuestion
	index := make(map[int]int)
	for rows.Next() {
		var sq model.SurveyQuestion
		if err := rows.Scan(&sq.SurveyID, &sq.QuestionID, &sq.Line, &sq.Required, &sq.Ignore, &sq.Type, &sq.Multiple); err != nil {
			return nil, err
		}
		index[sq.QuestionID] = len(questions)
		questions = append(questions, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	parentRows, err := r.db.Query(ctx,
		`SELECT question_id, parent_section_id, parent_question_id
		 FROM section_questions
		 WHERE survey_id = $1
		 ORDER BY line`, surveyID)
	if err != nil {
		return nil, err
	}
	defer parentRows.Close()

	for parentRows.Next() {
		var questionID int
		var parent model.QuestionParent
		if err := parentRows.Scan(&questionID, &parent.SectionID, &parent.QuestionID); err != nil {
			return nil, err
		}
		if i, ok := index[questionID]; ok {
			questions[i].Parents = append(questions[i].Parents, parent)
		}
	}
	return questions, parentRows.Err()
}

// GetAnswerRules retrieves a survey's enable-when rules grouped by the
// question or section they are attached to.
func (r *SurveyRepository) GetAnswerRules(ctx context.Context, surveyID int) (model.AnswerRuleMaps, error) {
	maps := model.AnswerRuleMaps{
		Questions: make(map[int][]model.AnswerRule),
		Sections:  make(map[int][]model.AnswerRule),
	}
	rows, err := r.db.Query(ctx,
		`SELECT ar.id, ar.survey_id, ar.logic, ar.source_question_id,
		        ar.question_id, ar.section_id,
		        arv.question_choice_id, arv.value, q.type
		 FROM answer_rules ar
		 LEFT JOIN answer_rule_values arv ON arv.answer_rule_id = ar.id
		 LEFT JOIN questions q ON q.id = ar.source_question_id
		 WHERE ar.survey_id = $1
		 ORDER BY ar.id`, surveyID)
	if err != nil {
		return maps, err
	}
	defer rows.Close()

	for rows.Next() {
		var rule model.AnswerRule
		var questionID, sectionID, choiceID *int
		var value *string
		var sourceType *model.QuestionType
		if err := rows.Scan(&rule.ID, &rule.SurveyID, &rule.Logic, &rule.SourceQuestionID,
			&questionID, &sectionID, &choiceID, &value, &sourceType); err != nil {
			return maps, err
		}
		if choiceID != nil || value != nil {
			answer, err := ruleValueToAnswer(sourceType, choiceID, value)
			if err != nil {
				return maps, fmt.Errorf("rule %d: %w", rule.ID, err)
			}
			rule.Answer = answer
		}
		switch {
		case questionID != nil:
			maps.Questions[*questionID] = append(maps.Questions[*questionID], rule)
		case sectionID != nil:
			maps.Sections[*sectionID] = append(maps.Sections[*sectionID], rule)
		}
	}
	return maps, rows.Err()
}

// ruleValueToAnswer lifts a stored rule literal into the client value
// union so the evaluator can deep-compare it against batch answers.
func ruleValueToAnswer(sourceType *model.QuestionType, choiceID *int, value *string) (*model.AnswerValue, error) {
	qType := model.QuestionTypeText
	if sourceType != nil {
		qType = *sourceType
	}
	if choiceID != nil && value == nil {
		qType = model.QuestionTypeChoice
	}
	return answers.DecodeRuleValue(qType, choiceID, value)
}
