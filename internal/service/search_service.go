package service

import (
	"context"

	"github.com/regsite/registry-backend/internal/model"
)

// SearchService runs local cohort searches.
type SearchService struct {
	answers AnswerStore
	users   UserStore
}

// NewSearchService creates a new SearchService.
func NewSearchService(answerStore AnswerStore, users UserStore) *SearchService {
	return &SearchService{answers: answerStore, users: users}
}

// validateCriteria rejects criteria listing the same question twice;
// the distinct-question match count cannot tell repeated criteria
// apart.
func validateCriteria(c model.SearchCriteria) error {
	seen := make(map[int]bool, len(c.Questions))
	for _, q := range c.Questions {
		if seen[q.ID] {
			return &model.Error{Code: model.ErrSearchQuestionRepeat, QuestionID: q.ID}
		}
		seen[q.ID] = true
	}
	return nil
}

// SearchUsers returns the ids of participants matching the criteria.
// Empty criteria match every participant.
func (s *SearchService) SearchUsers(ctx context.Context, c model.SearchCriteria) ([]int, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	return s.answers.SearchUserIDs(ctx, c)
}

// CountUsers returns how many participants match the criteria. Empty
// criteria count the whole participant population.
func (s *SearchService) CountUsers(ctx context.Context, c model.SearchCriteria) (model.CohortCount, error) {
	if err := validateCriteria(c); err != nil {
		return model.CohortCount{}, err
	}
	if len(c.Questions) == 0 {
		n, err := s.users.CountByRole(ctx, model.RoleParticipant)
		return model.CohortCount{Count: n}, err
	}
	ids, err := s.answers.SearchUserIDs(ctx, c)
	if err != nil {
		return model.CohortCount{}, err
	}
	return model.CohortCount{Count: len(ids)}, nil
}
