package service

import (
	"context"
	"fmt"
	"time"

	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/repository"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// questionMeta mirrors the question attributes the repository would
// join onto answer rows.
type questionMeta struct {
	Type       model.QuestionType
	Multiple   bool
	ChoiceType model.QuestionType
}

type stubSurveyStore struct {
	questions []model.SurveyQuestion
	rules     model.AnswerRuleMaps
}

func (s *stubSurveyStore) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	return &model.Survey{ID: id}, nil
}

func (s *stubSurveyStore) ListSurveyQuestions(ctx context.Context, surveyID int) ([]model.SurveyQuestion, error) {
	return s.questions, nil
}

func (s *stubSurveyStore) GetAnswerRules(ctx context.Context, surveyID int) (model.AnswerRuleMaps, error) {
	if s.rules.Questions == nil && s.rules.Sections == nil {
		return model.AnswerRuleMaps{
			Questions: map[int][]model.AnswerRule{},
			Sections:  map[int][]model.AnswerRule{},
		}, nil
	}
	return s.rules, nil
}

type stubAnswerStore struct {
	meta       map[int]questionMeta
	rows       []model.AnswerRow
	files      map[int]string
	nextFileID int
	searchIDs  []int
	searchErr  error
}

func newStubAnswerStore(meta map[int]questionMeta) *stubAnswerStore {
	return &stubAnswerStore{meta: meta, files: make(map[int]string), nextFileID: 1}
}

func (s *stubAnswerStore) InsertAnswers(ctx context.Context, rows []model.AnswerRow) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *stubAnswerStore) SoftDeleteAnswers(ctx context.Context, userID, surveyID int, questionIDs []int) error {
	now := time.Now()
	ids := make(map[int]bool, len(questionIDs))
	for _, id := range questionIDs {
		ids[id] = true
	}
	for i := range s.rows {
		r := &s.rows[i]
		if r.UserID == userID && r.SurveyID == surveyID && ids[r.QuestionID] && r.DeletedAt == nil {
			t := now
			r.DeletedAt = &t
		}
	}
	return nil
}

func (s *stubAnswerStore) ListAnsweredQuestionIDs(ctx context.Context, userID, surveyID int, questionIDs []int) ([]int, error) {
	want := make(map[int]bool, len(questionIDs))
	for _, id := range questionIDs {
		want[id] = true
	}
	seen := make(map[int]bool)
	var out []int
	for _, r := range s.rows {
		if r.UserID == userID && r.SurveyID == surveyID && r.DeletedAt == nil && want[r.QuestionID] && !seen[r.QuestionID] {
			seen[r.QuestionID] = true
			out = append(out, r.QuestionID)
		}
	}
	return out, nil
}

func (s *stubAnswerStore) ListAnswers(ctx context.Context, opts repository.ListAnswersOptions) ([]model.AnswerRow, error) {
	var out []model.AnswerRow
	for _, r := range s.rows {
		if r.UserID != opts.UserID {
			continue
		}
		if opts.SurveyID != nil && r.SurveyID != *opts.SurveyID {
			continue
		}
		if opts.Scope == repository.ScopeHistoryOnly {
			if r.DeletedAt == nil {
				continue
			}
		} else if r.DeletedAt != nil {
			continue
		}
		m := s.meta[r.QuestionID]
		r.QuestionType = m.Type
		r.Multiple = m.Multiple
		r.ChoiceType = m.ChoiceType
		out = append(out, r)
	}
	return out, nil
}

func (s *stubAnswerStore) SaveFile(ctx context.Context, userID int, name string, content []byte) (int, error) {
	id := s.nextFileID
	s.nextFileID++
	s.files[id] = name
	return id, nil
}

func (s *stubAnswerStore) SearchUserIDs(ctx context.Context, c model.SearchCriteria) ([]int, error) {
	return s.searchIDs, s.searchErr
}

// live returns the non-deleted rows of one question.
func (s *stubAnswerStore) live(questionID int) []model.AnswerRow {
	var out []model.AnswerRow
	for _, r := range s.rows {
		if r.QuestionID == questionID && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out
}

type stubUserSurveyStore struct {
	statuses map[[2]int]model.SurveyStatus
}

func newStubUserSurveyStore() *stubUserSurveyStore {
	return &stubUserSurveyStore{statuses: make(map[[2]int]model.SurveyStatus)}
}

func (s *stubUserSurveyStore) GetStatus(ctx context.Context, userID, surveyID int) (*model.UserSurvey, error) {
	status, ok := s.statuses[[2]int{userID, surveyID}]
	if !ok {
		return nil, nil
	}
	return &model.UserSurvey{UserID: userID, SurveyID: surveyID, Status: status}, nil
}

func (s *stubUserSurveyStore) UpsertStatus(ctx context.Context, userID, surveyID int, status model.SurveyStatus) error {
	s.statuses[[2]int{userID, surveyID}] = status
	return nil
}

type stubConsentStore struct {
	outstanding map[model.ConsentAction][]model.ConsentDocument
	signed      []int
}

func (s *stubConsentStore) ListOutstandingDocuments(ctx context.Context, userID, surveyID int, action model.ConsentAction) ([]model.ConsentDocument, error) {
	return s.outstanding[action], nil
}

func (s *stubConsentStore) SignDocument(ctx context.Context, userID, documentID int, language string) error {
	s.signed = append(s.signed, documentID)
	return nil
}

// stubTxRunner hands the same stores to every transaction; rollback is
// not modeled, failing flows assert nothing was written instead.
type stubTxRunner struct {
	stores SubmissionStores
}

func (r *stubTxRunner) InTx(ctx context.Context, fn func(SubmissionStores) error) error {
	return fn(r.stores)
}

type stubUserStore struct {
	users        map[string]*model.User
	participants int
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users[email], nil
}

func (s *stubUserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) Create(ctx context.Context, u *model.User) error {
	if s.users == nil {
		s.users = make(map[string]*model.User)
	}
	if _, ok := s.users[u.Email]; ok {
		return fmt.Errorf("duplicate email %s", u.Email)
	}
	s.users[u.Email] = u
	return nil
}

func (s *stubUserStore) CountByRole(ctx context.Context, role model.Role) (int, error) {
	return s.participants, nil
}
