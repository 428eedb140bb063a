package service

import (
	"context"
	"testing"

	"github.com/regsite/registry-backend/internal/model"
)

func TestCountUsersEmptyCriteriaCountsParticipants(t *testing.T) {
	svc := NewSearchService(newStubAnswerStore(nil), &stubUserStore{participants: 128})

	count, err := svc.CountUsers(context.Background(), model.SearchCriteria{})
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count.Count != 128 {
		t.Errorf("count = %d, want 128", count.Count)
	}
}

func TestCountUsersMatchesSearch(t *testing.T) {
	answers := newStubAnswerStore(nil)
	answers.searchIDs = []int{4, 8, 15}
	svc := NewSearchService(answers, &stubUserStore{})

	c := model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 1, Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Text: strPtr("yes")}}}},
	}}
	count, err := svc.CountUsers(context.Background(), c)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count.Count != 3 {
		t.Errorf("count = %d, want 3", count.Count)
	}
}

func TestSearchRejectsRepeatedQuestion(t *testing.T) {
	svc := NewSearchService(newStubAnswerStore(nil), &stubUserStore{})

	c := model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 7, Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Text: strPtr("a")}}}},
		{ID: 7, Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Text: strPtr("b")}}}},
	}}
	_, err := svc.CountUsers(context.Background(), c)
	if !model.IsError(err, model.ErrSearchQuestionRepeat) {
		t.Fatalf("err = %v, want searchQuestionRepeat", err)
	}
	if _, err := svc.SearchUsers(context.Background(), c); !model.IsError(err, model.ErrSearchQuestionRepeat) {
		t.Fatalf("SearchUsers err = %v, want searchQuestionRepeat", err)
	}
}
