package service

import (
	"context"

	"github.com/regsite/registry-backend/internal/model"
)

// ConsentService exposes consent requirements and signing.
type ConsentService struct {
	consents ConsentStore
}

// NewConsentService creates a new ConsentService.
func NewConsentService(consents ConsentStore) *ConsentService {
	return &ConsentService{consents: consents}
}

// ListOutstanding returns the documents the user still has to sign
// before performing the given action on the survey.
func (s *ConsentService) ListOutstanding(ctx context.Context, userID, surveyID int, action model.ConsentAction) ([]model.ConsentDocument, error) {
	return s.consents.ListOutstandingDocuments(ctx, userID, surveyID, action)
}

// Sign records the user's signature on a consent document.
func (s *ConsentService) Sign(ctx context.Context, userID, documentID int, language string) error {
	return s.consents.SignDocument(ctx, userID, documentID, language)
}
