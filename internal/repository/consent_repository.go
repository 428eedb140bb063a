package repository

import (
	"context"

	"github.com/regsite/registry-backend/internal/model"
)

// ConsentRepository reads consent requirements and records signatures.
type ConsentRepository struct {
	db DBTX
}

// NewConsentRepository creates a new ConsentRepository.
func NewConsentRepository(db DBTX) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *ConsentRepository) WithTx(tx DBTX) *ConsentRepository {
	return &ConsentRepository{db: tx}
}

// ListOutstandingDocuments returns, for each consent type the survey
// requires for the given action, the newest document the user has not
// signed yet. An empty result means the action is permitted.
func (r *ConsentRepository) ListOutstandingDocuments(ctx context.Context, userID, surveyID int, action model.ConsentAction) ([]model.ConsentDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT cd.id, cd.consent_type_id, ct.name, cd.created_at
		 FROM survey_consents sc
		 JOIN consent_types ct ON ct.id = sc.consent_type_id
		 JOIN LATERAL (
		     SELECT id, consent_type_id, created_at
		     FROM consent_documents
		     WHERE consent_type_id = sc.consent_type_id
		     ORDER BY created_at DESC
		     LIMIT 1
		 ) cd ON TRUE
		 WHERE sc.survey_id = $1 AND sc.action = $2
		   AND NOT EXISTS (
		       SELECT 1 FROM consent_signatures cs
		       WHERE cs.consent_document_id = cd.id AND cs.user_id = $3
		   )
		 ORDER BY cd.id`,
		surveyID, action, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.ConsentDocument
	for rows.Next() {
		var d model.ConsentDocument
		if err := rows.Scan(&d.ID, &d.TypeID, &d.TypeName, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SignDocument records the user's signature on a consent document.
// Re-signing an already signed document is a no-op.
func (r *ConsentRepository) SignDocument(ctx context.Context, userID, documentID int, language string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO consent_signatures (user_id, consent_document_id, language)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, consent_document_id) DO NOTHING`,
		userID, documentID, language)
	return err
}

// ListSignatures returns the documents a user has signed.
func (r *ConsentRepository) ListSignatures(ctx context.Context, userID int) ([]model.ConsentSignature, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, consent_document_id, language, created_at
		 FROM consent_signatures WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []model.ConsentSignature
	for rows.Next() {
		var s model.ConsentSignature
		if err := rows.Scan(&s.ID, &s.UserID, &s.ConsentDocumentID, &s.Language, &s.CreatedAt); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}
