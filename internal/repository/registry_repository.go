package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/regsite/registry-backend/internal/model"
)

// RegistryRepository manages peer registries and the identifier
// mappings used to translate federated criteria.
type RegistryRepository struct {
	db DBTX
}

// NewRegistryRepository creates a new RegistryRepository.
func NewRegistryRepository(db DBTX) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// ListRegistries retrieves all configured peer registries.
func (r *RegistryRepository) ListRegistries(ctx context.Context) ([]model.Registry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, url, schema, created_at FROM registries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Registry
	for rows.Next() {
		var reg model.Registry
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.URL, &reg.Schema, &reg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// GetRegistry retrieves one peer registry, or nil when unknown.
func (r *RegistryRepository) GetRegistry(ctx context.Context, id int) (*model.Registry, error) {
	reg := &model.Registry{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, url, schema, created_at FROM registries WHERE id = $1`, id,
	).Scan(&reg.ID, &reg.Name, &reg.URL, &reg.Schema, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// CreateRegistry registers a new peer.
func (r *RegistryRepository) CreateRegistry(ctx context.Context, reg *model.Registry) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO registries (name, url, schema) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		reg.Name, reg.URL, reg.Schema,
	).Scan(&reg.ID, &reg.CreatedAt)
}

// FindByIdentifier resolves a portable identifier token into the local
// (question, choice) pair, or nil when the token is not mapped here.
func (r *RegistryRepository) FindByIdentifier(ctx context.Context, identifierType, identifier string) (*model.AnswerIdentifier, error) {
	ai := &model.AnswerIdentifier{}
	err := r.db.QueryRow(ctx,
		`SELECT id, type, identifier, question_id, question_choice_id
		 FROM answer_identifiers WHERE type = $1 AND identifier = $2`,
		identifierType, identifier,
	).Scan(&ai.ID, &ai.Type, &ai.Identifier, &ai.QuestionID, &ai.QuestionChoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ai, nil
}

// FindByText resolves a criterion by question text and, when given,
// choice text. Used as a fallback when no identifier was assigned. The
// match is case-insensitive equality; peer text is data, not a
// pattern.
func (r *RegistryRepository) FindByText(ctx context.Context, questionText, choiceText string) (*model.AnswerIdentifier, error) {
	ai := &model.AnswerIdentifier{}
	var err error
	if choiceText != "" {
		err = r.db.QueryRow(ctx,
			`SELECT q.id, qc.id FROM questions q
			 JOIN question_choices qc ON qc.question_id = q.id
			 WHERE LOWER(q.text) = LOWER($1) AND LOWER(qc.text) = LOWER($2)
			   AND q.deleted_at IS NULL
			 LIMIT 1`,
			questionText, choiceText,
		).Scan(&ai.QuestionID, &ai.QuestionChoiceID)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT q.id FROM questions q
			 WHERE LOWER(q.text) = LOWER($1) AND q.deleted_at IS NULL
			 LIMIT 1`,
			questionText,
		).Scan(&ai.QuestionID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ai, nil
}

// CreateIdentifier maps a (question[, choice]) pair to a portable
// token. Duplicate (type, identifier) pairs are rejected by the
// uniqueness constraint.
func (r *RegistryRepository) CreateIdentifier(ctx context.Context, ai *model.AnswerIdentifier) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO answer_identifiers (type, identifier, question_id, question_choice_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		ai.Type, ai.Identifier, ai.QuestionID, ai.QuestionChoiceID,
	).Scan(&ai.ID)
}
