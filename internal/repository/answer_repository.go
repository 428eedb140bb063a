package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/jackc/pgx/v5"
	"github.com/regsite/registry-backend/internal/model"
)

// Answer listing scopes.
const (
	ScopeSurvey      = "survey"
	ScopeExport      = "export"
	ScopeHistoryOnly = "history-only"
)

// ListAnswersOptions filters an answer listing.
type ListAnswersOptions struct {
	UserID   int
	SurveyID *int
	Scope    string
}

// AnswerRepository handles flat answer row storage and cohort search.
type AnswerRepository struct {
	db DBTX
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(db DBTX) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *AnswerRepository) WithTx(tx DBTX) *AnswerRepository {
	return &AnswerRepository{db: tx}
}

// InsertAnswers bulk-inserts flat answer rows.
func (r *AnswerRepository) InsertAnswers(ctx context.Context, rows []model.AnswerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO answer (user_id, survey_id, question_id, question_choice_id, multiple_index, value, language)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.UserID, row.SurveyID, row.QuestionID, row.QuestionChoiceID,
			row.MultipleIndex, row.Value, row.Language,
		)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// SoftDeleteAnswers marks all live rows for the touched question ids
// as deleted. New submissions destroy-then-recreate the full set.
func (r *AnswerRepository) SoftDeleteAnswers(ctx context.Context, userID, surveyID int, questionIDs []int) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE answer SET deleted_at = NOW()
		 WHERE user_id = $1 AND survey_id = $2 AND question_id = ANY($3) AND deleted_at IS NULL`,
		userID, surveyID, questionIDs)
	return err
}

// ListAnsweredQuestionIDs returns which of the given questions have a
// live stored answer for (userID, surveyID). Used by the completed-
// submission required check.
func (r *AnswerRepository) ListAnsweredQuestionIDs(ctx context.Context, userID, surveyID int, questionIDs []int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT question_id FROM answer
		 WHERE user_id = $1 AND survey_id = $2 AND question_id = ANY($3) AND deleted_at IS NULL`,
		userID, surveyID, questionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListAnswers retrieves flat rows joined with the question attributes
// the decoder needs. The history-only scope returns soft-deleted rows
// with their deletion time; export always includes the survey id.
func (r *AnswerRepository) ListAnswers(ctx context.Context, opts ListAnswersOptions) ([]model.AnswerRow, error) {
	query := `SELECT a.question_id, a.question_choice_id, a.multiple_index, a.value, a.language,
	                 a.survey_id, a.deleted_at, q.type, q.multiple, COALESCE(qc.type, '')
	          FROM answer a
	          JOIN questions q ON q.id = a.question_id
	          LEFT JOIN question_choices qc ON qc.id = a.question_choice_id
	          WHERE a.user_id = $1`
	args := []any{opts.UserID}

	if opts.SurveyID != nil {
		query += ` AND a.survey_id = $2`
		args = append(args, *opts.SurveyID)
	}
	if opts.Scope == ScopeHistoryOnly {
		query += ` AND a.deleted_at IS NOT NULL ORDER BY a.deleted_at, a.question_id, a.multiple_index`
	} else {
		query += ` AND a.deleted_at IS NULL ORDER BY a.survey_id, a.question_id, a.multiple_index`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AnswerRow
	for rows.Next() {
		var row model.AnswerRow
		row.UserID = opts.UserID
		if err := rows.Scan(&row.QuestionID, &row.QuestionChoiceID, &row.MultipleIndex,
			&row.Value, &row.Language, &row.SurveyID, &row.DeletedAt,
			&row.QuestionType, &row.Multiple, &row.ChoiceType); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SaveFile persists file content once, addressed by its SHA-256, and
// returns the stored record id the answer row references.
func (r *AnswerRepository) SaveFile(ctx context.Context, userID int, name string, content []byte) (int, error) {
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO answer_file (user_id, digest, name, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (digest) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		userID, digest, name, content,
	).Scan(&id)
	return id, err
}

// SearchUserIDs finds participants matching the criteria: a user
// matches when they have a satisfying live answer for every included
// question and none for any excluded one.
func (r *AnswerRepository) SearchUserIDs(ctx context.Context, c model.SearchCriteria) ([]int, error) {
	query, args, err := buildSearchQuery(c)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
