package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/regsite/registry-backend/internal/model"
)

// UserSurveyRepository tracks per-user survey submission status.
type UserSurveyRepository struct {
	db DBTX
}

// NewUserSurveyRepository creates a new UserSurveyRepository.
func NewUserSurveyRepository(db DBTX) *UserSurveyRepository {
	return &UserSurveyRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *UserSurveyRepository) WithTx(tx DBTX) *UserSurveyRepository {
	return &UserSurveyRepository{db: tx}
}

// GetStatus retrieves the current status for (userID, surveyID), or
// nil when no submission exists yet.
func (r *UserSurveyRepository) GetStatus(ctx context.Context, userID, surveyID int) (*model.UserSurvey, error) {
	us := &model.UserSurvey{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, survey_id, status, created_at
		 FROM user_survey WHERE user_id = $1 AND survey_id = $2`,
		userID, surveyID,
	).Scan(&us.ID, &us.UserID, &us.SurveyID, &us.Status, &us.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return us, nil
}

// UpsertStatus replaces the status row when the status changes, so
// created_at marks the latest transition. Resubmitting an unchanged
// status leaves the row alone.
func (r *UserSurveyRepository) UpsertStatus(ctx context.Context, userID, surveyID int, status model.SurveyStatus) error {
	var current model.SurveyStatus
	err := r.db.QueryRow(ctx,
		`SELECT status FROM user_survey WHERE user_id = $1 AND survey_id = $2`,
		userID, surveyID).Scan(&current)
	switch {
	case err == nil:
		if current == status {
			return nil
		}
		if _, err := r.db.Exec(ctx,
			`DELETE FROM user_survey WHERE user_id = $1 AND survey_id = $2`,
			userID, surveyID); err != nil {
			return err
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO user_survey (user_id, survey_id, status) VALUES ($1, $2, $3)`,
		userID, surveyID, status)
	return err
}

// ListByUser retrieves all survey statuses for a user.
func (r *UserSurveyRepository) ListByUser(ctx context.Context, userID int) ([]model.UserSurvey, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, survey_id, status, created_at
		 FROM user_survey WHERE user_id = $1 ORDER BY survey_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserSurvey
	for rows.Next() {
		var us model.UserSurvey
		if err := rows.Scan(&us.ID, &us.UserID, &us.SurveyID, &us.Status, &us.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, us)
	}
	return out, rows.Err()
}
