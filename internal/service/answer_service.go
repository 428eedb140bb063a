package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/regsite/registry-backend/internal/answers"
	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrFileTooLarge rejects a file answer over the configured cap.
var ErrFileTooLarge = errors.New("file answer exceeds upload size limit")

// ErrSurveyNotFound is returned when the addressed survey does not
// exist or was deleted.
var ErrSurveyNotFound = errors.New("survey not found")

// AnswerService coordinates answer submission and retrieval: structure
// loading, validation, consent gating and the atomic
// destroy-then-recreate write.
type AnswerService struct {
	surveys  SurveyStore
	answers  AnswerStore
	statuses UserSurveyStore
	consents ConsentStore
	tx       TxRunner
	rdb      *redis.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(surveys SurveyStore, answerStore AnswerStore, statuses UserSurveyStore,
	consents ConsentStore, tx TxRunner, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		surveys:  surveys,
		answers:  answerStore,
		statuses: statuses,
		consents: consents,
		tx:       tx,
		rdb:      rdb,
		cfg:      cfg,
		log:      log.With().Str("component", "answer_service").Logger(),
	}
}

// surveyStructure is the read-only snapshot validation runs against.
type surveyStructure struct {
	Questions []model.SurveyQuestion `json:"questions"`
	Rules     model.AnswerRuleMaps   `json:"rules"`
}

// loadStructure reads a survey's questions and rules, going through
// the Redis snapshot cache when available. A cache failure falls back
// to the database.
func (s *AnswerService) loadStructure(ctx context.Context, surveyID int) (*surveyStructure, error) {
	var key string
	if s.rdb != nil {
		key = config.CacheKey.SurveyStructureKey(surveyID)
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			st := &surveyStructure{}
			if err := json.Unmarshal([]byte(raw), st); err == nil {
				return st, nil
			}
			s.log.Warn().Int("survey_id", surveyID).Msg("discarding unreadable structure cache entry")
		}
	}

	if _, err := s.surveys.GetSurvey(ctx, surveyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("load survey: %w", err)
	}
	questions, err := s.surveys.ListSurveyQuestions(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey questions: %w", err)
	}
	rules, err := s.surveys.GetAnswerRules(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load answer rules: %w", err)
	}
	st := &surveyStructure{Questions: questions, Rules: rules}

	if s.rdb != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.cfg.SurveyCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Int("survey_id", surveyID).Msg("structure cache write failed")
			}
		}
	}
	return st, nil
}

// InvalidateStructure drops a survey's cached snapshot. Called after
// structural edits.
func (s *AnswerService) InvalidateStructure(ctx context.Context, surveyID int) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, config.CacheKey.SurveyStructureKey(surveyID)).Err()
}

// Submit validates and atomically persists an answer batch. The write
// replaces every touched question's stored rows with the batch's
// content; questions disabled by the batch are cleared through their
// placeholders. Completed submissions additionally require every
// enabled required question to be answered in the batch or in storage,
// and every create-guarding consent document to be signed.
func (s *AnswerService) Submit(ctx context.Context, userID, surveyID int, language string,
	status model.SurveyStatus, in []model.ClientAnswer) error {

	st, err := s.loadStructure(ctx, surveyID)
	if err != nil {
		return err
	}
	v, err := answers.Validate(st.Questions, st.Rules, in, status)
	if err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(tx SubmissionStores) error {
		// Required questions absent from the batch may already be
		// answered in storage from an earlier partial submission. This
		// completes validation, so it runs before the consent gate.
		if status == model.SurveyStatusCompleted && len(v.RemainingRequired) > 0 {
			stored, err := tx.Answers.ListAnsweredQuestionIDs(ctx, userID, surveyID, v.RemainingRequired)
			if err != nil {
				return fmt.Errorf("check stored answers: %w", err)
			}
			answered := make(map[int]bool, len(stored))
			for _, id := range stored {
				answered[id] = true
			}
			for _, id := range v.RemainingRequired {
				if !answered[id] {
					return &model.Error{Code: model.ErrAnswerRequiredMissing, QuestionID: id}
				}
			}
		}

		docs, err := tx.Consents.ListOutstandingDocuments(ctx, userID, surveyID, model.ConsentActionCreate)
		if err != nil {
			return fmt.Errorf("check consents: %w", err)
		}
		if len(docs) > 0 {
			return &model.Error{Code: model.ErrProfileSignaturesMissing, ConsentDocuments: docs}
		}

		if err := tx.Statuses.UpsertStatus(ctx, userID, surveyID, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if err := s.persistFiles(ctx, tx.Answers, userID, v.Answers); err != nil {
			return err
		}
		rows, err := answers.EncodeRows(userID, surveyID, language, v.Answers)
		if err != nil {
			return err
		}

		touched := make([]int, 0, len(v.Answers))
		for _, ca := range v.Answers {
			touched = append(touched, ca.QuestionID)
		}
		if err := tx.Answers.SoftDeleteAnswers(ctx, userID, surveyID, touched); err != nil {
			return fmt.Errorf("clear previous answers: %w", err)
		}
		if err := tx.Answers.InsertAnswers(ctx, rows); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
}

// persistFiles stores inbound file content and rewrites each file
// answer to reference the stored record, so row encoding only ever
// sees file ids.
func (s *AnswerService) persistFiles(ctx context.Context, store AnswerStore, userID int, batch []model.ClientAnswer) error {
	for _, ca := range batch {
		if ca.Answer != nil {
			if err := s.persistFile(ctx, store, userID, ca.Answer); err != nil {
				return err
			}
		}
		for i := range ca.Answers {
			if err := s.persistFile(ctx, store, userID, &ca.Answers[i].AnswerValue); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *AnswerService) persistFile(ctx context.Context, store AnswerStore, userID int, v *model.AnswerValue) error {
	f := v.File
	if f == nil || f.ID != nil || len(f.Content) == 0 {
		return nil
	}
	if int64(len(f.Content)) > s.cfg.MaxUploadBytes {
		return ErrFileTooLarge
	}
	id, err := store.SaveFile(ctx, userID, f.Name, f.Content)
	if err != nil {
		return fmt.Errorf("save file answer: %w", err)
	}
	f.ID = &id
	f.Content = nil
	return nil
}

// GetAnswers returns the live answers of one survey in client shape.
// Read-guarding consent documents must be signed first.
func (s *AnswerService) GetAnswers(ctx context.Context, userID, surveyID int) ([]model.ClientAnswer, error) {
	docs, err := s.consents.ListOutstandingDocuments(ctx, userID, surveyID, model.ConsentActionRead)
	if err != nil {
		return nil, fmt.Errorf("check consents: %w", err)
	}
	if len(docs) > 0 {
		return nil, &model.Error{Code: model.ErrProfileSignaturesMissing, ConsentDocuments: docs}
	}

	rows, err := s.answers.ListAnswers(ctx, repository.ListAnswersOptions{
		UserID:   userID,
		SurveyID: &surveyID,
		Scope:    repository.ScopeSurvey,
	})
	if err != nil {
		return nil, err
	}
	return answers.DecodeRows(rows)
}

// GetStatus returns the submission status of (userID, surveyID), or
// nil when the survey was never submitted.
func (s *AnswerService) GetStatus(ctx context.Context, userID, surveyID int) (*model.UserSurvey, error) {
	return s.statuses.GetStatus(ctx, userID, surveyID)
}

// ListHistory returns the user's superseded answers, optionally
// limited to one survey. Each entry carries the time its row set was
// replaced.
func (s *AnswerService) ListHistory(ctx context.Context, userID int, surveyID *int) ([]model.ClientAnswer, error) {
	rows, err := s.answers.ListAnswers(ctx, repository.ListAnswersOptions{
		UserID:   userID,
		SurveyID: surveyID,
		Scope:    repository.ScopeHistoryOnly,
	})
	if err != nil {
		return nil, err
	}
	return answers.DecodeRows(rows)
}

// ExportForUser flattens the user's live answers across all surveys
// into portable export records.
func (s *AnswerService) ExportForUser(ctx context.Context, userID int) ([]model.AnswerExportRecord, error) {
	rows, err := s.answers.ListAnswers(ctx, repository.ListAnswersOptions{
		UserID: userID,
		Scope:  repository.ScopeExport,
	})
	if err != nil {
		return nil, err
	}
	recs := make([]model.AnswerExportRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.AnswerExportRecord{
			SurveyID:         row.SurveyID,
			QuestionID:       row.QuestionID,
			QuestionChoiceID: row.QuestionChoiceID,
			MultipleIndex:    row.MultipleIndex,
			QuestionType:     row.QuestionType,
			ChoiceType:       row.ChoiceType,
		}
		if row.Value != nil {
			rec.Value = *row.Value
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ImportForUser atomically replaces the stored rows of every touched
// (survey, question) pair with the imported records. Month values are
// normalized to two digits on the way in.
func (s *AnswerService) ImportForUser(ctx context.Context, userID int, language string, recs []model.AnswerExportRecord) error {
	bySurvey := make(map[int][]model.AnswerRow)
	touched := make(map[int][]int)
	seen := make(map[[2]int]bool)
	for _, rec := range recs {
		value := rec.Value
		if rec.QuestionType == model.QuestionTypeMonth && len(value) == 1 {
			value = "0" + value
		}
		row := model.AnswerRow{
			UserID:           userID,
			SurveyID:         rec.SurveyID,
			QuestionID:       rec.QuestionID,
			QuestionChoiceID: rec.QuestionChoiceID,
			MultipleIndex:    rec.MultipleIndex,
			Language:         language,
		}
		if value != "" {
			row.Value = &value
		}
		bySurvey[rec.SurveyID] = append(bySurvey[rec.SurveyID], row)
		key := [2]int{rec.SurveyID, rec.QuestionID}
		if !seen[key] {
			seen[key] = true
			touched[rec.SurveyID] = append(touched[rec.SurveyID], rec.QuestionID)
		}
	}

	return s.tx.InTx(ctx, func(tx SubmissionStores) error {
		for surveyID, rows := range bySurvey {
			if err := tx.Answers.SoftDeleteAnswers(ctx, userID, surveyID, touched[surveyID]); err != nil {
				return fmt.Errorf("clear survey %d: %w", surveyID, err)
			}
			if err := tx.Answers.InsertAnswers(ctx, rows); err != nil {
				return fmt.Errorf("import survey %d: %w", surveyID, err)
			}
		}
		return nil
	})
}
