package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/repository"
)

// Store interfaces narrow the repositories to what each service needs
// so the domain flows are testable without a database.

// SurveyStore reads survey structure.
type SurveyStore interface {
	GetSurvey(ctx context.Context, id int) (*model.Survey, error)
	ListSurveyQuestions(ctx context.Context, surveyID int) ([]model.SurveyQuestion, error)
	GetAnswerRules(ctx context.Context, surveyID int) (model.AnswerRuleMaps, error)
}

// AnswerStore persists and queries flat answer rows.
type AnswerStore interface {
	InsertAnswers(ctx context.Context, rows []model.AnswerRow) error
	SoftDeleteAnswers(ctx context.Context, userID, surveyID int, questionIDs []int) error
	ListAnsweredQuestionIDs(ctx context.Context, userID, surveyID int, questionIDs []int) ([]int, error)
	ListAnswers(ctx context.Context, opts repository.ListAnswersOptions) ([]model.AnswerRow, error)
	SaveFile(ctx context.Context, userID int, name string, content []byte) (int, error)
	SearchUserIDs(ctx context.Context, c model.SearchCriteria) ([]int, error)
}

// UserSurveyStore tracks submission status.
type UserSurveyStore interface {
	GetStatus(ctx context.Context, userID, surveyID int) (*model.UserSurvey, error)
	UpsertStatus(ctx context.Context, userID, surveyID int, status model.SurveyStatus) error
}

// ConsentStore reads consent requirements and records signatures.
type ConsentStore interface {
	ListOutstandingDocuments(ctx context.Context, userID, surveyID int, action model.ConsentAction) ([]model.ConsentDocument, error)
	SignDocument(ctx context.Context, userID, documentID int, language string) error
}

// RegistryStore manages peers and federated identifier mappings.
type RegistryStore interface {
	ListRegistries(ctx context.Context) ([]model.Registry, error)
	GetRegistry(ctx context.Context, id int) (*model.Registry, error)
	CreateRegistry(ctx context.Context, reg *model.Registry) error
	FindByIdentifier(ctx context.Context, identifierType, identifier string) (*model.AnswerIdentifier, error)
	FindByText(ctx context.Context, questionText, choiceText string) (*model.AnswerIdentifier, error)
	CreateIdentifier(ctx context.Context, ai *model.AnswerIdentifier) error
}

// UserStore manages accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

// SubmissionStores is the store surface of one atomic answer
// submission, all bound to the same transaction.
type SubmissionStores struct {
	Answers  AnswerStore
	Statuses UserSurveyStore
	Consents ConsentStore
}

// TxRunner runs a function against stores bound to one transaction.
// The transaction commits when fn returns nil and rolls back
// otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(SubmissionStores) error) error
}

// PgxTxRunner is the production TxRunner over a pgx pool.
type PgxTxRunner struct {
	Pool *pgxpool.Pool
}

func (r *PgxTxRunner) InTx(ctx context.Context, fn func(SubmissionStores) error) error {
	return pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		return fn(SubmissionStores{
			Answers:  repository.NewAnswerRepository(tx),
			Statuses: repository.NewUserSurveyRepository(tx),
			Consents: repository.NewConsentRepository(tx),
		})
	})
}
