package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/database"
	"github.com/regsite/registry-backend/internal/logger"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/repository"
	"github.com/regsite/registry-backend/internal/service"
	"github.com/rs/zerolog"
)

// Seeds a small demo survey plus a handful of participant accounts so
// the API is exercisable right after migrating an empty database.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo)

	fmt.Println("=== Seeding Demo Survey ===")

	// Survey, idempotent on name.
	var surveyID int
	err = pool.QueryRow(ctx, `SELECT id FROM surveys WHERE name = $1`, "Baseline Health Survey").Scan(&surveyID)
	if err == pgx.ErrNoRows {
		err = pool.QueryRow(ctx,
			`INSERT INTO surveys (name, status) VALUES ($1, 'published') RETURNING id`,
			"Baseline Health Survey").Scan(&surveyID)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create survey")
	}
	fmt.Printf("Survey ID: %d\n", surveyID)

	// Questions. The smoker gate enables the follow-up question.
	smokerID := seedQuestion(ctx, pool, log, "Do you smoke?", model.QuestionTypeBool, false)
	perDayID := seedQuestion(ctx, pool, log, "How many cigarettes per day?", model.QuestionTypeInteger, false)
	birthYearID := seedQuestion(ctx, pool, log, "Year of birth", model.QuestionTypeYear, false)
	sexID := seedQuestion(ctx, pool, log, "Sex at birth", model.QuestionTypeChoice, false)
	medsID := seedQuestion(ctx, pool, log, "Current medications", model.QuestionTypeText, true)

	var femaleChoiceID int
	for line, text := range []string{"Female", "Male", "Other"} {
		var choiceID int
		err = pool.QueryRow(ctx,
			`SELECT id FROM question_choices WHERE question_id = $1 AND text = $2`, sexID, text).Scan(&choiceID)
		if err == pgx.ErrNoRows {
			err = pool.QueryRow(ctx,
				`INSERT INTO question_choices (question_id, text, line) VALUES ($1, $2, $3) RETURNING id`,
				sexID, text, line).Scan(&choiceID)
		}
		if err != nil {
			log.Fatal().Err(err).Str("choice", text).Msg("Failed to create choice")
		}
		if text == "Female" {
			femaleChoiceID = choiceID
		}
	}

	for line, q := range []struct {
		id       int
		required bool
	}{
		{smokerID, true},
		{perDayID, false},
		{birthYearID, true},
		{sexID, true},
		{medsID, false},
	} {
		if _, err := pool.Exec(ctx,
			`INSERT INTO survey_questions (survey_id, question_id, line, required)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (survey_id, question_id) DO NOTHING`,
			surveyID, q.id, line, q.required); err != nil {
			log.Fatal().Err(err).Msg("Failed to attach question")
		}
	}

	// Enable-when: the per-day question only applies to smokers.
	var ruleID int
	err = pool.QueryRow(ctx,
		`SELECT id FROM answer_rules WHERE survey_id = $1 AND question_id = $2`, surveyID, perDayID).Scan(&ruleID)
	if err == pgx.ErrNoRows {
		err = pool.QueryRow(ctx,
			`INSERT INTO answer_rules (survey_id, question_id, logic, source_question_id)
			 VALUES ($1, $2, 'equal', $3) RETURNING id`,
			surveyID, perDayID, smokerID).Scan(&ruleID)
		if err == nil {
			_, err = pool.Exec(ctx,
				`INSERT INTO answer_rule_values (answer_rule_id, value) VALUES ($1, 'true')`, ruleID)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create enable rule")
	}

	// Consent requirement on answer creation.
	var consentTypeID int
	err = pool.QueryRow(ctx,
		`INSERT INTO consent_types (name) VALUES ('data-collection')
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`).Scan(&consentTypeID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create consent type")
	}
	var docCount int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM consent_documents WHERE consent_type_id = $1`, consentTypeID).Scan(&docCount); err != nil {
		log.Fatal().Err(err).Msg("Failed to count consent documents")
	}
	if docCount == 0 {
		if _, err := pool.Exec(ctx,
			`INSERT INTO consent_documents (consent_type_id, content)
			 VALUES ($1, 'I consent to my answers being stored for research.')`, consentTypeID); err != nil {
			log.Fatal().Err(err).Msg("Failed to create consent document")
		}
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO survey_consents (survey_id, consent_type_id, action)
		 VALUES ($1, $2, 'create') ON CONFLICT DO NOTHING`, surveyID, consentTypeID); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach consent requirement")
	}

	// Portable identifier for cross-registry counts.
	if _, err := pool.Exec(ctx,
		`INSERT INTO answer_identifiers (type, identifier, question_id)
		 VALUES ($1, 'smoker', $2) ON CONFLICT (type, identifier) DO NOTHING`,
		model.IdentifierTypeFederated, smokerID); err != nil {
		log.Fatal().Err(err).Msg("Failed to create answer identifier")
	}

	// Participant accounts.
	created := 0
	for i := 1; i <= 10; i++ {
		email := fmt.Sprintf("participant%02d@example.org", i)
		existing, err := userRepo.GetByEmail(ctx, email)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to check participant")
		}
		if existing != nil {
			continue
		}
		hash, err := authService.HashPassword(fmt.Sprintf("participant%02d", i))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		u := &model.User{Email: email, PasswordHash: hash, Role: model.RoleParticipant}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("Failed to create participant")
		}
		created++
	}
	fmt.Printf("Participants created: %d\n", created)

	fmt.Printf("Sex question %d, 'Female' choice %d\n", sexID, femaleChoiceID)
	fmt.Println("Done.")
}

// seedQuestion inserts a question if no question with the same text
// exists yet and returns its id.
func seedQuestion(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, text string, qType model.QuestionType, multiple bool) int {
	var id int
	err := pool.QueryRow(ctx,
		`SELECT id FROM questions WHERE text = $1 AND deleted_at IS NULL`, text).Scan(&id)
	if err == pgx.ErrNoRows {
		err = pool.QueryRow(ctx,
			`INSERT INTO questions (text, type, multiple) VALUES ($1, $2, $3) RETURNING id`,
			text, qType, multiple).Scan(&id)
	}
	if err != nil {
		log.Fatal().Err(err).Str("question", text).Msg("Failed to create question")
	}
	return id
}
