package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/database"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/regsite/registry-backend/internal/repository"
	"github.com/rs/zerolog"
)

// RemoteClient counts participants on a cross-host peer registry.
type RemoteClient interface {
	CountUsers(ctx context.Context, baseURL string, c model.FederatedSearchCriteria) (int, error)
}

// SchemaStores opens the store set of a co-located registry schema.
type SchemaStores interface {
	Stores(ctx context.Context, schema string) (RegistryStore, AnswerStore, UserStore, error)
}

// PgxSchemaStores is the production SchemaStores over lazily opened
// per-schema pools.
type PgxSchemaStores struct {
	Pools *database.SchemaPools
}

func (s *PgxSchemaStores) Stores(ctx context.Context, schema string) (RegistryStore, AnswerStore, UserStore, error) {
	pool, err := s.Pools.Pool(ctx, schema)
	if err != nil {
		return nil, nil, nil, err
	}
	return repository.NewRegistryRepository(pool),
		repository.NewAnswerRepository(pool),
		repository.NewUserRepository(pool),
		nil
}

// FederationService translates portable criteria into local ids and
// fans federated counts out to peer registries.
type FederationService struct {
	registries RegistryStore
	search     *SearchService
	schemas    SchemaStores
	client     RemoteClient
	cfg        *config.Config
	log        zerolog.Logger
}

// NewFederationService creates a new FederationService.
func NewFederationService(registries RegistryStore, search *SearchService, schemas SchemaStores,
	client RemoteClient, cfg *config.Config, log zerolog.Logger) *FederationService {
	return &FederationService{
		registries: registries,
		search:     search,
		schemas:    schemas,
		client:     client,
		cfg:        cfg,
		log:        log.With().Str("component", "federation_service").Logger(),
	}
}

// Translate maps portable criteria onto the given registry's local
// vocabulary: identifier lookup first, question/choice text as a
// fallback. Criteria this registry cannot express are logged and
// dropped so one unmapped question does not zero the whole cohort.
func (s *FederationService) Translate(ctx context.Context, store RegistryStore, c model.FederatedSearchCriteria) (model.SearchCriteria, error) {
	var out model.SearchCriteria
	for _, q := range c.Questions {
		var ai *model.AnswerIdentifier
		var err error
		if q.Identifier != nil {
			ai, err = store.FindByIdentifier(ctx, model.IdentifierTypeFederated, *q.Identifier)
			if err != nil {
				return model.SearchCriteria{}, fmt.Errorf("resolve identifier %q: %w", *q.Identifier, err)
			}
		}
		if ai == nil && q.QuestionText != "" {
			ai, err = store.FindByText(ctx, q.QuestionText, q.QuestionChoiceText)
			if err != nil {
				return model.SearchCriteria{}, fmt.Errorf("resolve question text %q: %w", q.QuestionText, err)
			}
		}
		if ai == nil {
			s.log.Warn().
				Str("question_text", q.QuestionText).
				Msg("unmapped federated criterion dropped")
			continue
		}

		sq := model.SearchQuestion{ID: ai.QuestionID, Exclude: q.Exclude}
		for _, a := range q.Answers {
			if ai.QuestionChoiceID != nil {
				a = wrapChoiceAnswer(*ai.QuestionChoiceID, a)
			}
			sq.Answers = append(sq.Answers, a)
		}
		if len(sq.Answers) == 0 && ai.QuestionChoiceID != nil {
			sq.Answers = []model.SearchAnswer{wrapChoiceAnswer(*ai.QuestionChoiceID, model.SearchAnswer{})}
		}
		out.Questions = append(out.Questions, sq)
	}
	return out, nil
}

// wrapChoiceAnswer retargets an answer at the choice the identifier
// maps to: the value becomes a selection of that choice so the search
// matches on the (value, choice id) pair. A bare answer matches a
// plain selection.
func wrapChoiceAnswer(choiceID int, a model.SearchAnswer) model.SearchAnswer {
	if a.Range != nil || a.Choice != nil || a.Choices != nil {
		return a
	}
	sel := model.ChoiceSelection{
		ID:      choiceID,
		Text:    a.Text,
		Bool:    a.Bool,
		Integer: a.Integer,
		Number:  a.Number,
		Month:   a.Month,
		Year:    a.Year,
	}
	return model.SearchAnswer{AnswerValue: model.AnswerValue{Choices: []model.ChoiceSelection{sel}}}
}

// CountLocal evaluates portable criteria against this registry. Backs
// the receiving side of a cross-host federated count.
func (s *FederationService) CountLocal(ctx context.Context, c model.FederatedSearchCriteria) (model.CohortCount, error) {
	crit, err := s.Translate(ctx, s.registries, c)
	if err != nil {
		return model.CohortCount{}, err
	}
	return s.search.CountUsers(ctx, crit)
}

// FederatedCount counts the local cohort plus each addressed peer and
// sums the results. Peers are queried concurrently. Under the strict
// policy (the default) any peer failure fails the request; under the
// partial-results policy failing peers are reported per registry and
// excluded from the total.
func (s *FederationService) FederatedCount(ctx context.Context, req model.FederatedCountRequest) (*model.FederatedCount, error) {
	local, err := s.search.CountUsers(ctx, req.Local.Criteria)
	if err != nil {
		return nil, err
	}
	result := &model.FederatedCount{Local: local}
	total := local.Count

	if len(req.Federal) > 0 {
		regs, err := s.registries.ListRegistries(ctx)
		if err != nil {
			return nil, fmt.Errorf("list registries: %w", err)
		}
		if len(regs) == 0 {
			return nil, model.NewError(model.ErrRegistryNoneFound)
		}
		byID := make(map[int]model.Registry, len(regs))
		for _, reg := range regs {
			byID[reg.ID] = reg
		}

		// Bad addressing is a request error regardless of policy.
		targets := make([]model.Registry, len(req.Federal))
		for i, entry := range req.Federal {
			reg, ok := byID[entry.RegistryID]
			if !ok {
				return nil, &model.Error{Code: model.ErrRegistryIDNotFound, RegistryID: entry.RegistryID}
			}
			targets[i] = reg
		}

		counts := make([]model.RegistryCount, len(req.Federal))
		errs := make([]error, len(req.Federal))
		var wg sync.WaitGroup
		for i, entry := range req.Federal {
			wg.Add(1)
			go func(i int, reg model.Registry, c model.FederatedSearchCriteria) {
				defer wg.Done()
				n, err := s.countPeer(ctx, reg, c)
				counts[i] = model.RegistryCount{RegistryID: reg.ID, Count: n}
				errs[i] = err
			}(i, targets[i], entry.Criteria)
		}
		wg.Wait()

		for i, err := range errs {
			if err == nil {
				total += counts[i].Count
				result.Federal = append(result.Federal, counts[i])
				continue
			}
			if !s.cfg.FederationPartialResults {
				return nil, fmt.Errorf("registry %d: %w", counts[i].RegistryID, err)
			}
			s.log.Warn().Err(err).Int("registry_id", counts[i].RegistryID).Msg("peer count failed")
			result.Federal = append(result.Federal, model.RegistryCount{
				RegistryID: counts[i].RegistryID,
				Error:      err.Error(),
			})
		}
	}

	result.Total = model.CohortCount{Count: total}
	return result, nil
}

// countPeer evaluates one peer: over HTTP for cross-host registries,
// directly against the schema for co-located ones.
func (s *FederationService) countPeer(ctx context.Context, reg model.Registry, c model.FederatedSearchCriteria) (int, error) {
	switch {
	case reg.URL != nil:
		ctx, cancel := context.WithTimeout(ctx, s.cfg.FederationTimeout)
		defer cancel()
		return s.client.CountUsers(ctx, *reg.URL, c)

	case reg.Schema != nil:
		regStore, answerStore, userStore, err := s.schemas.Stores(ctx, *reg.Schema)
		if err != nil {
			return 0, err
		}
		crit, err := s.Translate(ctx, regStore, c)
		if err != nil {
			return 0, err
		}
		peer := NewSearchService(answerStore, userStore)
		count, err := peer.CountUsers(ctx, crit)
		return count.Count, err

	default:
		return 0, fmt.Errorf("registry %d has neither url nor schema", reg.ID)
	}
}
