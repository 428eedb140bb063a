package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/model"
	"github.com/rs/zerolog"
)

type stubRegistryStore struct {
	registries  []model.Registry
	identifiers map[string]*model.AnswerIdentifier
	byText      map[string]*model.AnswerIdentifier
}

func (s *stubRegistryStore) ListRegistries(ctx context.Context) ([]model.Registry, error) {
	return s.registries, nil
}

func (s *stubRegistryStore) GetRegistry(ctx context.Context, id int) (*model.Registry, error) {
	for _, reg := range s.registries {
		if reg.ID == id {
			return &reg, nil
		}
	}
	return nil, nil
}

func (s *stubRegistryStore) CreateRegistry(ctx context.Context, reg *model.Registry) error {
	reg.ID = len(s.registries) + 1
	s.registries = append(s.registries, *reg)
	return nil
}

func (s *stubRegistryStore) FindByIdentifier(ctx context.Context, identifierType, identifier string) (*model.AnswerIdentifier, error) {
	return s.identifiers[identifier], nil
}

func (s *stubRegistryStore) FindByText(ctx context.Context, questionText, choiceText string) (*model.AnswerIdentifier, error) {
	return s.byText[questionText+"|"+choiceText], nil
}

func (s *stubRegistryStore) CreateIdentifier(ctx context.Context, ai *model.AnswerIdentifier) error {
	if s.identifiers == nil {
		s.identifiers = make(map[string]*model.AnswerIdentifier)
	}
	s.identifiers[ai.Identifier] = ai
	return nil
}

type stubSchemaStores struct {
	registries RegistryStore
	answers    AnswerStore
	users      UserStore
}

func (s *stubSchemaStores) Stores(ctx context.Context, schema string) (RegistryStore, AnswerStore, UserStore, error) {
	return s.registries, s.answers, s.users, nil
}

func federationConfig(partial bool) *config.Config {
	return &config.Config{
		FederationTimeout:        5 * time.Second,
		FederationPartialResults: partial,
	}
}

func boolPtr(b bool) *bool { return &b }

// Common fixture: local cohort of 2, a schema peer counting 3 and a
// cross-host peer counting whatever the handler returns.
func newFederationFixture(t *testing.T, remoteHandler http.HandlerFunc, partial bool) (*FederationService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(remoteHandler)
	t.Cleanup(server.Close)

	localAnswers := newStubAnswerStore(nil)
	localAnswers.searchIDs = []int{1, 2}
	localSearch := NewSearchService(localAnswers, &stubUserStore{})

	schemaAnswers := newStubAnswerStore(nil)
	schemaAnswers.searchIDs = []int{10, 11, 12}
	schemaRegistries := &stubRegistryStore{
		identifiers: map[string]*model.AnswerIdentifier{
			"smoker": {QuestionID: 42},
		},
	}
	schemas := &stubSchemaStores{
		registries: schemaRegistries,
		answers:    schemaAnswers,
		users:      &stubUserStore{},
	}

	registries := &stubRegistryStore{registries: []model.Registry{
		{ID: 1, Name: "peer-schema", Schema: strPtr("peer_one")},
		{ID: 2, Name: "peer-remote", URL: strPtr(server.URL)},
	}}

	svc := NewFederationService(registries, localSearch, schemas,
		NewHTTPRemoteClient(), federationConfig(partial), zerolog.Nop())
	return svc, server
}

func federatedRequest() model.FederatedCountRequest {
	var req model.FederatedCountRequest
	req.Local.Criteria = model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 1, Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Bool: boolPtr(true)}}}},
	}}
	criteria := model.FederatedSearchCriteria{Questions: []model.FederatedSearchQuestion{
		{Identifier: strPtr("smoker"), Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Bool: boolPtr(true)}}}},
	}}
	req.Federal = []model.FederalEntry{
		{RegistryID: 1, Criteria: criteria},
		{RegistryID: 2, Criteria: criteria},
	}
	return req
}

func TestFederatedCountSumsLocalAndPeers(t *testing.T) {
	svc, _ := newFederationFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/cohorts/federated" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"count":5},"metadata":{}}`))
	}, false)

	got, err := svc.FederatedCount(context.Background(), federatedRequest())
	if err != nil {
		t.Fatalf("FederatedCount: %v", err)
	}
	if got.Local.Count != 2 {
		t.Errorf("local = %d, want 2", got.Local.Count)
	}
	if got.Total.Count != 10 {
		t.Errorf("total = %d, want 2+3+5=10", got.Total.Count)
	}
	if len(got.Federal) != 2 {
		t.Fatalf("federal entries = %d, want 2", len(got.Federal))
	}
}

func TestFederatedCountUnknownRegistry(t *testing.T) {
	svc, _ := newFederationFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"count":0}}`))
	}, false)

	req := federatedRequest()
	req.Federal[1].RegistryID = 99
	_, err := svc.FederatedCount(context.Background(), req)
	if !model.IsError(err, model.ErrRegistryIDNotFound) {
		t.Fatalf("err = %v, want registryIdNotFound", err)
	}
	if de := model.AsError(err); de.RegistryID != 99 {
		t.Errorf("registry id = %d, want 99", de.RegistryID)
	}
}

func TestFederatedCountNoRegistries(t *testing.T) {
	localAnswers := newStubAnswerStore(nil)
	svc := NewFederationService(&stubRegistryStore{}, NewSearchService(localAnswers, &stubUserStore{}),
		&stubSchemaStores{}, NewHTTPRemoteClient(), federationConfig(false), zerolog.Nop())

	req := federatedRequest()
	_, err := svc.FederatedCount(context.Background(), req)
	if !model.IsError(err, model.ErrRegistryNoneFound) {
		t.Fatalf("err = %v, want registryNoneFound", err)
	}
}

func TestFederatedCountStrictFailsOnPeerError(t *testing.T) {
	svc, _ := newFederationFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"data":null,"error":{"code":"INTERNAL_ERROR","message":"boom"}}`))
	}, false)

	if _, err := svc.FederatedCount(context.Background(), federatedRequest()); err == nil {
		t.Fatal("expected error under strict policy")
	}
}

func TestFederatedCountPartialResults(t *testing.T) {
	svc, _ := newFederationFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"data":null,"error":{"code":"INTERNAL_ERROR","message":"boom"}}`))
	}, true)

	got, err := svc.FederatedCount(context.Background(), federatedRequest())
	if err != nil {
		t.Fatalf("FederatedCount: %v", err)
	}
	// Remote peer is reported but excluded from the total.
	if got.Total.Count != 5 {
		t.Errorf("total = %d, want 2+3=5", got.Total.Count)
	}
	var failed *model.RegistryCount
	for i := range got.Federal {
		if got.Federal[i].Error != "" {
			failed = &got.Federal[i]
		}
	}
	if failed == nil || failed.RegistryID != 2 {
		t.Errorf("federal results = %+v, want an error entry for registry 2", got.Federal)
	}
}

func TestTranslateTextFallbackAndDrop(t *testing.T) {
	store := &stubRegistryStore{
		byText: map[string]*model.AnswerIdentifier{
			"Do you smoke?|Daily": {QuestionID: 42, QuestionChoiceID: intPtr(7)},
		},
	}
	svc := NewFederationService(store, NewSearchService(newStubAnswerStore(nil), &stubUserStore{}),
		&stubSchemaStores{}, NewHTTPRemoteClient(), federationConfig(false), zerolog.Nop())

	c := model.FederatedSearchCriteria{Questions: []model.FederatedSearchQuestion{
		{QuestionText: "Do you smoke?", QuestionChoiceText: "Daily",
			Answers: []model.SearchAnswer{{AnswerValue: model.AnswerValue{Bool: boolPtr(true)}}}},
		{QuestionText: "Unknown here?"},
	}}
	got, err := svc.Translate(context.Background(), store, c)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(got.Questions) != 1 {
		t.Fatalf("questions = %+v, want the unmapped one dropped", got.Questions)
	}
	if got.Questions[0].ID != 42 {
		t.Errorf("question id = %d, want 42", got.Questions[0].ID)
	}
}
