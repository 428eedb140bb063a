package model

import "time"

// IdentifierTypeFederated is the identifier namespace used to exchange
// criteria between registries.
const IdentifierTypeFederated = "federated"

// Registry is an independently hosted or schema-isolated peer data
// store. Exactly one of URL (cross-host) or Schema (co-located) is set.
type Registry struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	URL       *string   `json:"url,omitempty"`
	Schema    *string   `json:"schema,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerIdentifier maps a (question[, choice]) pair to a stable
// portable token under a named type. Append-only; duplicate
// (type, identifier) pairs are rejected by a uniqueness constraint.
type AnswerIdentifier struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Identifier       string `json:"identifier"`
	QuestionID       int    `json:"question_id"`
	QuestionChoiceID *int   `json:"question_choice_id,omitempty"`
}

// SearchAnswer is one acceptable answer of a search criterion, matched
// by (questionId, value, questionChoiceId) equality. Integer-typed
// criteria may instead carry a half-open range: "min:", ":max" or
// "min:max".
type SearchAnswer struct {
	AnswerValue
	Range *string `json:"rangeValue,omitempty"`
}

// SearchQuestion is one criterion of a cohort search: a question and
// the answers that satisfy it (OR'ed). Criteria are AND'ed across
// questions; Exclude inverts the criterion.
type SearchQuestion struct {
	ID      int            `json:"id"`
	Exclude bool           `json:"exclude,omitempty"`
	Answers []SearchAnswer `json:"answers"`
}

// SearchCriteria is a local-vocabulary cohort filter.
type SearchCriteria struct {
	Questions []SearchQuestion `json:"questions"`
}

// FederatedSearchQuestion is a criterion expressed in the portable
// federated vocabulary: an identifier token, or question/choice text
// as a fallback when no identifier was assigned.
type FederatedSearchQuestion struct {
	Identifier         *string        `json:"identifier,omitempty"`
	QuestionText       string         `json:"questionText,omitempty"`
	QuestionChoiceText string         `json:"questionChoiceText,omitempty"`
	Exclude            bool           `json:"exclude,omitempty"`
	Answers            []SearchAnswer `json:"answers"`
}

// FederatedSearchCriteria is a cohort filter exchanged between
// registries; each receiving registry translates it into its own ids.
type FederatedSearchCriteria struct {
	Questions []FederatedSearchQuestion `json:"questions"`
}

// FederatedCountRequest fans a count out to the local registry plus a
// set of peers.
type FederatedCountRequest struct {
	Local struct {
		Criteria SearchCriteria `json:"criteria"`
	} `json:"local"`
	Federal []FederalEntry `json:"federal"`
}

// FederalEntry addresses one peer registry with the criteria it should
// evaluate.
type FederalEntry struct {
	RegistryID int                     `json:"registryId"`
	Criteria   FederatedSearchCriteria `json:"criteria"`
}

// CohortCount is a participant count result.
type CohortCount struct {
	Count int `json:"count"`
}

// RegistryCount is one peer's contribution to a federated count. Error
// is set (and the count excluded from the total) only under the
// partial-results aggregation policy.
type RegistryCount struct {
	RegistryID int    `json:"registryId"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
}

// FederatedCount is the combined federated count result.
type FederatedCount struct {
	Local   CohortCount     `json:"local"`
	Federal []RegistryCount `json:"federal"`
	Total   CohortCount     `json:"total"`
}
