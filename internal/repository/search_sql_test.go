package repository

import (
	"strings"
	"testing"

	"github.com/regsite/registry-backend/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestParseRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max *int
		wantErr  bool
	}{
		{in: "18:65", min: intPtr(18), max: intPtr(65)},
		{in: "18:", min: intPtr(18)},
		{in: ":65", max: intPtr(65)},
		{in: ":", wantErr: true},
		{in: "18", wantErr: true},
		{in: "a:b", wantErr: true},
	}
	for _, tt := range tests {
		min, max, err := ParseRange(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q): %v", tt.in, err)
			continue
		}
		if (min == nil) != (tt.min == nil) || (min != nil && *min != *tt.min) {
			t.Errorf("ParseRange(%q) min = %v, want %v", tt.in, min, tt.min)
		}
		if (max == nil) != (tt.max == nil) || (max != nil && *max != *tt.max) {
			t.Errorf("ParseRange(%q) max = %v, want %v", tt.in, max, tt.max)
		}
	}
}

func TestBuildSearchQueryIncludes(t *testing.T) {
	c := model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 1, Answers: []model.SearchAnswer{
			{AnswerValue: model.AnswerValue{Text: strPtr("yes")}},
			{AnswerValue: model.AnswerValue{Text: strPtr("maybe")}},
		}},
		{ID: 2, Answers: []model.SearchAnswer{
			{AnswerValue: model.AnswerValue{Choice: intPtr(7)}},
		}},
	}}
	query, args, err := buildSearchQuery(c)
	if err != nil {
		t.Fatalf("buildSearchQuery: %v", err)
	}
	if !strings.Contains(query, "GROUP BY a.user_id HAVING COUNT(DISTINCT a.question_id) = $10") {
		t.Errorf("missing distinct-question guard in %q", query)
	}
	// Three scalar alternatives at three args each, plus the criteria count.
	if len(args) != 10 {
		t.Fatalf("args = %d, want 10", len(args))
	}
	if args[9] != 2 {
		t.Errorf("criteria count arg = %v, want 2", args[9])
	}
	if got := strings.Count(query, "value IS NOT DISTINCT FROM"); got != 3 {
		t.Errorf("scalar conditions = %d, want 3", got)
	}
}

func TestBuildSearchQueryRange(t *testing.T) {
	c := model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 4, Answers: []model.SearchAnswer{{Range: strPtr("18:65")}}},
	}}
	query, args, err := buildSearchQuery(c)
	if err != nil {
		t.Fatalf("buildSearchQuery: %v", err)
	}
	if !strings.Contains(query, "(value)::bigint >= $2") || !strings.Contains(query, "(value)::bigint <= $3") {
		t.Errorf("missing range bounds in %q", query)
	}
	// Free-text rows of other questions must never reach the cast.
	if !strings.Contains(query, `value ~ '^-?\d+$'`) {
		t.Errorf("missing numeric guard before the cast in %q", query)
	}
	if len(args) != 4 || args[1] != 18 || args[2] != 65 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSearchQueryExclusionOnly(t *testing.T) {
	c := model.SearchCriteria{Questions: []model.SearchQuestion{
		{ID: 3, Exclude: true, Answers: []model.SearchAnswer{
			{AnswerValue: model.AnswerValue{Bool: boolPtr(true)}},
		}},
	}}
	query, _, err := buildSearchQuery(c)
	if err != nil {
		t.Fatalf("buildSearchQuery: %v", err)
	}
	if !strings.Contains(query, "FROM users u") {
		t.Errorf("exclusion-only query should start from participants: %q", query)
	}
	if !strings.Contains(query, "u.id NOT IN (SELECT b.user_id FROM answer b") {
		t.Errorf("missing exclusion subquery in %q", query)
	}
}

func TestBuildSearchQueryNoAnswers(t *testing.T) {
	c := model.SearchCriteria{Questions: []model.SearchQuestion{{ID: 9}}}
	if _, _, err := buildSearchQuery(c); err == nil {
		t.Fatal("expected error for criterion without answers")
	}
}

func boolPtr(b bool) *bool { return &b }
