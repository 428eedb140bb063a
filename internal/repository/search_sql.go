package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regsite/registry-backend/internal/answers"
	"github.com/regsite/registry-backend/internal/model"
)

// ParseRange parses a range criterion ("min:", ":max" or "min:max")
// into inclusive integer bounds. A missing side returns nil.
func ParseRange(s string) (min, max *int, err error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, nil, fmt.Errorf("range %q: missing separator", s)
	}
	if lo != "" {
		n, err := strconv.Atoi(lo)
		if err != nil {
			return nil, nil, fmt.Errorf("range %q: %w", s, err)
		}
		min = &n
	}
	if hi != "" {
		n, err := strconv.Atoi(hi)
		if err != nil {
			return nil, nil, fmt.Errorf("range %q: %w", s, err)
		}
		max = &n
	}
	if min == nil && max == nil {
		return nil, nil, fmt.Errorf("range %q: no bounds", s)
	}
	return min, max, nil
}

// queryArgs accumulates positional arguments for a generated query.
type queryArgs struct {
	args []any
}

func (q *queryArgs) add(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// buildSearchQuery generates the cohort search query for the given
// criteria. A user matches when, for every included question, at least
// one live answer row satisfies one of the question's answers, and no
// live row satisfies any excluded question. With no included criteria
// the base set is every participant.
func buildSearchQuery(c model.SearchCriteria) (string, []any, error) {
	qa := &queryArgs{}

	var included, excluded []model.SearchQuestion
	for _, q := range c.Questions {
		if q.Exclude {
			excluded = append(excluded, q)
		} else {
			included = append(included, q)
		}
	}

	var exclusions []string
	for _, q := range excluded {
		cond, err := questionCondition(qa, q)
		if err != nil {
			return "", nil, err
		}
		exclusions = append(exclusions,
			fmt.Sprintf("NOT IN (SELECT b.user_id FROM answer b WHERE b.deleted_at IS NULL AND %s)", cond))
	}

	if len(included) == 0 {
		query := `SELECT u.id FROM users u WHERE u.role = 'participant' AND u.deleted_at IS NULL`
		for _, ex := range exclusions {
			query += " AND u.id " + ex
		}
		return query, qa.args, nil
	}

	conds := make([]string, 0, len(included))
	for _, q := range included {
		cond, err := questionCondition(qa, q)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
	}

	query := `SELECT a.user_id FROM answer a WHERE a.deleted_at IS NULL AND (` +
		strings.Join(conds, " OR ") + `)`
	for _, ex := range exclusions {
		query += " AND a.user_id " + ex
	}
	query += fmt.Sprintf(
		" GROUP BY a.user_id HAVING COUNT(DISTINCT a.question_id) = %s",
		qa.add(len(included)))
	return query, qa.args, nil
}

// questionCondition renders one criterion as an OR over its acceptable
// answers, each matched on (value, question_choice_id) equality or an
// integer range over the stored value. The condition's column prefix
// matches the alias used by buildSearchQuery ("a" in the outer query,
// "b" in exclusion subqueries); both tables are the answer table, so
// the unqualified column names resolve either way.
func questionCondition(qa *queryArgs, q model.SearchQuestion) (string, error) {
	var alts []string
	for _, a := range q.Answers {
		if a.Range != nil {
			min, max, err := ParseRange(*a.Range)
			if err != nil {
				return "", err
			}
			// The planner may evaluate the cast on rows of other
			// questions before the id conjunct filters them; the
			// pattern keeps non-numeric values away from it.
			cond := "question_id = " + qa.add(q.ID) + ` AND value ~ '^-?\d+$'`
			if min != nil {
				cond += " AND (value)::bigint >= " + qa.add(*min)
			}
			if max != nil {
				cond += " AND (value)::bigint <= " + qa.add(*max)
			}
			alts = append(alts, "("+cond+")")
			continue
		}
		scalars, err := answers.EncodeSearchValue(a.AnswerValue)
		if err != nil {
			return "", err
		}
		for _, s := range scalars {
			alts = append(alts, fmt.Sprintf(
				"(question_id = %s AND value IS NOT DISTINCT FROM %s AND question_choice_id IS NOT DISTINCT FROM %s)",
				qa.add(q.ID), qa.add(s.Value), qa.add(s.ChoiceID)))
		}
	}
	if len(alts) == 0 {
		return "", fmt.Errorf("question %d: no answers", q.ID)
	}
	return "(" + strings.Join(alts, " OR ") + ")", nil
}
