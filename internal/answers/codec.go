// Package answers implements the answer engine core: the codec between
// the nested client answer shape and flat storage rows, the enable-when
// rule evaluator, and the submission validator.
package answers

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/regsite/registry-backend/internal/model"
)

// Kind tags the single value type an AnswerValue carries.
type Kind int

const (
	KindBool Kind = iota
	KindDate
	KindYear
	KindMonth
	KindDay
	KindText
	KindNumber
	KindInteger
	KindFloat
	KindFeetInches
	KindBloodPressure
	KindChoice
	KindChoices
	KindFile
)

// ValueKind returns the one kind set on v. More than one set field is
// answerMultipleTypeAnswers; none is answerAnswerNotUnderstood.
func ValueKind(v model.AnswerValue) (Kind, error) {
	var kinds []Kind
	if v.Bool != nil {
		kinds = append(kinds, KindBool)
	}
	if v.Date != nil {
		kinds = append(kinds, KindDate)
	}
	if v.Year != nil {
		kinds = append(kinds, KindYear)
	}
	if v.Month != nil {
		kinds = append(kinds, KindMonth)
	}
	if v.Day != nil {
		kinds = append(kinds, KindDay)
	}
	if v.Text != nil {
		kinds = append(kinds, KindText)
	}
	if v.Number != nil {
		kinds = append(kinds, KindNumber)
	}
	if v.Integer != nil {
		kinds = append(kinds, KindInteger)
	}
	if v.Float != nil {
		kinds = append(kinds, KindFloat)
	}
	if v.FeetInches != nil {
		kinds = append(kinds, KindFeetInches)
	}
	if v.BloodPressure != nil {
		kinds = append(kinds, KindBloodPressure)
	}
	if v.Choice != nil {
		kinds = append(kinds, KindChoice)
	}
	if v.Choices != nil {
		kinds = append(kinds, KindChoices)
	}
	if v.File != nil {
		kinds = append(kinds, KindFile)
	}
	switch len(kinds) {
	case 0:
		return 0, model.NewError(model.ErrAnswerNotUnderstood)
	case 1:
		return kinds[0], nil
	default:
		return 0, model.NewError(model.ErrAnswerMultipleTypeAnswers)
	}
}

// SearchScalar is the storage-level match key of one criteria answer:
// rows are matched on (value, question_choice_id) equality.
type SearchScalar struct {
	ChoiceID *int
	Value    *string
}

// EncodeSearchValue flattens a criteria answer into its storage match
// keys, using the same encoding as answer persistence.
func EncodeSearchValue(v model.AnswerValue) ([]SearchScalar, error) {
	rows, err := encodeScalar(v)
	if err != nil {
		return nil, err
	}
	out := make([]SearchScalar, 0, len(rows))
	for _, rv := range rows {
		out = append(out, SearchScalar{ChoiceID: rv.choiceID, Value: rv.value})
	}
	return out, nil
}

// DecodeRuleValue rebuilds a rule's literal answer from its stored
// (choice id, value) pair, typed by the rule's source question.
func DecodeRuleValue(qType model.QuestionType, choiceID *int, value *string) (*model.AnswerValue, error) {
	v, err := decodeValue(qType, []model.AnswerRow{{QuestionChoiceID: choiceID, Value: value}})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// rowValue is one scalar encoding of a client value before it is
// widened into a full AnswerRow.
type rowValue struct {
	choiceID *int
	index    *int
	value    *string
}

func strPtr(s string) *string { return &s }

// encodeScalar flattens a single value into storage scalars. The
// switch is exhaustive over Kind; a new kind fails to compile here
// rather than at runtime.
func encodeScalar(v model.AnswerValue) ([]rowValue, error) {
	kind, err := ValueKind(v)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindBool:
		return []rowValue{{value: strPtr(strconv.FormatBool(*v.Bool))}}, nil
	case KindDate:
		return []rowValue{{value: v.Date}}, nil
	case KindYear:
		return []rowValue{{value: v.Year}}, nil
	case KindMonth:
		return []rowValue{{value: v.Month}}, nil
	case KindDay:
		return []rowValue{{value: v.Day}}, nil
	case KindText:
		return []rowValue{{value: v.Text}}, nil
	case KindNumber:
		return []rowValue{{value: strPtr(strconv.FormatFloat(*v.Number, 'g', -1, 64))}}, nil
	case KindInteger:
		return []rowValue{{value: strPtr(strconv.Itoa(*v.Integer))}}, nil
	case KindFloat:
		return []rowValue{{value: strPtr(strconv.FormatFloat(*v.Float, 'g', -1, 64))}}, nil
	case KindFeetInches:
		return []rowValue{{value: strPtr(fmt.Sprintf("%d-%d", v.FeetInches.Feet, v.FeetInches.Inches))}}, nil
	case KindBloodPressure:
		return []rowValue{{value: strPtr(fmt.Sprintf("%d-%d", v.BloodPressure.Systolic, v.BloodPressure.Diastolic))}}, nil
	case KindChoice:
		return []rowValue{{choiceID: v.Choice}}, nil
	case KindChoices:
		rows := make([]rowValue, 0, len(v.Choices))
		for _, sel := range v.Choices {
			val, err := encodeSelection(sel)
			if err != nil {
				return nil, err
			}
			id := sel.ID
			rows = append(rows, rowValue{choiceID: &id, value: strPtr(val)})
		}
		return rows, nil
	case KindFile:
		if v.File.ID == nil {
			return nil, fmt.Errorf("file answer has no stored file id")
		}
		return []rowValue{{value: strPtr(strconv.Itoa(*v.File.ID))}}, nil
	}
	return nil, model.NewError(model.ErrAnswerNotUnderstood)
}

// encodeSelection encodes one multi-select choice. A selection with no
// nested value stores "true"; more than one nested value is a fatal
// answerMultipleTypeChoice.
func encodeSelection(sel model.ChoiceSelection) (string, error) {
	var vals []string
	if sel.Text != nil {
		vals = append(vals, *sel.Text)
	}
	if sel.Bool != nil {
		vals = append(vals, strconv.FormatBool(*sel.Bool))
	}
	if sel.Integer != nil {
		vals = append(vals, strconv.Itoa(*sel.Integer))
	}
	if sel.Number != nil {
		vals = append(vals, strconv.FormatFloat(*sel.Number, 'g', -1, 64))
	}
	if sel.Month != nil {
		vals = append(vals, *sel.Month)
	}
	if sel.Year != nil {
		vals = append(vals, *sel.Year)
	}
	switch len(vals) {
	case 0:
		return "true", nil
	case 1:
		return vals[0], nil
	default:
		return "", model.NewError(model.ErrAnswerMultipleTypeChoice)
	}
}

// encodeAnswer flattens one client answer entry: either a single value
// or a multi-instance array where every element must carry its index.
func encodeAnswer(a model.ClientAnswer) ([]rowValue, error) {
	if a.Answer != nil {
		return encodeScalar(*a.Answer)
	}
	var rows []rowValue
	for _, inst := range a.Answers {
		if inst.Index == nil {
			return nil, &model.Error{Code: model.ErrAnswerNoMultiQuestionIndex, QuestionID: a.QuestionID}
		}
		scalars, err := encodeScalar(inst.AnswerValue)
		if err != nil {
			return nil, err
		}
		idx := *inst.Index
		for _, rv := range scalars {
			rv.index = &idx
			rows = append(rows, rv)
		}
	}
	return rows, nil
}

// EncodeRows converts value-carrying client answers into flat storage
// rows for (userID, surveyID). Placeholder entries contribute no rows.
func EncodeRows(userID, surveyID int, language string, in []model.ClientAnswer) ([]model.AnswerRow, error) {
	var rows []model.AnswerRow
	for _, a := range in {
		if !a.HasValue() {
			continue
		}
		values, err := encodeAnswer(a)
		if err != nil {
			return nil, err
		}
		for _, rv := range values {
			rows = append(rows, model.AnswerRow{
				UserID:           userID,
				SurveyID:         surveyID,
				QuestionID:       a.QuestionID,
				QuestionChoiceID: rv.choiceID,
				MultipleIndex:    rv.index,
				Value:            rv.value,
				Language:         language,
			})
		}
	}
	return rows, nil
}

// DecodeRows reconstructs client answers from flat rows. Rows are
// grouped by question id (and by survey id / deletion time when those
// are part of the requested scope); multi-instance answers come back
// ordered by multiple index.
func DecodeRows(rows []model.AnswerRow) ([]model.ClientAnswer, error) {
	type group struct {
		key  string
		rows []model.AnswerRow
	}
	var order []string
	groups := make(map[string]*group)
	for _, r := range rows {
		key := strconv.Itoa(r.QuestionID)
		if r.DeletedAt != nil {
			key = r.DeletedAt.String() + ";" + key
		}
		if r.SurveyID != 0 {
			key = strconv.Itoa(r.SurveyID) + ";" + key
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
	}

	out := make([]model.ClientAnswer, 0, len(order))
	for _, key := range order {
		g := groups[key]
		first := g.rows[0]
		ca := model.ClientAnswer{
			QuestionID: first.QuestionID,
			SurveyID:   first.SurveyID,
			Language:   first.Language,
			DeletedAt:  first.DeletedAt,
		}
		if first.Multiple {
			instances, err := decodeInstances(first.QuestionType, g.rows)
			if err != nil {
				return nil, err
			}
			ca.Answers = instances
		} else {
			value, err := decodeValue(first.QuestionType, g.rows)
			if err != nil {
				return nil, err
			}
			ca.Answer = &value
		}
		out = append(out, ca)
	}
	return out, nil
}

// decodeInstances groups a multi question's rows by multiple index and
// decodes each slot, ordered by index.
func decodeInstances(qType model.QuestionType, rows []model.AnswerRow) ([]model.AnswerInstance, error) {
	byIndex := make(map[int][]model.AnswerRow)
	var indexes []int
	for _, r := range rows {
		if r.MultipleIndex == nil {
			return nil, &model.Error{Code: model.ErrAnswerNoMultiQuestionIndex, QuestionID: r.QuestionID}
		}
		idx := *r.MultipleIndex
		if _, ok := byIndex[idx]; !ok {
			indexes = append(indexes, idx)
		}
		byIndex[idx] = append(byIndex[idx], r)
	}
	sort.Ints(indexes)

	out := make([]model.AnswerInstance, 0, len(indexes))
	for _, idx := range indexes {
		value, err := decodeValue(qType, byIndex[idx])
		if err != nil {
			return nil, err
		}
		i := idx
		out = append(out, model.AnswerInstance{Index: &i, AnswerValue: value})
	}
	return out, nil
}

// decodeValue rebuilds one client value from the rows of a single
// answer slot.
func decodeValue(qType model.QuestionType, rows []model.AnswerRow) (model.AnswerValue, error) {
	first := rows[0]
	var v model.AnswerValue
	switch qType {
	case model.QuestionTypeChoices:
		for _, r := range rows {
			sel, err := decodeSelection(r)
			if err != nil {
				return v, err
			}
			v.Choices = append(v.Choices, sel)
		}
		sort.Slice(v.Choices, func(i, j int) bool { return v.Choices[i].ID < v.Choices[j].ID })
		return v, nil
	case model.QuestionTypeChoice, model.QuestionTypeChoiceRef:
		if first.QuestionChoiceID == nil {
			return v, fmt.Errorf("choice answer row for question %d has no choice id", first.QuestionID)
		}
		id := *first.QuestionChoiceID
		v.Choice = &id
		return v, nil
	}

	if first.Value == nil {
		return v, fmt.Errorf("answer row for question %d has no value", first.QuestionID)
	}
	raw := *first.Value
	switch qType {
	case model.QuestionTypeBool:
		b := raw == "true"
		v.Bool = &b
	case model.QuestionTypeDate:
		v.Date = &raw
	case model.QuestionTypeYear:
		v.Year = &raw
	case model.QuestionTypeMonth:
		v.Month = &raw
	case model.QuestionTypeDay:
		v.Day = &raw
	case model.QuestionTypeText:
		v.Text = &raw
	case model.QuestionTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("question %d: parse number %q: %w", first.QuestionID, raw, err)
		}
		v.Number = &f
	case model.QuestionTypeInteger, model.QuestionTypeEnumeration:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return v, fmt.Errorf("question %d: parse integer %q: %w", first.QuestionID, raw, err)
		}
		v.Integer = &n
	case model.QuestionTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, fmt.Errorf("question %d: parse float %q: %w", first.QuestionID, raw, err)
		}
		v.Float = &f
	case model.QuestionTypeFeetInches:
		var fi model.FeetInchesValue
		if _, err := fmt.Sscanf(raw, "%d-%d", &fi.Feet, &fi.Inches); err != nil {
			return v, fmt.Errorf("question %d: parse feet-inches %q: %w", first.QuestionID, raw, err)
		}
		v.FeetInches = &fi
	case model.QuestionTypeBloodPressure:
		var bp model.BloodPressureValue
		if _, err := fmt.Sscanf(raw, "%d-%d", &bp.Systolic, &bp.Diastolic); err != nil {
			return v, fmt.Errorf("question %d: parse blood-pressure %q: %w", first.QuestionID, raw, err)
		}
		v.BloodPressure = &bp
	case model.QuestionTypeFile:
		id, err := strconv.Atoi(raw)
		if err != nil {
			return v, fmt.Errorf("question %d: parse file id %q: %w", first.QuestionID, raw, err)
		}
		v.File = &model.FileValue{ID: &id}
	default:
		return v, model.NewError(model.ErrAnswerNotUnderstood)
	}
	return v, nil
}

// decodeSelection rebuilds one multi-select selection row. "true"
// marks a plain selection; anything else is typed by the choice type.
func decodeSelection(r model.AnswerRow) (model.ChoiceSelection, error) {
	if r.QuestionChoiceID == nil {
		return model.ChoiceSelection{}, fmt.Errorf("choices answer row for question %d has no choice id", r.QuestionID)
	}
	sel := model.ChoiceSelection{ID: *r.QuestionChoiceID}
	if r.Value == nil {
		return sel, nil
	}
	raw := *r.Value
	if raw == "true" && r.ChoiceType != model.QuestionTypeText {
		return sel, nil
	}
	switch r.ChoiceType {
	case model.QuestionTypeText, "":
		sel.Text = &raw
	case model.QuestionTypeBool:
		b := raw == "true"
		sel.Bool = &b
	case model.QuestionTypeInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return sel, fmt.Errorf("choice %d: parse integer %q: %w", sel.ID, raw, err)
		}
		sel.Integer = &n
	case model.QuestionTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sel, fmt.Errorf("choice %d: parse number %q: %w", sel.ID, raw, err)
		}
		sel.Number = &f
	case model.QuestionTypeMonth:
		sel.Month = &raw
	case model.QuestionTypeYear:
		sel.Year = &raw
	default:
		sel.Text = &raw
	}
	return sel, nil
}
