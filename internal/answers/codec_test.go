package answers

import (
	"testing"

	"github.com/regsite/registry-backend/internal/model"
)

func intPtr(n int) *int          { return &n }
func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestValueKindSingle(t *testing.T) {
	v := model.AnswerValue{Text: strPtr("hello")}
	kind, err := ValueKind(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindText {
		t.Fatalf("kind = %v, want KindText", kind)
	}
}

func TestValueKindMultipleTypes(t *testing.T) {
	v := model.AnswerValue{Text: strPtr("x"), Bool: boolPtr(true)}
	if _, err := ValueKind(v); !model.IsError(err, model.ErrAnswerMultipleTypeAnswers) {
		t.Fatalf("err = %v, want answerMultipleTypeAnswers", err)
	}
}

func TestValueKindEmpty(t *testing.T) {
	if _, err := ValueKind(model.AnswerValue{}); !model.IsError(err, model.ErrAnswerNotUnderstood) {
		t.Fatalf("err = %v, want answerAnswerNotUnderstood", err)
	}
}

func TestEncodeRowsScalars(t *testing.T) {
	in := []model.ClientAnswer{
		{QuestionID: 1, Answer: &model.AnswerValue{Bool: boolPtr(true)}},
		{QuestionID: 2, Answer: &model.AnswerValue{Integer: intPtr(42)}},
		{QuestionID: 3, Answer: &model.AnswerValue{FeetInches: &model.FeetInchesValue{Feet: 5, Inches: 7}}},
		{QuestionID: 4, Answer: &model.AnswerValue{Choice: intPtr(9)}},
		{QuestionID: 5}, // placeholder contributes no rows
	}
	rows, err := EncodeRows(10, 20, "en", in)
	if err != nil {
		t.Fatalf("EncodeRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if got := *rows[0].Value; got != "true" {
		t.Errorf("bool value = %q, want true", got)
	}
	if got := *rows[1].Value; got != "42" {
		t.Errorf("integer value = %q, want 42", got)
	}
	if got := *rows[2].Value; got != "5-7" {
		t.Errorf("feet-inches value = %q, want 5-7", got)
	}
	if rows[3].Value != nil || rows[3].QuestionChoiceID == nil || *rows[3].QuestionChoiceID != 9 {
		t.Errorf("choice row = %+v, want choice id 9 and nil value", rows[3])
	}
	for _, r := range rows {
		if r.UserID != 10 || r.SurveyID != 20 || r.Language != "en" {
			t.Errorf("row identity = %+v", r)
		}
	}
}

func TestEncodeChoicesComposite(t *testing.T) {
	in := []model.ClientAnswer{{
		QuestionID: 7,
		Answer: &model.AnswerValue{Choices: []model.ChoiceSelection{
			{ID: 1},
			{ID: 2, Text: strPtr("other thing")},
		}},
	}}
	rows, err := EncodeRows(1, 1, "en", in)
	if err != nil {
		t.Fatalf("EncodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if *rows[0].Value != "true" || *rows[0].QuestionChoiceID != 1 {
		t.Errorf("plain selection row = %+v", rows[0])
	}
	if *rows[1].Value != "other thing" || *rows[1].QuestionChoiceID != 2 {
		t.Errorf("composite selection row = %+v", rows[1])
	}
}

func TestEncodeChoiceSelectionMultipleTypes(t *testing.T) {
	in := []model.ClientAnswer{{
		QuestionID: 7,
		Answer: &model.AnswerValue{Choices: []model.ChoiceSelection{
			{ID: 1, Text: strPtr("x"), Bool: boolPtr(true)},
		}},
	}}
	if _, err := EncodeRows(1, 1, "en", in); !model.IsError(err, model.ErrAnswerMultipleTypeChoice) {
		t.Fatalf("err = %v, want answerMultipleTypeChoice", err)
	}
}

func TestEncodeMultiInstanceMissingIndex(t *testing.T) {
	in := []model.ClientAnswer{{
		QuestionID: 3,
		Answers: []model.AnswerInstance{
			{Index: intPtr(0), AnswerValue: model.AnswerValue{Text: strPtr("a")}},
			{AnswerValue: model.AnswerValue{Text: strPtr("b")}},
		},
	}}
	if _, err := EncodeRows(1, 1, "en", in); !model.IsError(err, model.ErrAnswerNoMultiQuestionIndex) {
		t.Fatalf("err = %v, want answerNoMultiQuestionIndex", err)
	}
}

func TestMultiInstanceRoundTripOrdersByIndex(t *testing.T) {
	in := []model.ClientAnswer{{
		QuestionID: 5,
		Answers: []model.AnswerInstance{
			{Index: intPtr(0), AnswerValue: model.AnswerValue{Text: strPtr("zero")}},
			{Index: intPtr(2), AnswerValue: model.AnswerValue{Text: strPtr("two")}},
			{Index: intPtr(1), AnswerValue: model.AnswerValue{Text: strPtr("one")}},
		},
	}}
	rows, err := EncodeRows(1, 0, "en", in)
	if err != nil {
		t.Fatalf("EncodeRows: %v", err)
	}
	for i := range rows {
		rows[i].QuestionType = model.QuestionTypeText
		rows[i].Multiple = true
		rows[i].SurveyID = 0
	}
	decoded, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("len(decoded) = %d, want 1", len(decoded))
	}
	got := decoded[0].Answers
	want := []string{"zero", "one", "two"}
	if len(got) != 3 {
		t.Fatalf("len(answers) = %d, want 3", len(got))
	}
	for i, inst := range got {
		if *inst.Index != i {
			t.Errorf("instance %d index = %d", i, *inst.Index)
		}
		if *inst.Text != want[i] {
			t.Errorf("instance %d text = %q, want %q", i, *inst.Text, want[i])
		}
	}
}

func TestDecodeChoicesGroupsRows(t *testing.T) {
	rows := []model.AnswerRow{
		{QuestionID: 8, QuestionType: model.QuestionTypeChoices, QuestionChoiceID: intPtr(3), Value: strPtr("true"), Language: "en"},
		{QuestionID: 8, QuestionType: model.QuestionTypeChoices, QuestionChoiceID: intPtr(1), Value: strPtr("free text"), ChoiceType: model.QuestionTypeText, Language: "en"},
	}
	decoded, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Answer == nil {
		t.Fatalf("decoded = %+v", decoded)
	}
	choices := decoded[0].Answer.Choices
	if len(choices) != 2 {
		t.Fatalf("len(choices) = %d, want 2", len(choices))
	}
	// Ordered by choice id.
	if choices[0].ID != 1 || choices[0].Text == nil || *choices[0].Text != "free text" {
		t.Errorf("choices[0] = %+v", choices[0])
	}
	if choices[1].ID != 3 || choices[1].Text != nil {
		t.Errorf("choices[1] = %+v", choices[1])
	}
}

func TestDecodeNumericTypes(t *testing.T) {
	rows := []model.AnswerRow{
		{QuestionID: 1, QuestionType: model.QuestionTypeInteger, Value: strPtr("31")},
		{QuestionID: 2, QuestionType: model.QuestionTypeFloat, Value: strPtr("98.6")},
		{QuestionID: 3, QuestionType: model.QuestionTypeBloodPressure, Value: strPtr("120-80")},
	}
	decoded, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if *decoded[0].Answer.Integer != 31 {
		t.Errorf("integer = %d", *decoded[0].Answer.Integer)
	}
	if *decoded[1].Answer.Float != 98.6 {
		t.Errorf("float = %v", *decoded[1].Answer.Float)
	}
	bp := decoded[2].Answer.BloodPressure
	if bp.Systolic != 120 || bp.Diastolic != 80 {
		t.Errorf("blood pressure = %+v", bp)
	}
}
