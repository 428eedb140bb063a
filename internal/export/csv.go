package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/regsite/registry-backend/internal/model"
)

var header = []string{"surveyId", "questionId", "questionChoiceId", "multipleIndex", "questionType", "choiceType", "value"}

// MarshalCSV renders export records as CSV with a fixed header row.
func MarshalCSV(recs []model.AnswerExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		row := []string{
			strconv.Itoa(rec.SurveyID),
			strconv.Itoa(rec.QuestionID),
			optInt(rec.QuestionChoiceID),
			optInt(rec.MultipleIndex),
			string(rec.QuestionType),
			string(rec.ChoiceType),
			rec.Value,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// UnmarshalCSV parses CSV produced by MarshalCSV (or a compatible
// external tool) back into export records.
func UnmarshalCSV(data []byte) ([]model.AnswerExportRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(header)

	first, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if first[0] != header[0] {
		return nil, fmt.Errorf("unexpected header %q", first[0])
	}

	var recs []model.AnswerExportRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		rec := model.AnswerExportRecord{
			QuestionType: model.QuestionType(row[4]),
			ChoiceType:   model.QuestionType(row[5]),
			Value:        row[6],
		}
		if rec.SurveyID, err = strconv.Atoi(row[0]); err != nil {
			return nil, fmt.Errorf("surveyId %q: %w", row[0], err)
		}
		if rec.QuestionID, err = strconv.Atoi(row[1]); err != nil {
			return nil, fmt.Errorf("questionId %q: %w", row[1], err)
		}
		if rec.QuestionChoiceID, err = parseOptInt(row[2]); err != nil {
			return nil, fmt.Errorf("questionChoiceId %q: %w", row[2], err)
		}
		if rec.MultipleIndex, err = parseOptInt(row[3]); err != nil {
			return nil, fmt.Errorf("multipleIndex %q: %w", row[3], err)
		}
		recs = append(recs, rec)
	}
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseOptInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
