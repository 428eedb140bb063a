package model

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a caller-visible domain failure. These are
// expected outcomes of validation, consent and federation checks, not
// storage faults.
type ErrorCode string

const (
	// Structural: malformed input, rejected before any write.
	ErrAnswerQxNotInSurvey        ErrorCode = "answerQxNotInSurvey"
	ErrAnswerNoMultiQuestionIndex ErrorCode = "answerNoMultiQuestionIndex"
	ErrAnswerMultipleTypeAnswers  ErrorCode = "answerMultipleTypeAnswers"
	ErrAnswerMultipleTypeChoice   ErrorCode = "answerMultipleTypeChoice"
	ErrAnswerNotUnderstood        ErrorCode = "answerAnswerNotUnderstood"

	// Policy: submission violates survey logic.
	ErrAnswerRequiredMissing     ErrorCode = "answerRequiredMissing"
	ErrAnswerToBeSkippedAnswered ErrorCode = "answerToBeSkippedAnswered"

	// Consent.
	ErrProfileSignaturesMissing ErrorCode = "profileSignaturesMissing"

	// Federation: rejected before remote fan-out.
	ErrSearchQuestionRepeat ErrorCode = "searchQuestionRepeat"
	ErrRegistryNoneFound    ErrorCode = "registryNoneFound"
	ErrRegistryIDNotFound   ErrorCode = "registryIdNotFound"
)

var errorMessages = map[ErrorCode]string{
	ErrAnswerQxNotInSurvey:        "submitted answer references a question not in the survey",
	ErrAnswerNoMultiQuestionIndex: "multi-instance answer element is missing its multiple index",
	ErrAnswerMultipleTypeAnswers:  "answer specifies more than one value type",
	ErrAnswerMultipleTypeChoice:   "choice selection specifies more than one value type",
	ErrAnswerNotUnderstood:        "answer value not understood",
	ErrAnswerRequiredMissing:      "a required question has no answer",
	ErrAnswerToBeSkippedAnswered:  "an answer was submitted for a skipped question",
	ErrProfileSignaturesMissing:   "required consent documents are not signed",
	ErrSearchQuestionRepeat:       "search criteria list the same question more than once",
	ErrRegistryNoneFound:          "no registries are defined",
	ErrRegistryIDNotFound:         "registry not found",
}

// Error is a typed domain failure carrying enough structured context
// for the HTTP layer to render a precise message.
type Error struct {
	Code ErrorCode

	// QuestionID is set on structural/policy failures where a single
	// question can be named.
	QuestionID int

	// ConsentDocuments carries the outstanding (unsigned) documents on
	// profileSignaturesMissing so callers can direct the user to them.
	ConsentDocuments []ConsentDocument

	// RegistryID is set on registryIdNotFound.
	RegistryID int
}

func (e *Error) Error() string {
	msg, ok := errorMessages[e.Code]
	if !ok {
		msg = string(e.Code)
	}
	switch {
	case e.Code == ErrRegistryIDNotFound:
		return fmt.Sprintf("%s: %d", msg, e.RegistryID)
	case e.QuestionID != 0:
		return fmt.Sprintf("%s (question %d)", msg, e.QuestionID)
	}
	return msg
}

// NewError returns a typed domain error for the given code.
func NewError(code ErrorCode) *Error {
	return &Error{Code: code}
}

// IsError reports whether err is a domain error with the given code.
func IsError(err error, code ErrorCode) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// AsError unwraps err into a domain error, or nil.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
