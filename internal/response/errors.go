package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden             ErrCode = "FORBIDDEN"
	ErrParticipantAccessOnly ErrCode = "PARTICIPANT_ACCESS_ONLY"
	ErrAdminAccessOnly       ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Answer validation ─────────────────────────────────────────────
	ErrAnswerQxNotInSurvey        ErrCode = "ANSWER_QX_NOT_IN_SURVEY"
	ErrAnswerNoMultiQuestionIndex ErrCode = "ANSWER_NO_MULTI_QUESTION_INDEX"
	ErrAnswerMultipleTypeAnswers  ErrCode = "ANSWER_MULTIPLE_TYPE_ANSWERS"
	ErrAnswerMultipleTypeChoice   ErrCode = "ANSWER_MULTIPLE_TYPE_CHOICE"
	ErrAnswerNotUnderstood        ErrCode = "ANSWER_NOT_UNDERSTOOD"
	ErrAnswerRequiredMissing      ErrCode = "ANSWER_REQUIRED_MISSING"
	ErrAnswerSkippedAnswered      ErrCode = "ANSWER_TO_BE_SKIPPED_ANSWERED"

	// ─── Consent ───────────────────────────────────────────────────────
	ErrSignaturesMissing ErrCode = "PROFILE_SIGNATURES_MISSING"

	// ─── Cohort search / federation ────────────────────────────────────
	ErrSearchQuestionRepeat ErrCode = "SEARCH_QUESTION_REPEAT"
	ErrRegistryNoneFound    ErrCode = "REGISTRY_NONE_FOUND"
	ErrRegistryIDNotFound   ErrCode = "REGISTRY_ID_NOT_FOUND"

	// ─── Files / export ────────────────────────────────────────────────
	ErrFileTooLarge   ErrCode = "FILE_TOO_LARGE"
	ErrExportNotReady ErrCode = "EXPORT_NOT_READY"

	// ─── Server ────────────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrParticipantAccessOnly:
		return "This resource is restricted to participants."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Answer validation ─────────────────────────────────────────────
	case ErrAnswerQxNotInSurvey:
		return "A submitted answer references a question that is not part of the survey."
	case ErrAnswerNoMultiQuestionIndex:
		return "A multi-instance answer element is missing its index."
	case ErrAnswerMultipleTypeAnswers:
		return "An answer specifies more than one value type."
	case ErrAnswerMultipleTypeChoice:
		return "A choice selection specifies more than one value type."
	case ErrAnswerNotUnderstood:
		return "An answer value was not understood."
	case ErrAnswerRequiredMissing:
		return "A required question has no answer."
	case ErrAnswerSkippedAnswered:
		return "An answer was submitted for a question that should be skipped."

	// ─── Consent ───────────────────────────────────────────────────────
	case ErrSignaturesMissing:
		return "Required consent documents have not been signed."

	// ─── Cohort search / federation ────────────────────────────────────
	case ErrSearchQuestionRepeat:
		return "The search criteria list the same question more than once."
	case ErrRegistryNoneFound:
		return "No registries are defined."
	case ErrRegistryIDNotFound:
		return "The addressed registry does not exist."

	// ─── Files / export ────────────────────────────────────────────────
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrExportNotReady:
		return "The export job has not finished yet."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
