package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrInvalidID           ErrCode = "INVALID_ID"
	ErrInvalidPayload      ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuestionData ErrCode = "INVALID_QUESTION_DATA"
	ErrFileRequired        ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile     ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge        ErrCode = "FILE_TOO_LARGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotAvailable    ErrCode = "EXAM_NOT_AVAILABLE"
	ErrInvalidEntryToken   ErrCode = "INVALID_ENTRY_TOKEN"
	ErrExamNotPublished    ErrCode = "EXAM_NOT_PUBLISHED"
	ErrNotExamAuthor       ErrCode = "NOT_EXAM_AUTHOR"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrExamNotDraft        ErrCode = "EXAM_NOT_DRAFT"
	ErrAnswerCheckDisabled ErrCode = "ANSWER_CHECK_DISABLED"
	ErrSessionCompleted    ErrCode = "SESSION_COMPLETED"
	ErrSessionNotCompleted ErrCode = "SESSION_NOT_COMPLETED"
	ErrAnswerTypeMismatch  ErrCode = "ANSWER_TYPE_MISMATCH"
	ErrQuestionNotInExam   ErrCode = "QUESTION_NOT_IN_EXAM"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username/email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidQuestionData:
		return "The question data is inconsistent: a correct answer refers to something the question does not contain."
	case ErrFileRequired:
		return "A file is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "The file is too large."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "This exam is not currently available."
	case ErrInvalidEntryToken:
		return "Invalid exam entry token."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrNotExamAuthor:
		return "You are not the author of this exam."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrExamNotDraft:
		return "This exam is not in DRAFT status."
	case ErrAnswerCheckDisabled:
		return "Answer checking is disabled for this exam."
	case ErrSessionCompleted:
		return "This exam session has already been submitted."
	case ErrSessionNotCompleted:
		return "This exam session has not been submitted yet."
	case ErrAnswerTypeMismatch:
		return "The answer does not match the question type."
	case ErrQuestionNotInExam:
		return "The question does not belong to this exam."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
