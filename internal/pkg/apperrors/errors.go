package apperrors

import "errors"

// Generic kinds. Every domain error below wraps to one of these in the
// error middleware's rule table.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrValidationFailed      = errors.New("validation failed")
	ErrBadRequest            = errors.New("bad request")
)

// Accounts and tokens
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Companies, jobs and profiles
var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company with this name already exists")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobNotOpen           = errors.New("job is not accepting applications")
	ErrInvalidJobTransition = errors.New("invalid job status transition")
	ErrCandidateNotFound    = errors.New("candidate profile not found")
	ErrConsultantNotFound   = errors.New("consultant not found")
	ErrProfileExists        = errors.New("profile already exists for this user")
)

// Application pipeline
var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrAlreadyApplied          = errors.New("candidate has already applied to this job")
	ErrApplicationLimit        = errors.New("daily application limit reached")
	ErrNoOpenPositions         = errors.New("job has no unfilled positions")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Messaging, notifications and system configuration
var (
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrNotParticipant        = errors.New("user is not a participant in this conversation")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrInvalidConfigValue    = errors.New("configuration value does not match its schema")
)

// Error attaches a client-facing message and optional field details to one
// of the sentinels above. errors.Is still matches the sentinel.
type Error struct {
	Kind    error
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// NewResourceNotFoundError reports a missing resource (404)
func NewResourceNotFoundError(message string) error {
	return newError(ErrResourceNotFound, message)
}

// NewConflictError reports a write that lost a race or clashes with current state (409)
func NewConflictError(message string) error {
	return newError(ErrConflict, message)
}

// NewForbiddenError reports an authenticated caller lacking rights (403)
func NewForbiddenError(message string) error {
	return newError(ErrPermissionDenied, message)
}

// NewBadRequestError reports a request that is well formed but not acceptable (400)
func NewBadRequestError(message string) error {
	return newError(ErrBadRequest, message)
}

// NewValidationError reports invalid input; details are keyed by field name
func NewValidationError(message string, details map[string]interface{}) error {
	return &Error{Kind: ErrValidationFailed, Message: message, Details: details}
}

// IsAny reports whether err matches any of the targets
func IsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
