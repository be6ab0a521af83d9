package types

import "errors"

// Client-side validation errors. Each is raised before any network call.
var (
	ErrValidation      = errors.New("validation failed")
	ErrFileType        = errors.New("file type not accepted")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrUnknownField    = errors.New("unknown form field")
	ErrDuplicateName   = errors.New("name already in use")
	ErrEmptySelection  = errors.New("no records selected")
	ErrInvalidSortKey  = errors.New("invalid sort key")
	ErrInvalidLanguage = errors.New("invalid language")
)

// Record lookup and lifecycle errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDeclined          = errors.New("action not confirmed")
	ErrSubmitInProgress  = errors.New("submit already in progress")
	ErrAPIBaseURLEmpty   = errors.New("api base url must not be empty")
	ErrAPIBaseURLInvalid = errors.New("api base url must be an absolute http(s) url")
)

// ValidationError carries the first failed form rule as a user-facing
// message. It matches ErrValidation with errors.Is, and Reason when set.
type ValidationError struct {
	Field   string
	Message string
	Reason  error
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Reason != nil && errors.Is(e.Reason, target))
}
