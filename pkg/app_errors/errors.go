package apperrors

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPosterNotFound       = errors.New("poster not found")
	ErrDocumentNotFound     = errors.New("document not found")

	ErrMissingID = errors.New("entity has no id")

	ErrWrongState    = errors.New("operation not allowed in current registration state")
	ErrAlreadyMember = errors.New("device already on the list")
	ErrNotMember     = errors.New("device not on the required list")
	ErrWaitlistFull  = errors.New("waitlist is full")
	ErrCapacityFull  = errors.New("event capacity is full")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
