package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNameTaken           = fmt.Errorf("participant name already taken")
	ErrParticipantNotFound = fmt.Errorf("participant not found")
	ErrMessageNotFound     = fmt.Errorf("message not found")
	ErrSenderNotFound      = fmt.Errorf("sender is not in the room")
	ErrRecipientNotFound   = fmt.Errorf("recipient is not in the room")
	ErrUnauthorized        = fmt.Errorf("actor is not the author")
	ErrStoreUnavailable    = fmt.Errorf("store unavailable")
)

// ValidationError reports every field-level violation of a submission.
// It never accompanies a state change.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Violations, "; ")
}

// AsValidation extracts a ValidationError from err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// MapToHTTPStatus translates domain errors to HTTP status codes.
// Unrecognized errors are treated as store failures.
func MapToHTTPStatus(err error) int {
	if _, ok := AsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrSenderNotFound),
		errors.Is(err, ErrRecipientNotFound):
		return http.StatusConflict
	case errors.Is(err, ErrParticipantNotFound),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
