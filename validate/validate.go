// Package validate enforces required-field and variant constraints on
// participant and message submissions. Every field is evaluated so the
// caller can report all problems at once.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "room-lab/errors"
)

var validate = validator.New()

// ParticipantSubmission is a join request after sanitization.
type ParticipantSubmission struct {
	Name string `validate:"required"`
}

// MessageSubmission is a post request after sanitization.
type MessageSubmission struct {
	From string `validate:"required"`
	To   string `validate:"required"`
	Text string `validate:"required"`
	Kind string `validate:"required,oneof=public private"`
	Time string `validate:"required"`
}

// MessageUpdate is an edit request after sanitization.
type MessageUpdate struct {
	To   string `validate:"required"`
	Text string `validate:"required"`
	Kind string `validate:"required,oneof=public private"`
}

// Check runs the struct rules and returns a ValidationError carrying one
// message per violated field, or nil when the submission is valid.
func Check(submission any) error {
	err := validate.Struct(submission)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, describe(fe))
	}
	return &apperrors.ValidationError{Violations: violations}
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
