package settings

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents a single failed constraint.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Param       string
}

// Message returns a readable form of e.
func (e ErrorResponse) Message() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.FailedField)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.FailedField, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.FailedField, e.Param)
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.FailedField, e.Tag)
	}
}

// validationErrors flattens a validator error. Other errors yield a single generic message.
func validationErrors(err error) []ErrorResponse {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []ErrorResponse{{FailedField: "settings", Tag: err.Error()}}
	}

	out := make([]ErrorResponse, 0, len(errs))
	for _, fe := range errs {
		out = append(out, ErrorResponse{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Param:       fe.Param(),
		})
	}

	return out
}

func messages(errs []ErrorResponse) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message())
	}

	return out
}
