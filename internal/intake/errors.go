package intake

import "fmt"

const (
	CodeValidation  = "validation"
	CodeBadRequest  = "bad_request"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// Error is an intake failure with the HTTP status it maps to.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return 422
	case CodeBadRequest:
		return 400
	case CodeUnavailable:
		return 502
	default:
		return 500
	}
}

func newError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  statusForCode(code),
		Err:     err,
	}
}
