package leads

import (
	"fmt"
	"sort"
	"strings"
)

// Error types in the JSON contract between adapters and the intake handler.
const (
	ErrorTypeValidation = "validation"
	ErrorTypeSubmission = "submission"
)

// GenericSubmitMessage is what users see for any non-validation failure.
const GenericSubmitMessage = "Something went wrong sending your request. Please try again."

// ValidationError carries field-level messages rejected by the intake side.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "lead validation failed: " + strings.Join(keys, ", ")
}

// SubmitError is a transport or upstream failure.
type SubmitError struct {
	Status    int
	Message   string
	Transient bool
	Err       error
}

func (e *SubmitError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("submit lead: status=%d: %s", e.Status, e.Message)
	}
	return "submit lead: " + e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Response is the JSON body returned by the intake handler.
type Response struct {
	Success   bool           `json:"success"`
	Reference string         `json:"reference,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Error     *ResponseError `json:"error,omitempty"`
}

type ResponseError struct {
	Type    string            `json:"type"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}
