package domain

import "fmt"

// ClassificationErrorKind distinguishes why a classification failed.
type ClassificationErrorKind string

// Classification failure kinds.
const (
	// KindParseFailure means the backend output was not valid after one repair pass.
	KindParseFailure ClassificationErrorKind = "parse_failure"

	// KindBackend means the backend call itself failed.
	KindBackend ClassificationErrorKind = "backend"

	// KindTimeout means the caller's deadline expired during the backend call.
	KindTimeout ClassificationErrorKind = "timeout"
)

// ClassificationError is returned when risks cannot be classified.
// It is never used for an empty result; "no risks" is a nil error.
type ClassificationError struct {
	Kind ClassificationErrorKind

	// Raw is the unrepaired backend response, when one was received.
	Raw string

	Err error
}

// Error implements error.
func (e *ClassificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrClassification, e.Kind)
	}
	return fmt.Sprintf("%s (%s): %v", ErrClassification, e.Kind, e.Err)
}

// Unwrap exposes both ErrClassification and the underlying cause.
func (e *ClassificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrClassification}
	}
	return []error{ErrClassification, e.Err}
}
