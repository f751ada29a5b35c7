package models

import (
	"errors"
	"fmt"
)

// Error constants for the payroll pipeline
var (
	ErrPeriodRequired     = errors.New("accounting period id is required")
	ErrPeriodInvalid      = errors.New("accounting period id must be numeric")
	ErrCompanyData        = errors.New("invalid company sheet data")
	ErrProviderData       = errors.New("invalid provider sheet data")
	ErrAuthRequest        = errors.New("authentication request failed")
	ErrTokenMissing       = errors.New("token not found in authentication response")
	ErrSubmissionRequest  = errors.New("submission request failed")
	ErrSubmissionRejected = errors.New("submission rejected by SICAP")
)

// SubmissionError is returned when SICAP answers the payroll submission with
// an HTTP status of 400 or above.
type SubmissionError struct {
	StatusCode int
	Body       []byte
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%v: status %d", ErrSubmissionRejected, e.StatusCode)
}

func (e *SubmissionError) Unwrap() error {
	return ErrSubmissionRejected
}

// StatusClass returns "4xx" or "5xx".
func (e *SubmissionError) StatusClass() string {
	return fmt.Sprintf("%dxx", e.StatusCode/100)
}
