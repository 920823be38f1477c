package domain

import (
	"context"
	"errors"
)

// Contact form field names, in presentation order.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ContactFields lists the form fields in the order errors are reported.
var ContactFields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

var (
	// ErrUnvalidatedSubmission is returned when sanitization is asked to run on data that failed validation.
	ErrUnvalidatedSubmission = errors.New("submission has not passed validation")
	// ErrRelayNotConfigured is returned by relays missing host or sender settings.
	ErrRelayNotConfigured = errors.New("email relay is not configured")
)

// ContactSubmission represents a contact form submission
type ContactSubmission struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Value returns the raw value of a named field.
func (s ContactSubmission) Value(field string) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldSubject:
		return s.Subject
	case FieldMessage:
		return s.Message
	}
	return ""
}

// FieldError is a single human readable problem with one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds at most one error per field, ordered like ContactFields.
type ValidationResult struct {
	Errors []FieldError
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Map returns the field -> message view used by templates and JSON responses.
func (r ValidationResult) Map() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, fe := range r.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// SanitizedSubmission can only be built from a submission that passed validation.
type SanitizedSubmission struct {
	name    string
	email   string
	subject string
	message string
}

// NewSanitizedSubmission is meant for the sanitizer; callers outside it should use validation.SanitizeSubmission.
func NewSanitizedSubmission(name, email, subject, message string) SanitizedSubmission {
	return SanitizedSubmission{name: name, email: email, subject: subject, message: message}
}

func (s SanitizedSubmission) Name() string    { return s.name }
func (s SanitizedSubmission) Email() string   { return s.email }
func (s SanitizedSubmission) Subject() string { return s.subject }
func (s SanitizedSubmission) Message() string { return s.message }

// SubmissionState tracks a submission through the request lifecycle.
type SubmissionState string

const (
	StateReceived       SubmissionState = "received"
	StateValidating     SubmissionState = "validating"
	StateRejected       SubmissionState = "rejected"
	StateSanitizing     SubmissionState = "sanitizing"
	StateDispatching    SubmissionState = "dispatching"
	StateDelivered      SubmissionState = "delivered"
	StateDispatchFailed SubmissionState = "dispatch_failed"
)

// Terminal reports whether the state maps to a rendered response.
func (s SubmissionState) Terminal() bool {
	return s == StateRejected || s == StateDelivered || s == StateDispatchFailed
}

// ContactOutcome is the terminal result of one submission.
type ContactOutcome struct {
	State      SubmissionState
	Validation ValidationResult
	Report     DispatchReport
}

// ContactValidator checks a submission without side effects.
type ContactValidator interface {
	Validate(sub ContactSubmission) ValidationResult
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SubmitContact validates, sanitizes and dispatches a submission.
	// Validation problems are reported in the outcome, never as an error.
	SubmitContact(ctx context.Context, sub ContactSubmission) (*ContactOutcome, error)
}
