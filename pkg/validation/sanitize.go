package validation

import (
	"strings"

	"go-portfolio-site/internal/domain"
)

// MaxInputLength caps every sanitized field, in code points.
const MaxInputLength = 5000

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeInput strips angle brackets, trims surrounding whitespace and truncates to MaxInputLength.
//
// This only defeats naive markup injection. Ampersands, quotes and other
// characters are left untouched, so output must still be escaped for HTML.
// Brackets are stripped after validation, so a field made only of them, such
// as a subject of "<>>", is valid and comes out empty.
func SanitizeInput(input string) string {
	s := trimSpace(angleBrackets.Replace(input))

	runes := []rune(s)
	if len(runes) > MaxInputLength {
		s = strings.TrimRightFunc(string(runes[:MaxInputLength]), isSpace)
	}
	return s
}

// SanitizeSubmission cleans every field of a submission that passed validation.
func SanitizeSubmission(sub domain.ContactSubmission, result domain.ValidationResult) (domain.SanitizedSubmission, error) {
	if !result.Valid() {
		return domain.SanitizedSubmission{}, domain.ErrUnvalidatedSubmission
	}

	return domain.NewSanitizedSubmission(
		SanitizeInput(sub.Name),
		SanitizeInput(sub.Email),
		SanitizeInput(sub.Subject),
		SanitizeInput(sub.Message),
	), nil
}
