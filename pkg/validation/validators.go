package validation

import (
	"regexp"

	"go-portfolio-site/internal/domain"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Latin letters plus the accented vowels, ñ and ü, case-insensitive; whitespace allowed
	nameRegex = regexp.MustCompile(`(?i)^[a-záéíóúñü` + spaceClass + `]+$`)

	// local@domain.tld: no whitespace, a single @, at least one dot after it
	emailRegex = regexp.MustCompile(`^[^@` + spaceClass + `]+@[^@` + spaceClass + `]+\.[^@` + spaceClass + `]+$`)
)

// FieldRule binds a form field to its label and validator tag chain.
// Tags run left to right and the first failure is the one reported.
type FieldRule struct {
	Field string
	Label string
	Tag   string
}

// ContactRules is the per-field rule table, in presentation order.
var ContactRules = []FieldRule{
	{Field: domain.FieldName, Label: "Name", Tag: "required,min=2,max=100,person_name"},
	{Field: domain.FieldEmail, Label: "Email", Tag: "required,contact_email,max=254"},
	{Field: domain.FieldSubject, Label: "Subject", Tag: "required,min=3,max=200"},
	{Field: domain.FieldMessage, Label: "Message", Tag: "required,min=10,max=5000"},
}

// ContactValidator validates contact submissions against ContactRules.
type ContactValidator struct {
	validate   *validator.Validate
	translator ut.Translator
	rules      []FieldRule
}

// NewContactValidator builds a validator with the custom tags and English messages registered.
func NewContactValidator() (*ContactValidator, error) {
	validate := validator.New()
	RegisterValidators(validate)

	trans, err := newTranslator()
	if err != nil {
		return nil, err
	}

	return &ContactValidator{
		validate:   validate,
		translator: trans,
		rules:      ContactRules,
	}, nil
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("person_name", PersonName)
	_ = v.RegisterValidation("contact_email", ContactEmail)
}

// PersonName accepts letters (including common accented Latin vowels and ñ) and whitespace.
func PersonName(fl validator.FieldLevel) bool {
	return nameRegex.MatchString(fl.Field().String())
}

// ContactEmail checks the loose local@domain.tld shape used by the contact form.
// It is not RFC 5322 and accepts some invalid addresses such as "a@b.c".
func ContactEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// Validate checks every field independently and collects one message per failing field.
func (v *ContactValidator) Validate(sub domain.ContactSubmission) domain.ValidationResult {
	var result domain.ValidationResult

	for _, rule := range v.rules {
		value := trimSpace(sub.Value(rule.Field))
		err := v.validate.Var(value, rule.Tag)
		if err == nil {
			continue
		}
		result.Errors = append(result.Errors, domain.FieldError{
			Field:   rule.Field,
			Message: v.message(rule, err),
		})
	}

	return result
}
