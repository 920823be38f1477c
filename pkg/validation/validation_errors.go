package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// messageTemplates maps validator tags to user-facing messages.
// {0} is the field label, {1} the tag parameter.
var messageTemplates = map[string]string{
	"required":      "{0} is required",
	"min":           "{0} must be at least {1} characters",
	"max":           "{0} is too long",
	"person_name":   "{0} contains invalid characters",
	"contact_email": "{0} is invalid",
}

func newTranslator() (ut.Translator, error) {
	enLang := en.New()
	uni := ut.New(enLang, enLang)
	trans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	for tag, text := range messageTemplates {
		if err := trans.Add(tag, text, false); err != nil {
			return nil, fmt.Errorf("register %q message: %w", tag, err)
		}
	}

	return trans, nil
}

// message converts the first validator failure for a rule into its user-facing text.
func (v *ContactValidator) message(rule FieldRule, err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Sprintf("%s is invalid", rule.Label)
	}

	fe := validationErrors[0]
	text, terr := v.translator.T(fe.Tag(), rule.Label, fe.Param())
	if terr != nil {
		// Fallback for tags without a registered message
		return fmt.Sprintf("%s failed validation (%s)", rule.Label, fe.Tag())
	}
	return text
}
