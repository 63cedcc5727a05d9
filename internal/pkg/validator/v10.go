package validator

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/shandysiswandi/emailcode/internal/pkg/strcase"
)

// reSlug matches realm names as they appear in URL paths.
var reSlug = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ErrTranslatorNotFound is returned when the English translator is missing.
var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError maps snake_case field names to translated messages.
type ValidationError map[string]string

func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(ve))
	return string(b)
}

// Values returns the field map.
func (ve ValidationError) Values() map[string]string {
	return ve
}

// V10 is the go-playground/validator implementation.
type V10 struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewV10() (*V10, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerSlug(validate, trans); err != nil {
		return nil, err
	}

	return &V10{validate: validate, translator: trans}, nil
}

// Validate returns a ValidationError for tag violations and the raw error for
// anything else (for example a non-struct argument).
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func registerSlug(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return reSlug.MatchString(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("slug", trans,
		func(t ut.Translator) error {
			return t.Add("slug", "{0} must be lowercase letters, digits, '-' or '_'", false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
