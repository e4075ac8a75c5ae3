// Package validation wraps go-playground/validator with English messages and
// yaml field names so registry errors point at the data file keys.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// FieldError describes a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		enLocale := en.New()
		trans, found := ut.New(enLocale, enLocale).GetTranslator("en")
		if !found {
			panic(fmt.Errorf("validation: en translator was not found"))
		}
		if err := enTranslation.RegisterDefaultTranslations(validate, trans); err != nil {
			panic(fmt.Errorf("validation: translator was not registered: %w", err))
		}
		translator = trans

		if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		_ = validate.RegisterTranslation("slug", trans,
			func(ut ut.Translator) error {
				return ut.Add("slug", "{0} must be lower-case letters, digits and single hyphens", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("slug", fe.Field())
				return msg
			})

		// Use yaml keys in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate, translator
}

// Struct validates v and returns the failed rules. A nil result means v is valid.
func Struct(v any) []FieldError {
	validate, trans := instance()
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Tag:     fe.Tag(),
			Message: fe.Translate(trans),
		})
	}
	return out
}

// IsSlug reports whether value satisfies the slug rule.
func IsSlug(value string) bool {
	return slugPattern.MatchString(value)
}

// Remove the root struct name from the namespace.
func trimNamespace(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
